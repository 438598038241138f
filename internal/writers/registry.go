// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"

	"seisdisagg/internal/output"
)

// Options carries the presentation switches shared by every format.
type Options struct {
	Header bool // TSV: emit the header row
}

type (
	DisaggWriter func(w io.Writer, r *output.Report, opt Options) error
	CurvesWriter func(w io.Writer, r *output.CurveReport, opt Options) error
)

// Writer registries (format → handler). Formats register in init() blocks.
var (
	DisaggWriters = map[string]DisaggWriter{}
	CurvesWriters = map[string]CurvesWriter{}
)

// Register helpers (idempotent last-wins)
func RegisterDisagg(format string, fn DisaggWriter) { DisaggWriters[format] = fn }
func RegisterCurves(format string, fn CurvesWriter) { CurvesWriters[format] = fn }

// WriteDisagg dispatches a report to the writer registered for format.
func WriteDisagg(format string, w io.Writer, r *output.Report, opt Options) error {
	fn, ok := DisaggWriters[format]
	if !ok {
		return fmt.Errorf("unknown disaggregation format %q (known: %v)", format, DisaggFormats())
	}
	return fn(w, r, opt)
}

// WriteCurves dispatches hazard curves to the writer registered for format.
func WriteCurves(format string, w io.Writer, r *output.CurveReport, opt Options) error {
	fn, ok := CurvesWriters[format]
	if !ok {
		return fmt.Errorf("unknown curves format %q (known: %v)", format, CurvesFormats())
	}
	return fn(w, r, opt)
}

func DisaggFormats() []string { return keys(DisaggWriters) }
func CurvesFormats() []string { return keys(CurvesWriters) }

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
