package output

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"seisdisagg-core/imt"
	"seisdisagg/pkg/api"
)

// CurveReport holds hazard curves for one site.
type CurveReport struct {
	Meta   Meta
	Levels map[imt.IMT][]float64
	PoEs   map[imt.IMT][]float64
}

// ToAPICurves converts curves to the v1 document, ordered by IMT name.
func ToAPICurves(r *CurveReport) api.CurvesV1 {
	keys := make([]imt.IMT, 0, len(r.PoEs))
	for k := range r.PoEs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	doc := api.CurvesV1{
		Schema:   api.CurvesSchemaV1,
		Scenario: r.Meta.Scenario,
		Site:     r.Meta.Site,
		TimeSpan: r.Meta.TimeSpan,
	}
	for _, k := range keys {
		doc.Curves = append(doc.Curves, api.HazardCurveV1{
			IMT:    k.String(),
			Levels: append([]float64(nil), r.Levels[k]...),
			PoEs:   append([]float64(nil), r.PoEs[k]...),
		})
	}
	return doc
}

// WriteCurvesTSV writes one (imt, level, poe) row per point.
func WriteCurvesTSV(w io.Writer, r *CurveReport, header bool) error {
	bw := bufio.NewWriter(w)
	if header {
		fmt.Fprintln(bw, CurveTSVHeader)
	}
	for _, c := range ToAPICurves(r).Curves {
		for i, l := range c.Levels {
			fmt.Fprintf(bw, "%s\t%s\t%.8g\n", c.IMT, ff(l), c.PoEs[i])
		}
	}
	return bw.Flush()
}
