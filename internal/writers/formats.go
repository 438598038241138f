package writers

import (
	"encoding/json"
	"io"

	"seisdisagg/internal/output"
)

func init() {
	RegisterDisagg("text", func(w io.Writer, r *output.Report, _ Options) error {
		return output.WriteText(w, r)
	})
	RegisterDisagg("tsv", func(w io.Writer, r *output.Report, opt Options) error {
		return output.WriteTSV(w, r, opt.Header)
	})
	RegisterDisagg("json", func(w io.Writer, r *output.Report, _ Options) error {
		doc, err := output.ToAPI(r)
		if err != nil {
			return err
		}
		return encodePretty(w, doc)
	})
	RegisterDisagg("jsonl", writeCellsJSONL)

	RegisterCurves("json", func(w io.Writer, r *output.CurveReport, _ Options) error {
		return encodePretty(w, output.ToAPICurves(r))
	})
	RegisterCurves("tsv", func(w io.Writer, r *output.CurveReport, opt Options) error {
		return output.WriteCurvesTSV(w, r, opt.Header)
	})
}

func encodePretty(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
