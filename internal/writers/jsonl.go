// internal/writers/jsonl.go
package writers

import (
	"encoding/json"
	"io"

	"seisdisagg/internal/jsonlutil"
	"seisdisagg/internal/output"
	"seisdisagg/pkg/api"
)

// StartCellJSONLWriter streams each cell as one JSON line (v1).
func StartCellJSONLWriter(out io.Writer, bufSize int) (chan<- api.CellV1, <-chan error) {
	return jsonlutil.Start[api.CellV1](out, bufSize,
		func(enc *json.Encoder, c api.CellV1) error {
			return enc.Encode(c)
		},
		IsBrokenPipe,
	)
}

// writeCellsJSONL emits the non-zero cells of r in row-major order. An
// all-zero matrix yields no lines.
func writeCellsJSONL(w io.Writer, r *output.Report, _ Options) error {
	in, done := StartCellJSONLWriter(w, 0)
	for _, c := range output.Cells(r.Matrix) {
		in <- c
	}
	close(in)
	return <-done
}
