// internal/output/text.go
package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"seisdisagg-core/disagg"
	"seisdisagg/pkg/api"
)

func ff(v float64) string { return strconv.FormatFloat(v, 'g', 6, 64) }

func floats(vs []float64) string {
	ss := make([]string, len(vs))
	for i, v := range vs {
		ss[i] = ff(v)
	}
	return strings.Join(ss, " ")
}

// FormatCellTSV renders a cell with its bin bounds (no trailing newline).
func FormatCellTSV(e *disagg.BinEdges, c api.CellV1) string {
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%.8g",
		ff(e.Mag[c.Mag]), ff(e.Mag[c.Mag+1]),
		ff(e.Dist[c.Dist]), ff(e.Dist[c.Dist+1]),
		ff(e.Lon[c.Lon]), ff(e.Lon[c.Lon+1]),
		ff(e.Lat[c.Lat]), ff(e.Lat[c.Lat+1]),
		ff(e.Eps[c.Eps]), ff(e.Eps[c.Eps+1]),
		e.TRT[c.TRT], c.Prob,
	)
}

// WriteTSV writes every non-zero cell, one per line.
func WriteTSV(w io.Writer, r *Report, header bool) error {
	bw := bufio.NewWriter(w)
	if header {
		if _, err := fmt.Fprintln(bw, CellTSVHeader); err != nil {
			return err
		}
	}
	for _, c := range Cells(r.Matrix) {
		if _, err := fmt.Fprintln(bw, FormatCellTSV(r.Edges, c)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteText writes a human-readable summary: run parameters, edges, the
// selected marginals and the largest cells.
func WriteText(w io.Writer, r *Report) error {
	pmfs, err := SelectPMFs(r.Matrix, r.PMFs)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	m := r.Meta
	fmt.Fprintf(bw, "scenario    %s\n", m.Scenario)
	fmt.Fprintf(bw, "site        lon=%s lat=%s vs30=%s\n", ff(m.Site.Lon), ff(m.Site.Lat), ff(m.Site.Vs30))
	fmt.Fprintf(bw, "level       %s > %s over %s yr (truncation %s)\n", m.IMT, ff(m.IML), ff(m.TimeSpan), ff(m.TruncationLevel))
	fmt.Fprintf(bw, "ruptures    %d\n", m.Ruptures)
	if r.NoContribution {
		fmt.Fprintln(bw, "status      no contribution to any bin")
	}

	e := r.Edges
	fmt.Fprintln(bw, "\nedges")
	fmt.Fprintf(bw, "  mag   %s\n", floats(e.Mag))
	fmt.Fprintf(bw, "  dist  %s\n", floats(e.Dist))
	fmt.Fprintf(bw, "  lon   %s\n", floats(e.Lon))
	fmt.Fprintf(bw, "  lat   %s\n", floats(e.Lat))
	fmt.Fprintf(bw, "  eps   %s\n", floats(e.Eps))
	fmt.Fprintf(bw, "  trt   %s\n", strings.Join(e.TRT, " | "))

	for _, p := range pmfs {
		fmt.Fprintf(bw, "\npmf %s (%s) shape %v\n", p.Name, strings.Join(p.Axes, ","), p.Shape)
		// One row per last-axis run.
		n := p.Shape[len(p.Shape)-1]
		for i := 0; i < len(p.Values); i += n {
			fmt.Fprintf(bw, "  %s\n", floats(p.Values[i:i+n]))
		}
	}

	if !r.NoContribution {
		cells := TopCells(r.Matrix, r.Top)
		fmt.Fprintf(bw, "\ncells (%d largest)\n%s\n", len(cells), CellTSVHeader)
		for _, c := range cells {
			fmt.Fprintln(bw, FormatCellTSV(e, c))
		}
	}
	return bw.Flush()
}
