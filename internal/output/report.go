// internal/output/report.go
package output

import (
	"fmt"
	"sort"
	"strings"

	"seisdisagg-core/disagg"
	"seisdisagg/pkg/api"
)

// Meta describes the run a matrix came from.
type Meta struct {
	Scenario        string
	Site            api.SiteV1
	IMT             string
	IML             float64
	TimeSpan        float64
	TruncationLevel float64
	Ruptures        int
	RunID           int64
}

// Report is everything the writers render for one disaggregation.
type Report struct {
	Meta           Meta
	Edges          *disagg.BinEdges
	Matrix         *disagg.Matrix
	NoContribution bool
	PMFs           []string // marginal names to include; nil means all
	Top            int      // text output: number of largest cells listed; 0 means all
}

// PMFNames lists the marginals known to SelectPMFs, in report order.
func PMFNames() []string {
	names := make([]string, len(disagg.NamedPMFs))
	for i, p := range disagg.NamedPMFs {
		names[i] = p.Name
	}
	return names
}

// SelectPMFs computes the named marginals of m. A nil names list selects all.
func SelectPMFs(m *disagg.Matrix, names []string) ([]api.PMFV1, error) {
	if names == nil {
		names = PMFNames()
	}
	out := make([]api.PMFV1, 0, len(names))
	for _, name := range names {
		fn := lookupPMF(name)
		if fn == nil {
			return nil, fmt.Errorf("unknown pmf %q (known: %s)", name, strings.Join(PMFNames(), ", "))
		}
		out = append(out, ToAPIPMF(name, fn(m)))
	}
	return out, nil
}

func lookupPMF(name string) func(*disagg.Matrix) *disagg.PMF {
	for _, p := range disagg.NamedPMFs {
		if p.Name == name {
			return p.Fn
		}
	}
	return nil
}

// ToAPIPMF converts a marginal to the wire schema.
func ToAPIPMF(name string, p *disagg.PMF) api.PMFV1 {
	axes := make([]string, len(p.Axes))
	for i, a := range p.Axes {
		axes[i] = a.String()
	}
	return api.PMFV1{
		Name:   name,
		Axes:   axes,
		Shape:  append([]int(nil), p.Shape...),
		Values: append([]float64(nil), p.Values...),
	}
}

// ToAPIEdges copies bin edges into the wire schema.
func ToAPIEdges(e *disagg.BinEdges) api.EdgesV1 {
	return api.EdgesV1{
		Mag:  append([]float64(nil), e.Mag...),
		Dist: append([]float64(nil), e.Dist...),
		Lon:  append([]float64(nil), e.Lon...),
		Lat:  append([]float64(nil), e.Lat...),
		Eps:  append([]float64(nil), e.Eps...),
		TRT:  append([]string(nil), e.TRT...),
	}
}

// ToAPICell addresses one cell.
func ToAPICell(idx disagg.Index, v float64) api.CellV1 {
	return api.CellV1{
		Mag:  idx[disagg.AxisMag],
		Dist: idx[disagg.AxisDist],
		Lon:  idx[disagg.AxisLon],
		Lat:  idx[disagg.AxisLat],
		Eps:  idx[disagg.AxisEps],
		TRT:  idx[disagg.AxisTRT],
		Prob: v,
	}
}

// Cells lists non-zero cells in row-major order.
func Cells(m *disagg.Matrix) []api.CellV1 {
	var out []api.CellV1
	m.Each(func(idx disagg.Index, v float64) {
		if v != 0 {
			out = append(out, ToAPICell(idx, v))
		}
	})
	return out
}

// TopCells returns the n largest non-zero cells, largest first; ties keep
// row-major order. n <= 0 returns all of them.
func TopCells(m *disagg.Matrix, n int) []api.CellV1 {
	cells := Cells(m)
	sort.SliceStable(cells, func(i, j int) bool { return cells[i].Prob > cells[j].Prob })
	if n > 0 && n < len(cells) {
		cells = cells[:n]
	}
	return cells
}

// ToAPI converts a report to the v1 document, PMFs and cells included.
func ToAPI(r *Report) (api.DisaggregationV1, error) {
	pmfs, err := SelectPMFs(r.Matrix, r.PMFs)
	if err != nil {
		return api.DisaggregationV1{}, err
	}
	shape := r.Matrix.Shape()
	status := api.StatusOK
	if r.NoContribution {
		status = api.StatusNoContribution
	}
	return api.DisaggregationV1{
		Schema:          api.DisaggregationSchemaV1,
		Scenario:        r.Meta.Scenario,
		Site:            r.Meta.Site,
		IMT:             r.Meta.IMT,
		IML:             r.Meta.IML,
		TimeSpan:        r.Meta.TimeSpan,
		TruncationLevel: r.Meta.TruncationLevel,
		Ruptures:        r.Meta.Ruptures,
		Status:          status,
		Edges:           ToAPIEdges(r.Edges),
		Shape:           shape[:],
		PMFs:            pmfs,
		Cells:           Cells(r.Matrix),
		RunID:           r.Meta.RunID,
	}, nil
}

// FromAPI rebuilds a report from a stored v1 document. Only the cells are
// needed; PMFs are recomputed by the writers.
func FromAPI(doc api.DisaggregationV1) (*Report, error) {
	if len(doc.Shape) != disagg.NumAxes {
		return nil, fmt.Errorf("%w: shape %v has %d axes", disagg.ErrShapeMismatch, doc.Shape, len(doc.Shape))
	}
	var shape disagg.Shape
	copy(shape[:], doc.Shape)
	m, err := disagg.NewMatrix(shape)
	if err != nil {
		return nil, err
	}
	for _, c := range doc.Cells {
		idx := disagg.Index{c.Mag, c.Dist, c.Lon, c.Lat, c.Eps, c.TRT}
		for a, i := range idx {
			if i < 0 || i >= shape[a] {
				return nil, fmt.Errorf("%w: cell %v outside shape %v", disagg.ErrOutOfRange, idx, shape)
			}
		}
		m.Set(idx, c.Prob)
	}
	e := doc.Edges
	return &Report{
		Meta: Meta{
			Scenario:        doc.Scenario,
			Site:            doc.Site,
			IMT:             doc.IMT,
			IML:             doc.IML,
			TimeSpan:        doc.TimeSpan,
			TruncationLevel: doc.TruncationLevel,
			Ruptures:        doc.Ruptures,
			RunID:           doc.RunID,
		},
		Edges: &disagg.BinEdges{
			Mag:  append([]float64(nil), e.Mag...),
			Dist: append([]float64(nil), e.Dist...),
			Lon:  append([]float64(nil), e.Lon...),
			Lat:  append([]float64(nil), e.Lat...),
			Eps:  append([]float64(nil), e.Eps...),
			TRT:  append([]string(nil), e.TRT...),
		},
		Matrix:         m,
		NoContribution: doc.Status == api.StatusNoContribution,
	}, nil
}
