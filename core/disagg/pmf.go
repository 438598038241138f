package disagg

import (
	"fmt"
	"math"
)

// PMF is a marginal of a disaggregation matrix over the kept Axes, stored
// row-major in Values.
type PMF struct {
	Axes   []Axis
	Shape  []int
	Values []float64
}

// At returns the value at one index per kept axis.
func (p *PMF) At(idx ...int) float64 {
	if len(idx) != len(p.Axes) {
		panic(fmt.Sprintf("disagg: %d indices for %d axes", len(idx), len(p.Axes)))
	}
	off := 0
	for a, i := range idx {
		if i < 0 || i >= p.Shape[a] {
			panic(fmt.Sprintf("disagg: index %v out of shape %v", idx, p.Shape))
		}
		off = off*p.Shape[a] + i
	}
	return p.Values[off]
}

// Marginal collapses every axis not in keep. Collapsed cells combine as
// independent events, 1 - prod(1 - cell), so values stay in [0, 1]. keep
// must list distinct axes in increasing order.
func Marginal(m *Matrix, keep ...Axis) (*PMF, error) {
	if len(keep) == 0 {
		return nil, fmt.Errorf("disagg: marginal needs at least one axis")
	}
	for i, a := range keep {
		if a < 0 || int(a) >= NumAxes {
			return nil, fmt.Errorf("disagg: unknown axis %d", int(a))
		}
		if i > 0 && a <= keep[i-1] {
			return nil, fmt.Errorf("disagg: axes %v must be distinct and increasing", keep)
		}
	}
	return marginal(m, keep), nil
}

func marginal(m *Matrix, keep []Axis) *PMF {
	shape := make([]int, len(keep))
	size := 1
	for i, a := range keep {
		shape[i] = m.shape[a]
		size *= shape[i]
	}

	// Sum of log(1-cell) per output cell; -Inf once a cell is certain.
	logs := make([]float64, size)
	m.Each(func(idx Index, v float64) {
		if v == 0 {
			return
		}
		off := 0
		for i, a := range keep {
			off = off*shape[i] + idx[a]
		}
		logs[off] += math.Log1p(-v)
	})

	vals := make([]float64, size)
	for i, s := range logs {
		vals[i] = -math.Expm1(s)
	}
	return &PMF{Axes: append([]Axis(nil), keep...), Shape: shape, Values: vals}
}

func MagPMF(m *Matrix) *PMF  { return marginal(m, []Axis{AxisMag}) }
func DistPMF(m *Matrix) *PMF { return marginal(m, []Axis{AxisDist}) }
func TRTPMF(m *Matrix) *PMF  { return marginal(m, []Axis{AxisTRT}) }

func MagDistPMF(m *Matrix) *PMF { return marginal(m, []Axis{AxisMag, AxisDist}) }
func LonLatPMF(m *Matrix) *PMF  { return marginal(m, []Axis{AxisLon, AxisLat}) }

func MagDistEpsPMF(m *Matrix) *PMF { return marginal(m, []Axis{AxisMag, AxisDist, AxisEps}) }
func MagLonLatPMF(m *Matrix) *PMF  { return marginal(m, []Axis{AxisMag, AxisLon, AxisLat}) }
func LonLatTRTPMF(m *Matrix) *PMF  { return marginal(m, []Axis{AxisLon, AxisLat, AxisTRT}) }

// NamedPMFs lists the standard marginals by name, in report order.
var NamedPMFs = []struct {
	Name string
	Fn   func(*Matrix) *PMF
}{
	{"mag", MagPMF},
	{"dist", DistPMF},
	{"trt", TRTPMF},
	{"mag_dist", MagDistPMF},
	{"lon_lat", LonLatPMF},
	{"mag_dist_eps", MagDistEpsPMF},
	{"mag_lon_lat", MagLonLatPMF},
	{"lon_lat_trt", LonLatTRTPMF},
}
