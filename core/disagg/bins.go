package disagg

import (
	"fmt"
	"math"

	"seisdisagg-core/geo"
	"seisdisagg-core/gsim"
)

// BinEdges holds the edges of every axis. Numeric axes have len >= 2; the
// number of bins is len-1. Lon edges are normalized to [-180, 180) and may
// wrap across the antimeridian, so they are not necessarily increasing.
type BinEdges struct {
	Mag  []float64
	Dist []float64
	Lon  []float64
	Lat  []float64
	Eps  []float64
	TRT  []string
}

// Shape is the matrix shape these edges describe.
func (e *BinEdges) Shape() Shape {
	return Shape{
		len(e.Mag) - 1,
		len(e.Dist) - 1,
		len(e.Lon) - 1,
		len(e.Lat) - 1,
		len(e.Eps) - 1,
		len(e.TRT),
	}
}

func (e *BinEdges) validate() error {
	for _, ax := range []struct {
		name  string
		edges []float64
	}{{"mag", e.Mag}, {"dist", e.Dist}, {"lon", e.Lon}, {"lat", e.Lat}, {"eps", e.Eps}} {
		if len(ax.edges) < 2 {
			return fmt.Errorf("%w: %s axis has %d edges", ErrShapeMismatch, ax.name, len(ax.edges))
		}
	}
	if len(e.TRT) == 0 {
		return fmt.Errorf("%w: no region types", ErrShapeMismatch)
	}
	return nil
}

// DefineBins derives edges from collected data. Magnitude, distance and
// latitude edges sit on integer multiples of their width and cover the data;
// distance always starts at 0. Longitude edges follow the smallest spherical
// bounding box of the points. A single distinct value still yields one bin.
// TRT edges are data.TRTBins itself.
func DefineBins(data *BinData, magWidth, distWidth, coordWidth, truncationLevel float64, nEpsilons int) (*BinEdges, error) {
	if data.Len() == 0 {
		return nil, ErrNoRuptures
	}
	if err := data.validateCoords(); err != nil {
		return nil, err
	}
	if err := checkWidths(magWidth, distWidth, coordWidth); err != nil {
		return nil, err
	}
	if err := checkTruncation(truncationLevel, nEpsilons); err != nil {
		return nil, err
	}

	minMag, maxMag := span(data.Mags)
	_, maxDist := span(data.Dists)
	if minDist, _ := span(data.Dists); minDist < 0 {
		return nil, fmt.Errorf("%w: negative distance %v", ErrContractViolation, minDist)
	}
	bb, err := geo.SphericalBoundingBox(data.Lons, data.Lats)
	if err != nil {
		return nil, fmt.Errorf("disagg: longitude bins: %w", err)
	}
	lon, err := lonEdges(bb, coordWidth)
	if err != nil {
		return nil, err
	}

	return &BinEdges{
		Mag:  linearEdges(minMag, maxMag, magWidth),
		Dist: linearEdges(0, maxDist, distWidth),
		Lon:  lon,
		Lat:  linearEdges(bb.South, bb.North, coordWidth),
		Eps:  gsim.EpsilonEdges(truncationLevel, nEpsilons),
		TRT:  data.TRTBins,
	}, nil
}

// linearEdges returns k*w for k from the largest multiple not above lo to the
// smallest multiple not below hi.
func linearEdges(lo, hi, w float64) []float64 {
	first := math.Floor(lo / w)
	for first*w > lo {
		first--
	}
	last := math.Ceil(hi / w)
	for last*w < hi {
		last++
	}
	if last <= first {
		last = first + 1
	}
	edges := make([]float64, int(last-first)+1)
	for i := range edges {
		edges[i] = (first + float64(i)) * w
	}
	return edges
}

// lonEdges lays linear edges over the box with its east side unwrapped past
// 180, then folds them back into [-180, 180).
func lonEdges(bb geo.BoundingBox, w float64) ([]float64, error) {
	east := bb.East
	if bb.CrossesAntimeridian() {
		east += 360
	}
	edges := linearEdges(bb.West, east, w)
	if edges[len(edges)-1]-edges[0] >= 360 {
		return nil, fmt.Errorf("%w: longitude bins of width %v span the whole globe", ErrInvalidBinWidth, w)
	}
	for i, e := range edges {
		edges[i] = geo.NormalizeLon(e)
	}
	return edges, nil
}

func span(xs []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}
