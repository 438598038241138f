package disagg

import (
	"fmt"
	"sort"

	"seisdisagg-core/geo"
)

// lonTol absorbs rounding from folding lon edges into [-180, 180).
const lonTol = 1e-9

// Accumulate bins records [lo, hi) of data into a new, unnormalized matrix.
// Partial matrices over disjoint record ranges combine with Matrix.Merge.
func Accumulate(data *BinData, edges *BinEdges, lo, hi int) (*Matrix, error) {
	if err := edges.validate(); err != nil {
		return nil, err
	}
	if err := data.validate(); err != nil {
		return nil, err
	}
	if got := len(edges.Eps) - 1; got != data.NEpsilons {
		return nil, fmt.Errorf("%w: %d epsilon bins, data has %d bands", ErrShapeMismatch, got, data.NEpsilons)
	}
	if lo < 0 || hi > data.Len() || lo > hi {
		return nil, fmt.Errorf("%w: record range [%d, %d) of %d", ErrOutOfRange, lo, hi, data.Len())
	}
	m, err := NewMatrix(edges.Shape())
	if err != nil {
		return nil, err
	}

	for r := lo; r < hi; r++ {
		var idx Index
		var ok bool
		if idx[AxisMag], ok = findBin(edges.Mag, data.Mags[r]); !ok {
			return nil, outOfRange(r, "magnitude", data.Mags[r], edges.Mag)
		}
		if idx[AxisDist], ok = findBin(edges.Dist, data.Dists[r]); !ok {
			return nil, outOfRange(r, "distance", data.Dists[r], edges.Dist)
		}
		if idx[AxisLon], ok = findLonBin(edges.Lon, data.Lons[r]); !ok {
			return nil, outOfRange(r, "longitude", data.Lons[r], edges.Lon)
		}
		if idx[AxisLat], ok = findBin(edges.Lat, data.Lats[r]); !ok {
			return nil, outOfRange(r, "latitude", data.Lats[r], edges.Lat)
		}
		t := data.TRTs[r]
		if t < 0 || t >= len(edges.TRT) {
			return nil, fmt.Errorf("%w: record %d: region index %d of %d", ErrOutOfRange, r, t, len(edges.TRT))
		}
		idx[AxisTRT] = t

		joint := data.JointProbs[r]
		if len(joint) != data.NEpsilons {
			return nil, fmt.Errorf("%w: record %d has %d bands", ErrShapeMismatch, r, len(joint))
		}
		for k, p := range joint {
			if !isProb(p) {
				return nil, fmt.Errorf("%w: record %d band %d probability %v", ErrContractViolation, r, k, p)
			}
			if p == 0 {
				continue
			}
			idx[AxisEps] = k
			m.Combine(idx, p)
		}
	}
	return m, nil
}

// ArrangeDataInBins bins every record and normalizes the result. When nothing
// contributes it returns the zero matrix together with ErrNoContribution.
func ArrangeDataInBins(data *BinData, edges *BinEdges) (*Matrix, error) {
	m, err := Accumulate(data, edges, 0, data.Len())
	if err != nil {
		return nil, err
	}
	if !m.Normalize() {
		return m, ErrNoContribution
	}
	return m, nil
}

// findBin returns i with edges[i] < v <= edges[i+1]; bin 0 also takes
// v == edges[0].
func findBin(edges []float64, v float64) (int, bool) {
	j := sort.SearchFloat64s(edges, v)
	switch {
	case j == len(edges):
		return 0, false
	case j == 0:
		return 0, v == edges[0]
	}
	return j - 1, true
}

// findLonBin is findBin on the circle: bin i holds v when v lies eastward
// of edges[i] and not east of edges[i+1].
func findLonBin(edges []float64, v float64) (int, bool) {
	for i := 0; i+1 < len(edges); i++ {
		if geo.LongitudinalExtent(v, edges[i+1]) < -lonTol {
			continue
		}
		west := geo.LongitudinalExtent(edges[i], v)
		if (i == 0 && west >= -lonTol) || west > lonTol {
			return i, true
		}
	}
	return 0, false
}

func outOfRange(r int, what string, v float64, edges []float64) error {
	return fmt.Errorf("%w: record %d: %s %v not within [%v, %v]",
		ErrOutOfRange, r, what, v, edges[0], edges[len(edges)-1])
}
