// core/gsim/gsim.go
// Ground-shaking intensity models: the contract the calculators rely on and
// the truncated-normal exceedance math shared by concrete models.
//
// Models predict ln(IML) as a normal variable with mean and total standard
// deviation. The standardized level of an IML is z = (ln(iml) - mean) / stddev;
// epsilon is that same quantity seen from the model side.
package gsim

import (
	"errors"
	"fmt"
	"math"

	"seisdisagg-core/imt"
	"seisdisagg-core/site"
	"seisdisagg-core/source"
)

// ErrUnsupportedIMT is returned when a model has no coefficients for an IMT.
var ErrUnsupportedIMT = errors.New("gsim: unsupported intensity measure type")

// SitesContext carries site parameters a model may use.
type SitesContext struct {
	Vs30         float64
	Vs30Measured bool
	Z1pt0        float64
	Z2pt5        float64
}

// RuptureContext carries rupture parameters. Rupture points back to the
// rupture the context was built from.
type RuptureContext struct {
	Mag       float64
	Rake      float64
	HypoDepth float64
	Rupture   source.Rupture
}

// DistancesContext carries source-to-site distances in km.
type DistancesContext struct {
	Rjb  float64
	Rrup float64
}

// GroundMotionModel is the capability the hazard and disaggregation
// calculators need from a model.
type GroundMotionModel interface {
	MakeContexts(s *site.Site, rup source.Rupture) (SitesContext, RuptureContext, DistancesContext)
	// PoEs returns P(Y > iml) for each iml.
	PoEs(sctx SitesContext, rctx RuptureContext, dctx DistancesContext,
		m imt.IMT, imls []float64, truncationLevel float64) ([]float64, error)
	// DisaggregatePoE splits P(Y > iml) over nEpsilons uniform epsilon bands
	// spanning [-truncationLevel, truncationLevel].
	DisaggregatePoE(sctx SitesContext, rctx RuptureContext, dctx DistancesContext,
		m imt.IMT, iml, truncationLevel float64, nEpsilons int) ([]float64, error)
}

// NewContexts builds the three contexts from a site and a rupture.
func NewContexts(s *site.Site, rup source.Rupture) (SitesContext, RuptureContext, DistancesContext) {
	sctx := SitesContext{Vs30: s.Vs30, Vs30Measured: s.Vs30Measured, Z1pt0: s.Z1pt0, Z2pt5: s.Z2pt5}
	rctx := RuptureContext{
		Mag:       rup.Magnitude(),
		Rake:      rup.Rake(),
		HypoDepth: rup.Hypocenter().Depth,
		Rupture:   rup,
	}
	surf := rup.Surface()
	dctx := DistancesContext{Rjb: surf.JoynerBooreDistance(s), Rrup: surf.RuptureDistance(s)}
	return sctx, rctx, dctx
}

// NormalCDF is the standard normal cumulative distribution.
func NormalCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// TruncatedCDF is the CDF of the standard normal truncated to [-t, t].
// An infinite t gives the plain normal.
func TruncatedCDF(x, t float64) float64 {
	switch {
	case x <= -t:
		return 0
	case x >= t:
		return 1
	case math.IsInf(t, 1):
		return NormalCDF(x)
	}
	lo := NormalCDF(-t)
	return (NormalCDF(x) - lo) / (NormalCDF(t) - lo)
}

// PoEs converts a predicted ln-mean and stddev into exceedance probabilities
// of imls (linear units). Truncation 0 means no variability: the result is 1
// where the median exceeds the level and 0 elsewhere.
func PoEs(mean, stddev float64, imls []float64, truncationLevel float64) ([]float64, error) {
	if truncationLevel < 0 {
		return nil, fmt.Errorf("gsim: truncation level must be >= 0, got %v", truncationLevel)
	}
	out := make([]float64, len(imls))
	for i, iml := range imls {
		if iml <= 0 {
			return nil, fmt.Errorf("gsim: intensity level must be > 0, got %v", iml)
		}
		lnIML := math.Log(iml)
		if truncationLevel == 0 {
			if mean > lnIML {
				out[i] = 1
			}
			continue
		}
		out[i] = 1 - TruncatedCDF((lnIML-mean)/stddev, truncationLevel)
	}
	return out, nil
}

// DisaggregatePoE splits the exceedance probability of iml into nEpsilons
// bands. Bands entirely below the standardized level contribute nothing, the
// band containing it contributes the part above it, the rest contribute
// their full truncated-normal mass.
func DisaggregatePoE(mean, stddev, iml, truncationLevel float64, nEpsilons int) ([]float64, error) {
	if truncationLevel <= 0 || math.IsInf(truncationLevel, 0) || math.IsNaN(truncationLevel) {
		return nil, fmt.Errorf("gsim: disaggregation needs a positive finite truncation level, got %v", truncationLevel)
	}
	if nEpsilons < 1 {
		return nil, fmt.Errorf("gsim: number of epsilon bands must be >= 1, got %d", nEpsilons)
	}
	if iml <= 0 {
		return nil, fmt.Errorf("gsim: intensity level must be > 0, got %v", iml)
	}
	z := (math.Log(iml) - mean) / stddev
	edges := EpsilonEdges(truncationLevel, nEpsilons)
	out := make([]float64, nEpsilons)
	for i := range out {
		hi := edges[i+1]
		if z >= hi {
			continue
		}
		lo := math.Max(edges[i], z)
		out[i] = math.Max(0, TruncatedCDF(hi, truncationLevel)-TruncatedCDF(lo, truncationLevel))
	}
	return out, nil
}

// EpsilonEdges returns n+1 uniformly spaced edges over [-t, t]. The last edge
// is exactly t.
func EpsilonEdges(t float64, n int) []float64 {
	edges := make([]float64, n+1)
	step := 2 * t / float64(n)
	for i := range edges {
		edges[i] = -t + float64(i)*step
	}
	edges[n] = t
	return edges
}
