package gsim

import (
	"fmt"
	"math"

	"seisdisagg-core/imt"
	"seisdisagg-core/site"
	"seisdisagg-core/source"
)

// Coeffs parameterize one IMT of a LogLinear model:
//
//	ln(Y) = C1 + C2*M + C3*ln(Rrup + C4) + C5*Rrup + C6*ln(Vs30/760)
//
// Sigma is the total standard deviation of ln(Y).
type Coeffs struct {
	C1, C2, C3, C4, C5, C6 float64
	Sigma                  float64
}

// LogLinear is a coefficient-table attenuation model. Y is in g for
// accelerations, cm/s for PGV and cm for PGD.
type LogLinear struct {
	Name   string
	Coeffs map[imt.IMT]Coeffs
}

// Validate checks that every coefficient set has a positive sigma and a
// non-degenerate distance term.
func (l *LogLinear) Validate() error {
	if len(l.Coeffs) == 0 {
		return fmt.Errorf("gsim %q: no coefficients", l.Name)
	}
	for m, c := range l.Coeffs {
		if c.Sigma <= 0 {
			return fmt.Errorf("gsim %q: %s sigma must be > 0", l.Name, m)
		}
		if c.C4 < 0 {
			return fmt.Errorf("gsim %q: %s c4 must be >= 0", l.Name, m)
		}
	}
	return nil
}

func (l *LogLinear) MakeContexts(s *site.Site, rup source.Rupture) (SitesContext, RuptureContext, DistancesContext) {
	return NewContexts(s, rup)
}

// MeanAndStdDev returns the ln-mean and total standard deviation.
func (l *LogLinear) MeanAndStdDev(sctx SitesContext, rctx RuptureContext, dctx DistancesContext, m imt.IMT) (float64, float64, error) {
	c, ok := l.Coeffs[m]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s has no %s", ErrUnsupportedIMT, l.Name, m)
	}
	mean := c.C1 + c.C2*rctx.Mag + c.C3*math.Log(dctx.Rrup+c.C4) + c.C5*dctx.Rrup
	if c.C6 != 0 && sctx.Vs30 > 0 {
		mean += c.C6 * math.Log(sctx.Vs30/760)
	}
	return mean, c.Sigma, nil
}

func (l *LogLinear) PoEs(sctx SitesContext, rctx RuptureContext, dctx DistancesContext,
	m imt.IMT, imls []float64, truncationLevel float64) ([]float64, error) {
	mean, sd, err := l.MeanAndStdDev(sctx, rctx, dctx, m)
	if err != nil {
		return nil, err
	}
	return PoEs(mean, sd, imls, truncationLevel)
}

func (l *LogLinear) DisaggregatePoE(sctx SitesContext, rctx RuptureContext, dctx DistancesContext,
	m imt.IMT, iml, truncationLevel float64, nEpsilons int) ([]float64, error) {
	mean, sd, err := l.MeanAndStdDev(sctx, rctx, dctx, m)
	if err != nil {
		return nil, err
	}
	return DisaggregatePoE(mean, sd, iml, truncationLevel, nEpsilons)
}
