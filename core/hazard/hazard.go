// Package hazard computes aggregate hazard curves for one site.
//
// For every surviving rupture with occurrence probability p and exceedance
// probability poe(iml), the curve accumulates (1-p)^poe; the returned curve
// is one minus that product.
package hazard

import (
	"errors"
	"fmt"
	"math"

	"seisdisagg-core/filters"
	"seisdisagg-core/gsim"
	"seisdisagg-core/imt"
	"seisdisagg-core/site"
	"seisdisagg-core/source"
	"seisdisagg-core/tom"
)

// Request holds the inputs of a hazard-curve calculation.
type Request struct {
	Sources         []source.Source
	Site            *site.Site
	IMTs            map[imt.IMT][]float64
	GSIMs           map[string]gsim.GroundMotionModel
	TOM             tom.OccurrenceModel
	TruncationLevel float64

	SourceSiteFilter  filters.SourceSiteFilter
	RuptureSiteFilter filters.RuptureSiteFilter
}

// Curves returns, per IMT, the probability of exceeding each level at least
// once over the occurrence model's time span.
func Curves(req Request) (map[imt.IMT][]float64, error) {
	if req.Site == nil {
		return nil, errors.New("hazard: nil site")
	}
	if req.TOM == nil {
		return nil, errors.New("hazard: nil occurrence model")
	}
	if len(req.IMTs) == 0 {
		return nil, errors.New("hazard: no intensity measure types")
	}
	ssf, rsf := req.SourceSiteFilter, req.RuptureSiteFilter
	if ssf == nil {
		ssf = filters.SourceSiteNoop
	}
	if rsf == nil {
		rsf = filters.RuptureSiteNoop
	}

	curves := make(map[imt.IMT][]float64, len(req.IMTs))
	for m, imls := range req.IMTs {
		c := make([]float64, len(imls))
		for i := range c {
			c[i] = 1
		}
		curves[m] = c
	}

	pairs := make([]filters.SourceSite, 0, len(req.Sources))
	for _, src := range req.Sources {
		pairs = append(pairs, filters.SourceSite{Source: src, Site: req.Site})
	}
	for _, ss := range ssf(pairs) {
		if ss.Site == nil {
			continue
		}
		trt := ss.Source.TectonicRegionType()
		model, ok := req.GSIMs[trt]
		if !ok {
			return nil, fmt.Errorf("hazard: source %q: no ground motion model for %q", ss.Source.ID(), trt)
		}
		rups := ss.Source.Ruptures(req.TOM)
		rpairs := make([]filters.RuptureSite, 0, len(rups))
		for _, r := range rups {
			rpairs = append(rpairs, filters.RuptureSite{Rupture: r, Site: ss.Site})
		}
		for _, rs := range rsf(rpairs) {
			if rs.Site == nil {
				continue
			}
			p := rs.Rupture.Probability()
			if p < 0 || p > 1 || math.IsNaN(p) {
				return nil, fmt.Errorf("hazard: source %q: rupture probability %v outside [0,1]", ss.Source.ID(), p)
			}
			sctx, rctx, dctx := model.MakeContexts(rs.Site, rs.Rupture)
			for m, imls := range req.IMTs {
				poes, err := model.PoEs(sctx, rctx, dctx, m, imls, req.TruncationLevel)
				if err != nil {
					return nil, fmt.Errorf("hazard: source %q: %w", ss.Source.ID(), err)
				}
				c := curves[m]
				for i, poe := range poes {
					c[i] *= math.Pow(1-p, poe)
				}
			}
		}
	}

	for _, c := range curves {
		for i := range c {
			c[i] = 1 - c[i]
		}
	}
	return curves, nil
}
