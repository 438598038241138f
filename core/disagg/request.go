package disagg

import (
	"fmt"
	"math"

	"seisdisagg-core/filters"
	"seisdisagg-core/gsim"
	"seisdisagg-core/imt"
	"seisdisagg-core/site"
	"seisdisagg-core/source"
	"seisdisagg-core/tom"
)

// Request holds every input of a disaggregation.
type Request struct {
	Sources         []source.Source
	Site            *site.Site
	IMT             imt.IMT
	IML             float64
	GSIMs           map[string]gsim.GroundMotionModel // keyed by tectonic region type
	TOM             tom.OccurrenceModel
	TruncationLevel float64
	NEpsilons       int

	MagBinWidth   float64
	DistBinWidth  float64
	CoordBinWidth float64 // shared by longitude and latitude

	// Nil filters keep everything.
	SourceSiteFilter  filters.SourceSiteFilter
	RuptureSiteFilter filters.RuptureSiteFilter
}

// Validate checks the whole request, bin widths included.
func (r Request) Validate() error {
	if err := r.validateCollect(); err != nil {
		return err
	}
	return checkWidths(r.MagBinWidth, r.DistBinWidth, r.CoordBinWidth)
}

func (r Request) validateCollect() error {
	if r.Site == nil {
		return fmt.Errorf("%w: nil site", ErrInvalidRequest)
	}
	if r.TOM == nil {
		return fmt.Errorf("%w: nil occurrence model", ErrInvalidRequest)
	}
	if !(r.IML > 0) || math.IsInf(r.IML, 0) {
		return fmt.Errorf("%w: intensity level must be > 0, got %v", ErrInvalidRequest, r.IML)
	}
	if err := checkTruncation(r.TruncationLevel, r.NEpsilons); err != nil {
		return err
	}
	return nil
}

func (r Request) filters() (filters.SourceSiteFilter, filters.RuptureSiteFilter) {
	ssf, rsf := r.SourceSiteFilter, r.RuptureSiteFilter
	if ssf == nil {
		ssf = filters.SourceSiteNoop
	}
	if rsf == nil {
		rsf = filters.RuptureSiteNoop
	}
	return ssf, rsf
}

func checkTruncation(level float64, nEpsilons int) error {
	if !(level > 0) || math.IsInf(level, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidTruncation, level)
	}
	if nEpsilons < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidEpsilons, nEpsilons)
	}
	return nil
}

func checkWidths(mag, dist, coord float64) error {
	for _, w := range []struct {
		name string
		v    float64
	}{{"magnitude", mag}, {"distance", dist}, {"coordinate", coord}} {
		if !(w.v > 0) || math.IsInf(w.v, 0) {
			return fmt.Errorf("%w: %s width %v", ErrInvalidBinWidth, w.name, w.v)
		}
	}
	// Wider longitude bins cannot be told apart across the antimeridian.
	if coord >= 180 {
		return fmt.Errorf("%w: coordinate width %v must be below 180", ErrInvalidBinWidth, coord)
	}
	return nil
}
