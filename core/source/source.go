// core/source/source.go
// Contracts for seismic sources and ruptures, plus the concrete point-based
// variants used by scenario files.
//
// Sources never see more than one site at a time here; the disaggregation
// and hazard calculators work on a single site.
package source

import (
	"fmt"
	"math"

	"seisdisagg-core/geo"
	"seisdisagg-core/mfd"
	"seisdisagg-core/site"
	"seisdisagg-core/tom"
)

// Surface answers geometric questions about a rupture relative to a site.
type Surface interface {
	JoynerBooreDistance(s *site.Site) float64
	RuptureDistance(s *site.Site) float64
	ClosestPoint(s *site.Site) geo.Point
}

// Rupture is one earthquake scenario enumerated by a source.
type Rupture interface {
	Magnitude() float64
	Rake() float64
	Hypocenter() geo.Point
	Surface() Surface
	// Probability is P(one or more occurrences) over the occurrence model's time span.
	Probability() float64
	// ProbabilityOneOccurrence is P(exactly one occurrence) over the same span.
	ProbabilityOneOccurrence() float64
}

// Source is a seismic source that enumerates ruptures under an occurrence model.
type Source interface {
	ID() string
	TectonicRegionType() string
	Ruptures(m tom.OccurrenceModel) []Rupture
}

// PointSurface is a rupture surface collapsed to its hypocenter.
type PointSurface struct {
	Point geo.Point
}

func (p PointSurface) JoynerBooreDistance(s *site.Site) float64 {
	return p.Point.DistanceTo(s.Location)
}

func (p PointSurface) RuptureDistance(s *site.Site) float64 {
	return math.Hypot(p.JoynerBooreDistance(s), p.Point.Depth)
}

func (p PointSurface) ClosestPoint(*site.Site) geo.Point {
	pt := p.Point
	pt.Lon = geo.NormalizeLon(pt.Lon)
	return pt
}

// ParametricRupture derives its probabilities from an annual rate and an
// occurrence model.
type ParametricRupture struct {
	Mag     float64
	RakeDeg float64
	Rate    float64
	Hypo    geo.Point
	Surf    Surface
	TOM     tom.OccurrenceModel
}

func (r *ParametricRupture) Magnitude() float64    { return r.Mag }
func (r *ParametricRupture) Rake() float64         { return r.RakeDeg }
func (r *ParametricRupture) Hypocenter() geo.Point { return r.Hypo }
func (r *ParametricRupture) Surface() Surface      { return r.Surf }

func (r *ParametricRupture) Probability() float64 {
	return r.TOM.ProbabilityOneOrMore(r.Rate)
}

func (r *ParametricRupture) ProbabilityOneOccurrence() float64 {
	return r.TOM.ProbabilityOneOccurrence(r.Rate)
}

// RuptureSpec is one explicitly listed rupture of a RuptureSet.
type RuptureSpec struct {
	Mag        float64
	Rake       float64
	Rate       float64 // annual occurrence rate
	Hypocenter geo.Point
}

// RuptureSet is a source made of an explicit list of point ruptures.
type RuptureSet struct {
	SourceID string
	TRT      string
	Specs    []RuptureSpec
}

func (s *RuptureSet) ID() string                 { return s.SourceID }
func (s *RuptureSet) TectonicRegionType() string { return s.TRT }

// Ruptures returns one rupture per spec, in listing order.
func (s *RuptureSet) Ruptures(m tom.OccurrenceModel) []Rupture {
	out := make([]Rupture, 0, len(s.Specs))
	for _, sp := range s.Specs {
		out = append(out, &ParametricRupture{
			Mag:     sp.Mag,
			RakeDeg: sp.Rake,
			Rate:    sp.Rate,
			Hypo:    sp.Hypocenter,
			Surf:    PointSurface{Point: sp.Hypocenter},
			TOM:     m,
		})
	}
	return out
}

// Validate checks rates and locations of every spec.
func (s *RuptureSet) Validate() error {
	if len(s.Specs) == 0 {
		return fmt.Errorf("source %q: no ruptures", s.SourceID)
	}
	for i, sp := range s.Specs {
		if sp.Rate < 0 || math.IsNaN(sp.Rate) {
			return fmt.Errorf("source %q: rupture %d has negative rate %v", s.SourceID, i, sp.Rate)
		}
		if err := checkPoint(sp.Hypocenter); err != nil {
			return fmt.Errorf("source %q: rupture %d: %w", s.SourceID, i, err)
		}
	}
	return nil
}

// PointSource places every bin of an MFD at one hypocenter.
type PointSource struct {
	SourceID string
	TRT      string
	Location geo.Point // Depth is the hypocentral depth
	Rake     float64
	MFD      mfd.MFD
}

func (s *PointSource) ID() string                 { return s.SourceID }
func (s *PointSource) TectonicRegionType() string { return s.TRT }

// Ruptures returns one rupture per MFD bin with a positive rate, ordered by magnitude.
func (s *PointSource) Ruptures(m tom.OccurrenceModel) []Rupture {
	bins := s.MFD.Rates()
	out := make([]Rupture, 0, len(bins))
	for _, b := range bins {
		if b.Rate <= 0 {
			continue
		}
		out = append(out, &ParametricRupture{
			Mag:     b.Mag,
			RakeDeg: s.Rake,
			Rate:    b.Rate,
			Hypo:    s.Location,
			Surf:    PointSurface{Point: s.Location},
			TOM:     m,
		})
	}
	return out
}

func (s *PointSource) Validate() error {
	if s.MFD == nil {
		return fmt.Errorf("source %q: missing mfd", s.SourceID)
	}
	if err := s.MFD.Validate(); err != nil {
		return fmt.Errorf("source %q: %w", s.SourceID, err)
	}
	if err := checkPoint(s.Location); err != nil {
		return fmt.Errorf("source %q: %w", s.SourceID, err)
	}
	return nil
}

func checkPoint(p geo.Point) error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %v out of range", p.Lat)
	}
	if p.Depth < 0 {
		return fmt.Errorf("negative depth %v", p.Depth)
	}
	return nil
}
