// internal/scenario/scenario.go
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"seisdisagg-core/disagg"
	"seisdisagg-core/filters"
	"seisdisagg-core/geo"
	"seisdisagg-core/gsim"
	"seisdisagg-core/hazard"
	"seisdisagg-core/imt"
	"seisdisagg-core/mfd"
	"seisdisagg-core/site"
	"seisdisagg-core/source"
	"seisdisagg-core/tom"
)

// Source kinds.
const (
	KindPoint    = "point"
	KindRuptures = "ruptures"
)

// MFD kinds.
const (
	MFDTruncatedGR = "truncated_gr"
	MFDEvenly      = "evenly_discretized"
)

// Scenario is one YAML document describing a site, its seismic sources and
// the models needed to disaggregate hazard there.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	Site            Site                 `yaml:"site"`
	IMT             string               `yaml:"imt"`
	IML             float64              `yaml:"iml"`
	Curves          map[string][]float64 `yaml:"curves,omitempty"` // IMT -> levels
	TimeSpan        float64              `yaml:"time_span"`
	TruncationLevel float64              `yaml:"truncation_level"`
	NEpsilons       int                  `yaml:"n_epsilons"`
	Bins            Bins                 `yaml:"bins"`

	// Optional filters; zero values disable them.
	IntegrationDistance float64  `yaml:"integration_distance,omitempty"`
	TRTs                []string `yaml:"trts,omitempty"`

	GSIMs   map[string]GSIM `yaml:"gsims"` // keyed by tectonic region type
	Sources []Source        `yaml:"sources"`
}

type Site struct {
	Lon          float64 `yaml:"lon"`
	Lat          float64 `yaml:"lat"`
	Vs30         float64 `yaml:"vs30"`
	Vs30Measured bool    `yaml:"vs30_measured,omitempty"`
	Z1pt0        float64 `yaml:"z1pt0,omitempty"`
	Z2pt5        float64 `yaml:"z2pt5,omitempty"`
}

type Bins struct {
	Mag   float64 `yaml:"mag"`
	Dist  float64 `yaml:"dist"`
	Coord float64 `yaml:"coord"`
}

type GSIM struct {
	Name   string            `yaml:"name"`
	Coeffs map[string]Coeffs `yaml:"coeffs"` // IMT -> coefficients
}

type Coeffs struct {
	C1    float64 `yaml:"c1"`
	C2    float64 `yaml:"c2"`
	C3    float64 `yaml:"c3"`
	C4    float64 `yaml:"c4"`
	C5    float64 `yaml:"c5"`
	C6    float64 `yaml:"c6"`
	Sigma float64 `yaml:"sigma"`
}

type Point struct {
	Lon   float64 `yaml:"lon"`
	Lat   float64 `yaml:"lat"`
	Depth float64 `yaml:"depth"`
}

type Source struct {
	ID   string `yaml:"id"`
	Kind string `yaml:"kind"`
	TRT  string `yaml:"trt"`

	// point
	Location Point   `yaml:"location,omitempty"`
	Rake     float64 `yaml:"rake,omitempty"`
	MFD      *MFD    `yaml:"mfd,omitempty"`

	// ruptures
	Ruptures []Rupture `yaml:"ruptures,omitempty"`
}

type MFD struct {
	Kind        string    `yaml:"kind"`
	MinMag      float64   `yaml:"min_mag"`
	MaxMag      float64   `yaml:"max_mag,omitempty"`
	BinWidth    float64   `yaml:"bin_width"`
	AVal        float64   `yaml:"a_val,omitempty"`
	BVal        float64   `yaml:"b_val,omitempty"`
	Occurrences []float64 `yaml:"occurrences,omitempty"`
}

type Rupture struct {
	Mag        float64 `yaml:"mag"`
	Rake       float64 `yaml:"rake"`
	Rate       float64 `yaml:"rate"`
	Hypocenter Point   `yaml:"hypocenter"`
}

// Parse decodes one scenario document, rejecting unknown keys, and validates it.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the document without building models.
func (s *Scenario) Validate() error {
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if strings.TrimSpace(s.Name) == "" {
		add("name is required")
	}
	if s.Site.Lat < -90 || s.Site.Lat > 90 {
		add("site latitude %v out of range", s.Site.Lat)
	}
	if s.Site.Vs30 <= 0 {
		add("site vs30 must be > 0")
	}
	if _, err := imt.Parse(s.IMT); err != nil {
		add("%v", err)
	}
	if !(s.IML > 0) {
		add("iml must be > 0")
	}
	for name, levels := range s.Curves {
		if _, err := imt.Parse(name); err != nil {
			add("curves: %v", err)
		}
		if len(levels) == 0 {
			add("curves %s: no levels", name)
		}
	}
	if !(s.TimeSpan > 0) {
		add("time_span must be > 0")
	}
	if !(s.TruncationLevel > 0) || math.IsInf(s.TruncationLevel, 0) {
		add("truncation_level must be a positive finite number")
	}
	if s.NEpsilons < 1 {
		add("n_epsilons must be >= 1")
	}
	if s.Bins.Mag <= 0 || s.Bins.Dist <= 0 || s.Bins.Coord <= 0 {
		add("bins: mag, dist and coord widths must be > 0")
	}
	if s.Bins.Coord >= 180 {
		add("bins: coord width must be below 180")
	}
	if s.IntegrationDistance < 0 {
		add("integration_distance must be >= 0")
	}
	if len(s.Sources) == 0 {
		add("no sources")
	}

	seen := map[string]bool{}
	for i, src := range s.Sources {
		switch {
		case src.ID == "":
			add("source %d: id is required", i)
		case seen[src.ID]:
			add("source %q: duplicate id", src.ID)
		}
		seen[src.ID] = true
		if _, ok := s.GSIMs[src.TRT]; !ok {
			add("source %q: no gsim for tectonic region type %q", src.ID, src.TRT)
		}
		switch src.Kind {
		case KindPoint:
			if src.MFD == nil {
				add("source %q: point source needs an mfd", src.ID)
			} else if src.MFD.Kind != MFDTruncatedGR && src.MFD.Kind != MFDEvenly {
				add("source %q: unknown mfd kind %q", src.ID, src.MFD.Kind)
			}
		case KindRuptures:
		default:
			add("source %q: unknown kind %q", src.ID, src.Kind)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("scenario %q: %w", s.Name, errors.Join(errs...))
	}
	return nil
}

type compiled struct {
	sources []source.Source
	site    *site.Site
	gsims   map[string]gsim.GroundMotionModel
	tom     tom.OccurrenceModel
}

func (s *Scenario) compile() (*compiled, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	c := &compiled{
		site:  site.New(s.Site.Lon, s.Site.Lat, s.Site.Vs30, s.Site.Vs30Measured, s.Site.Z1pt0, s.Site.Z2pt5),
		gsims: make(map[string]gsim.GroundMotionModel, len(s.GSIMs)),
	}
	if err := c.site.Validate(); err != nil {
		return nil, err
	}
	var err error
	if c.tom, err = tom.NewPoisson(s.TimeSpan); err != nil {
		return nil, err
	}

	trts := make([]string, 0, len(s.GSIMs))
	for trt := range s.GSIMs {
		trts = append(trts, trt)
	}
	sort.Strings(trts)
	for _, trt := range trts {
		doc := s.GSIMs[trt]
		m := &gsim.LogLinear{Name: doc.Name, Coeffs: make(map[imt.IMT]gsim.Coeffs, len(doc.Coeffs))}
		for name, k := range doc.Coeffs {
			t, err := imt.Parse(name)
			if err != nil {
				return nil, fmt.Errorf("gsim %q: %w", doc.Name, err)
			}
			m.Coeffs[t] = gsim.Coeffs{C1: k.C1, C2: k.C2, C3: k.C3, C4: k.C4, C5: k.C5, C6: k.C6, Sigma: k.Sigma}
		}
		if err := m.Validate(); err != nil {
			return nil, err
		}
		c.gsims[trt] = m
	}

	for _, doc := range s.Sources {
		src, err := doc.build()
		if err != nil {
			return nil, err
		}
		c.sources = append(c.sources, src)
	}
	return c, nil
}

func (d Source) build() (source.Source, error) {
	switch d.Kind {
	case KindPoint:
		var dist mfd.MFD
		if d.MFD.Kind == MFDTruncatedGR {
			dist = mfd.TruncatedGR{MinMag: d.MFD.MinMag, MaxMag: d.MFD.MaxMag, BinWidth: d.MFD.BinWidth,
				AVal: d.MFD.AVal, BVal: d.MFD.BVal}
		} else {
			dist = mfd.EvenlyDiscretized{MinMag: d.MFD.MinMag, BinWidth: d.MFD.BinWidth, Occurrences: d.MFD.Occurrences}
		}
		ps := &source.PointSource{SourceID: d.ID, TRT: d.TRT, Location: d.Location.geo(), Rake: d.Rake, MFD: dist}
		return ps, ps.Validate()
	default:
		rs := &source.RuptureSet{SourceID: d.ID, TRT: d.TRT}
		for _, r := range d.Ruptures {
			rs.Specs = append(rs.Specs, source.RuptureSpec{Mag: r.Mag, Rake: r.Rake, Rate: r.Rate, Hypocenter: r.Hypocenter.geo()})
		}
		return rs, rs.Validate()
	}
}

func (p Point) geo() geo.Point { return geo.Point{Lon: p.Lon, Lat: p.Lat, Depth: p.Depth} }

func (s *Scenario) filters() (filters.SourceSiteFilter, filters.RuptureSiteFilter) {
	ssf := filters.SourceSiteNoop
	if len(s.TRTs) > 0 {
		ssf = filters.SourceSiteByTRT(s.TRTs...)
	}
	rsf := filters.RuptureSiteNoop
	if s.IntegrationDistance > 0 {
		rsf = filters.RuptureSiteDistance(s.IntegrationDistance)
	}
	return ssf, rsf
}

// DisaggRequest builds the core disaggregation request.
func (s *Scenario) DisaggRequest() (disagg.Request, error) {
	c, err := s.compile()
	if err != nil {
		return disagg.Request{}, err
	}
	m, _ := imt.Parse(s.IMT)
	ssf, rsf := s.filters()
	return disagg.Request{
		Sources:           c.sources,
		Site:              c.site,
		IMT:               m,
		IML:               s.IML,
		GSIMs:             c.gsims,
		TOM:               c.tom,
		TruncationLevel:   s.TruncationLevel,
		NEpsilons:         s.NEpsilons,
		MagBinWidth:       s.Bins.Mag,
		DistBinWidth:      s.Bins.Dist,
		CoordBinWidth:     s.Bins.Coord,
		SourceSiteFilter:  ssf,
		RuptureSiteFilter: rsf,
	}, nil
}

// CurveRequest builds the hazard-curve request. Without a curves section it
// computes the single disaggregation level.
func (s *Scenario) CurveRequest() (hazard.Request, error) {
	c, err := s.compile()
	if err != nil {
		return hazard.Request{}, err
	}
	levels := map[imt.IMT][]float64{}
	for name, l := range s.Curves {
		m, _ := imt.Parse(name)
		levels[m] = append([]float64(nil), l...)
	}
	if len(levels) == 0 {
		m, _ := imt.Parse(s.IMT)
		levels[m] = []float64{s.IML}
	}
	ssf, rsf := s.filters()
	return hazard.Request{
		Sources:           c.sources,
		Site:              c.site,
		IMTs:              levels,
		GSIMs:             c.gsims,
		TOM:               c.tom,
		TruncationLevel:   s.TruncationLevel,
		SourceSiteFilter:  ssf,
		RuptureSiteFilter: rsf,
	}, nil
}
