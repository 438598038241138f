// Package filters decides which sources and ruptures are considered for a site.
//
// A filter takes the full list of (entity, site) pairs and returns the pairs
// that survive, in the same relative order. A pair whose Site is nil is
// treated as filtered out by the calculators.
package filters

import (
	"seisdisagg-core/site"
	"seisdisagg-core/source"
)

// SourceSite pairs a source with the site subset it applies to.
type SourceSite struct {
	Source source.Source
	Site   *site.Site
}

// RuptureSite pairs a rupture with the site subset it applies to.
type RuptureSite struct {
	Rupture source.Rupture
	Site    *site.Site
}

type (
	SourceSiteFilter  func([]SourceSite) []SourceSite
	RuptureSiteFilter func([]RuptureSite) []RuptureSite
)

// SourceSiteNoop keeps every source.
func SourceSiteNoop(pairs []SourceSite) []SourceSite { return pairs }

// RuptureSiteNoop keeps every rupture.
func RuptureSiteNoop(pairs []RuptureSite) []RuptureSite { return pairs }

// RuptureSiteDistance drops ruptures whose Joyner-Boore distance to the site
// exceeds integrationDistance (km).
func RuptureSiteDistance(integrationDistance float64) RuptureSiteFilter {
	return func(pairs []RuptureSite) []RuptureSite {
		out := pairs[:0:0]
		for _, p := range pairs {
			if p.Site == nil {
				continue
			}
			if p.Rupture.Surface().JoynerBooreDistance(p.Site) > integrationDistance {
				continue
			}
			out = append(out, p)
		}
		return out
	}
}

// SourceSiteByTRT keeps sources whose tectonic region type is listed.
func SourceSiteByTRT(trts ...string) SourceSiteFilter {
	keep := make(map[string]struct{}, len(trts))
	for _, t := range trts {
		keep[t] = struct{}{}
	}
	return func(pairs []SourceSite) []SourceSite {
		out := pairs[:0:0]
		for _, p := range pairs {
			if _, ok := keep[p.Source.TectonicRegionType()]; ok {
				out = append(out, p)
			}
		}
		return out
	}
}
