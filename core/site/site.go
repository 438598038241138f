// Package site describes the location where hazard is computed.
package site

import (
	"errors"
	"fmt"

	"seisdisagg-core/geo"
)

// Site is a single calculation site with its soil parameters.
type Site struct {
	Location     geo.Point
	Vs30         float64 // m/s
	Vs30Measured bool
	Z1pt0        float64 // m, depth to Vs=1.0 km/s
	Z2pt5        float64 // km, depth to Vs=2.5 km/s
}

// New returns a site at lon/lat with the given soil parameters.
func New(lon, lat, vs30 float64, measured bool, z1pt0, z2pt5 float64) *Site {
	return &Site{
		Location:     geo.Point{Lon: lon, Lat: lat},
		Vs30:         vs30,
		Vs30Measured: measured,
		Z1pt0:        z1pt0,
		Z2pt5:        z2pt5,
	}
}

// Validate checks physical ranges.
func (s *Site) Validate() error {
	if s == nil {
		return errors.New("site: nil site")
	}
	if s.Vs30 <= 0 {
		return fmt.Errorf("site: vs30 must be > 0, got %v", s.Vs30)
	}
	if s.Z1pt0 <= 0 || s.Z2pt5 <= 0 {
		return fmt.Errorf("site: z1pt0 and z2pt5 must be > 0, got %v / %v", s.Z1pt0, s.Z2pt5)
	}
	if s.Location.Lat < -90 || s.Location.Lat > 90 {
		return fmt.Errorf("site: latitude %v out of range", s.Location.Lat)
	}
	return nil
}
