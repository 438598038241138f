// core/geo/geo.go
// Spherical helpers for points given in decimal degrees.
//
// Longitudes are kept in [-180, 180). Extents are measured eastward and are
// signed: a negative extent means lon2 lies west of lon1.
package geo

import (
	"errors"
	"math"
)

// EarthRadius is the mean Earth radius in km.
const EarthRadius = 6371.0

// lonFoldTol folds values that land a rounding error short of +180 onto -180.
const lonFoldTol = 1e-9

// ErrWideExtent is returned when a longitude set spans more than 180 degrees.
var ErrWideExtent = errors.New("geo: points collection has longitudinal extent wider than 180 deg")

// Point is a location on the Earth surface with an optional depth (km).
type Point struct {
	Lon   float64
	Lat   float64
	Depth float64
}

// NormalizeLon maps lon into [-180, 180).
func NormalizeLon(lon float64) float64 {
	l := floorMod(lon+180, 360) - 180
	if 180-l < lonFoldTol {
		l = -180
	}
	return l
}

// LongitudinalExtent returns the eastward distance in degrees from lon1 to
// lon2, in [-180, 180).
func LongitudinalExtent(lon1, lon2 float64) float64 {
	return floorMod(lon2-lon1+180, 360) - 180
}

// BoundingBox is the spherical bounding box of a set of points. West may be
// numerically greater than East when the box crosses the antimeridian.
type BoundingBox struct {
	West, East, North, South float64
}

// CrossesAntimeridian reports whether the box spans the ±180 meridian.
func (b BoundingBox) CrossesAntimeridian() bool { return b.West > b.East }

// SphericalBoundingBox returns the smallest box containing all points.
// When points lie on both sides of the antimeridian the west edge is the
// lowest positive longitude and the east edge the highest negative one.
func SphericalBoundingBox(lons, lats []float64) (BoundingBox, error) {
	if len(lons) == 0 || len(lons) != len(lats) {
		return BoundingBox{}, errors.New("geo: bounding box needs equal-length, non-empty lons/lats")
	}
	bb := BoundingBox{West: lons[0], East: lons[0], North: lats[0], South: lats[0]}
	for i := 1; i < len(lons); i++ {
		bb.West = math.Min(bb.West, lons[i])
		bb.East = math.Max(bb.East, lons[i])
		bb.North = math.Max(bb.North, lats[i])
		bb.South = math.Min(bb.South, lats[i])
	}
	if LongitudinalExtent(bb.West, bb.East) >= 0 {
		return bb, nil
	}

	west, east := math.Inf(1), math.Inf(-1)
	for _, lon := range lons {
		if lon > 0 && lon < west {
			west = lon
		}
		if lon < 0 && lon > east {
			east = lon
		}
	}
	for _, lon := range lons {
		if LongitudinalExtent(west, lon) < 0 || LongitudinalExtent(lon, east) < 0 {
			return BoundingBox{}, ErrWideExtent
		}
	}
	bb.West, bb.East = west, east
	return bb, nil
}

// GeodeticDistance is the great-circle distance in km (haversine).
func GeodeticDistance(lon1, lat1, lon2, lat2 float64) float64 {
	lon1, lat1, lon2, lat2 = rad(lon1), rad(lat1), rad(lon2), rad(lat2)
	sLat := math.Sin((lat1 - lat2) / 2)
	sLon := math.Sin((lon1 - lon2) / 2)
	return 2 * EarthRadius * math.Asin(math.Sqrt(sLat*sLat+math.Cos(lat1)*math.Cos(lat2)*sLon*sLon))
}

// DistanceTo is the surface distance between p and q in km.
func (p Point) DistanceTo(q Point) float64 {
	return GeodeticDistance(p.Lon, p.Lat, q.Lon, q.Lat)
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }

// floorMod is the modulo with the sign of the divisor.
func floorMod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}
