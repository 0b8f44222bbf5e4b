// Package geo holds the geodetic helpers shared by the SQL and in-memory stores.
package geo

import (
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/ewkb"
)

// SRID is the spatial reference of every stored point (WGS84 lon/lat).
const SRID = 4326

// SphereRadius is the WGS84 mean radius in meters, the sphere ST_DistanceSphere
// uses for SRID 4326.
const SphereRadius = 6371008.7714

const (
	metersPerMile      = 1609.344
	metersPerKilometer = 1000.0
)

// Unit is a distance unit accepted by proximity filters.
type Unit string

const (
	Miles      Unit = "mi"
	Kilometers Unit = "km"
)

// ParseUnit validates a unit string.
func ParseUnit(raw string) (Unit, error) {
	switch u := Unit(strings.ToLower(strings.TrimSpace(raw))); u {
	case Miles, Kilometers:
		return u, nil
	default:
		return "", fmt.Errorf("unsupported distance unit %q", raw)
	}
}

// ToMeters converts a radius expressed in unit to meters.
func ToMeters(value float64, unit Unit) float64 {
	if unit == Miles {
		return value * metersPerMile
	}
	return value * metersPerKilometer
}

// NewPoint builds the geodetic point for a lon/lat pair.
func NewPoint(lon, lat float64) orb.Point {
	return orb.Point{lon, lat}
}

func radians(d float64) float64 {
	return d * math.Pi / 180.0
}

// SphereDistance returns the great-circle distance in meters between two points
// on a perfect sphere. It matches PostGIS ST_DistanceSphere, not the ellipsoidal
// ST_DistanceSpheroid.
func SphereDistance(a, b orb.Point) float64 {
	lat1 := radians(a.Lat())
	lat2 := radians(b.Lat())
	dLat := lat2 - lat1
	dLon := radians(b.Lon() - a.Lon())

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	if h > 1 {
		h = 1
	}

	return 2 * SphereRadius * math.Asin(math.Sqrt(h))
}

// EWKBHex encodes a point as hex EWKB for ST_GeomFromEWKB(decode($n, 'hex')).
func EWKBHex(p orb.Point) (string, error) {
	return ewkb.MarshalToHex(p, SRID)
}

// PointFromEWKB decodes the bytes returned by ST_AsEWKB.
func PointFromEWKB(data []byte) (orb.Point, error) {
	if len(data) == 0 {
		return orb.Point{}, fmt.Errorf("empty geometry")
	}
	g, srid, err := ewkb.Unmarshal(data)
	if err != nil {
		return orb.Point{}, fmt.Errorf("decode ewkb: %w", err)
	}
	if srid != 0 && srid != SRID {
		return orb.Point{}, fmt.Errorf("unexpected srid %d", srid)
	}
	p, ok := g.(orb.Point)
	if !ok {
		return orb.Point{}, fmt.Errorf("expected point geometry, got %s", g.GeoJSONType())
	}
	return p, nil
}
