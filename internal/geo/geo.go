// Package geo computes great-circle distances between coordinates and decides
// whether a set of business locations falls inside a search radius.
package geo

import (
	"fmt"
	"math"
	"strings"
)

// Unit is a distance unit.
type Unit string

const (
	Miles      Unit = "mi"
	Kilometers Unit = "km"
)

// Mean Earth radius in each supported unit.
const (
	EarthRadiusKm    = 6371.0088
	EarthRadiusMiles = 3958.8
)

// EarthRadius returns the mean Earth radius expressed in u.
// Unknown units are treated as miles.
func (u Unit) EarthRadius() float64 {
	if u == Kilometers {
		return EarthRadiusKm
	}
	return EarthRadiusMiles
}

// ParseUnit parses "mi"/"miles" or "km"/"kilometers". An empty string is miles.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mi", "mile", "miles":
		return Miles, nil
	case "km", "kilometer", "kilometers", "kilometre", "kilometres":
		return Kilometers, nil
	default:
		return "", fmt.Errorf("unknown distance unit %q", s)
	}
}

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies within the legal latitude and
// longitude ranges.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Location is one physical address of a business. Coordinates is nil when the
// address has not been geocoded.
type Location struct {
	Address     string `json:"address,omitempty"`
	Coordinates *Point `json:"coordinates,omitempty"`
	Primary     bool   `json:"is_primary,omitempty"`
}

// Haversine returns the great-circle distance between a and b in unit u.
func Haversine(a, b Point, u Unit) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	// Rounding can push h just past 1 for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return 2 * u.EarthRadius() * math.Asin(math.Sqrt(h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
