package validate

import (
	"errors"
	"fmt"
	"math"
)

// Coordinate validation errors
var (
	ErrLatitudeOutOfRange  = errors.New("latitude must be between -90 and 90")
	ErrLongitudeOutOfRange = errors.New("longitude must be between -180 and 180")
	ErrInvalidRadius       = errors.New("radius must be a positive number")
	ErrRadiusTooLarge      = errors.New("radius is too large")
)

// MaxRadiusMiles caps the local feed search radius.
const MaxRadiusMiles = 500.0

// Coordinate checks that lat and lng are finite and within range.
func Coordinate(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return fmt.Errorf("%w: got %v", ErrLatitudeOutOfRange, lat)
	}
	if math.IsNaN(lng) || math.IsInf(lng, 0) || lng < -180 || lng > 180 {
		return fmt.Errorf("%w: got %v", ErrLongitudeOutOfRange, lng)
	}
	return nil
}

// RadiusMiles checks a search radius in miles. It must be positive and at
// most MaxRadiusMiles.
func RadiusMiles(r float64) error {
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidRadius, r)
	}
	if r > MaxRadiusMiles {
		return fmt.Errorf("%w: got %v, maximum is %v", ErrRadiusTooLarge, r, MaxRadiusMiles)
	}
	return nil
}
