package geo

// Radius is a search radius. A non-positive Value disables distance filtering.
type Radius struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// NoFilter returns a radius that admits every business. Distances are still
// reported in miles.
func NoFilter() Radius {
	return Radius{Unit: Miles}
}

// WithinMiles returns a radius of v miles.
func WithinMiles(v float64) Radius {
	return Radius{Value: v, Unit: Miles}
}

// WithinKilometers returns a radius of v kilometres.
func WithinKilometers(v float64) Radius {
	return Radius{Value: v, Unit: Kilometers}
}

// Active reports whether the radius filters by distance.
func (r Radius) Active() bool {
	return r.Value > 0
}

// RangeResult describes a business relative to the user's coordinate.
// Distance and ClosestLocation are nil when none of the business's locations
// have coordinates.
type RangeResult struct {
	Distance        *float64  `json:"distance,omitempty"`
	ClosestLocation *Location `json:"closest_location,omitempty"`
	WithinRange     bool      `json:"within_range"`
}

// Closest returns the location nearest to origin and its distance in unit u.
// Locations without coordinates are skipped. Ties keep the earliest location.
// ok is false when no location has coordinates.
func Closest(locations []Location, origin Point, u Unit) (loc Location, dist float64, ok bool) {
	for _, l := range locations {
		if l.Coordinates == nil {
			continue
		}
		d := Haversine(origin, *l.Coordinates, u)
		if !ok || d < dist {
			loc, dist, ok = l, d, true
		}
	}
	return loc, dist, ok
}

// Evaluate computes the closest location of a business to origin and tests
// it against radius. With an inactive radius every business is within range.
// With an active radius a business without coordinates is out of range.
func Evaluate(locations []Location, origin Point, radius Radius) RangeResult {
	unit := radius.Unit
	if unit == "" {
		unit = Miles
	}

	loc, dist, ok := Closest(locations, origin, unit)
	if !ok {
		return RangeResult{WithinRange: !radius.Active()}
	}

	return RangeResult{
		Distance:        &dist,
		ClosestLocation: &loc,
		WithinRange:     !radius.Active() || dist <= radius.Value,
	}
}
