package alignment

import "github.com/onnwee/stand/internal/geo"

// Located is a scored entity kept by a distance filter, with its closest
// location relative to the origin.
type Located struct {
	ScoredEntity
	Range geo.RangeResult
}

// WithinRadius keeps the scored entities in range of origin, preserving
// their order. With an active radius entities without coordinates are
// dropped; with an inactive one every entity is kept and those with
// coordinates carry their distance.
func WithinRadius(scored []ScoredEntity, origin geo.Point, radius geo.Radius) []Located {
	out := make([]Located, 0, len(scored))
	for _, s := range scored {
		rr := geo.Evaluate(s.Entity.Coordinates(), origin, radius)
		if !rr.WithinRange {
			continue
		}
		out = append(out, Located{ScoredEntity: s, Range: rr})
	}
	return out
}
