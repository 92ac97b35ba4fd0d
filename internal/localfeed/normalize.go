// Package localfeed builds the proximity feed of local businesses. Each
// business is scored by comparing its declared causes with the user's, and
// the scores of the businesses in range are rebased onto a bell curve so the
// feed reads relative to the neighbourhood rather than to absolute overlap.
package localfeed

import (
	"math"
	"slices"

	"github.com/onnwee/stand/internal/alignment"
	"github.com/onnwee/stand/internal/ranking"
)

// RawScore compares a business's causes with the user's. Every cause both
// sides hold with the same stance adds one and every cause held with
// opposite stances subtracts one. Causes without a stance on either side
// contribute nothing. Repeated cause ids keep their first occurrence.
func RawScore(user, business []alignment.Cause) int {
	stances := make(map[string]alignment.Stance, len(business))
	for _, c := range business {
		if _, ok := stances[c.ID]; !ok {
			stances[c.ID] = c.Type
		}
	}

	score := 0
	seen := make(map[string]struct{}, len(user))
	for _, c := range user {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}

		theirs, ok := stances[c.ID]
		if !ok || !c.Type.Valid() || !theirs.Valid() {
			continue
		}
		if theirs == c.Type {
			score++
		} else {
			score--
		}
	}
	return score
}

// Normalize rebases raw scores onto [b.Floor, b.Ceiling] relative to the
// batch they belong to. Each score's mid-rank percentile p is mapped through
// the inverse normal CDF and stretched so the largest reachable z lands on
// the ceiling and its mirror on the floor. Most businesses land near the
// midpoint. The mapping is non-decreasing in the raw score, equal raw scores
// share a normalized score, and a batch of one or of identical scores maps
// entirely to the midpoint.
func Normalize(raw []int, b ranking.LocalFeedWeights) []int {
	n := len(raw)
	out := make([]int, n)
	if n == 0 {
		return out
	}

	sorted := slices.Clone(raw)
	slices.Sort(sorted)

	// zMax is the z of a unique maximum, the largest any score can reach.
	zMax := probit(float64(2*n-1) / float64(2*n))

	for i, v := range raw {
		less, _ := slices.BinarySearch(sorted, v)
		upper, _ := slices.BinarySearch(sorted, v+1)
		equal := upper - less

		p := float64(2*less+equal) / float64(2*n)
		out[i] = scale(probit(p), zMax, b)
	}
	return out
}

func scale(z, zMax float64, b ranking.LocalFeedWeights) int {
	if zMax <= 0 || z == 0 {
		return b.Midpoint
	}

	spread := float64(b.Ceiling - b.Midpoint)
	if z < 0 {
		spread = float64(b.Midpoint - b.Floor)
	}
	v := float64(b.Midpoint) + spread*z/zMax
	return max(b.Floor, min(alignment.RoundHalfUp(v), b.Ceiling))
}

// probit is the inverse of the standard normal CDF.
func probit(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}
