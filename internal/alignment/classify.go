package alignment

import "math"

// Classification is the mutually exclusive outcome of scoring an entity.
type Classification string

const (
	Aligned   Classification = "aligned"
	Unaligned Classification = "unaligned"
	Neutral   Classification = "neutral"
)

// NeutralStrength is the strength of every neutral entity.
const NeutralStrength = 50

// Classify compares the support and avoid totals of a tally.
func Classify(support, avoid int) Classification {
	switch {
	case support > avoid && support > 0:
		return Aligned
	case avoid > support && avoid > 0:
		return Unaligned
	default:
		return Neutral
	}
}

// Strength maps a classified tally to [0, 100].
//
// Aligned entities score 100 - ((avg-1)/10)*50 over their aligned positions,
// so an average of 1 is 100 and the sentinel is 50. Unaligned entities score
// ((avg-1)/10)*50 over their unaligned positions, so an average of 1 is 0.
// Results are rounded half up using integer arithmetic so fixtures never
// depend on floating point error at .5 boundaries.
func Strength(c Classification, t Tally) int {
	switch c {
	case Aligned:
		n, sum := len(t.AlignedPositions), sumInts(t.AlignedPositions)
		if n == 0 {
			return NeutralStrength
		}
		// 100 - 5(sum/n - 1) == (105n - 5sum) / n
		return clamp(divRoundHalfUp(105*n-5*sum, n), 0, 100)
	case Unaligned:
		n, sum := len(t.UnalignedPositions), sumInts(t.UnalignedPositions)
		if n == 0 {
			return NeutralStrength
		}
		// 5(sum/n - 1) == (5sum - 5n) / n
		return clamp(divRoundHalfUp(5*sum-5*n, n), 0, 100)
	default:
		return NeutralStrength
	}
}

// AveragePosition returns the arithmetic mean of positions, or
// SentinelPosition when there are none.
func AveragePosition(positions []int) float64 {
	if len(positions) == 0 {
		return SentinelPosition
	}
	return float64(sumInts(positions)) / float64(len(positions))
}

// RoundHalfUp rounds x to the nearest integer, with halves rounded toward
// positive infinity.
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// divRoundHalfUp returns p/n rounded half up for n > 0.
func divRoundHalfUp(p, n int) int {
	q := 2*p + n
	d := 2 * n
	if q >= 0 {
		return q / d
	}
	// Go truncates toward zero; floor for negative numerators.
	return -((-q + d - 1) / d)
}

func sumInts(xs []int) int {
	s := 0
	for _, x := range xs {
		s += x
	}
	return s
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
