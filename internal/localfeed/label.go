package localfeed

import (
	"github.com/onnwee/stand/internal/alignment"
	"github.com/onnwee/stand/internal/ranking"
)

// Local feed labels. A normalized score has no neutral band, so every
// business reads as some degree of aligned or opposed.
const (
	LabelHighlyAligned = "Highly Aligned"
	LabelAligned       = "Aligned"
	LabelOpposed       = "Opposed"
	LabelHighlyOpposed = "Highly Opposed"
)

// Classify splits normalized scores at the midpoint: at or above is aligned.
func Classify(score int, b ranking.LocalFeedWeights) alignment.Classification {
	if score >= b.Midpoint {
		return alignment.Aligned
	}
	return alignment.Unaligned
}

// Label names a normalized score. Each side of the midpoint is halved:
// the outer half is "Highly", the inner half plain.
func Label(score int, b ranking.LocalFeedWeights) string {
	if Classify(score, b) == alignment.Aligned {
		if score >= b.Midpoint+(b.Ceiling-b.Midpoint)/2 {
			return LabelHighlyAligned
		}
		return LabelAligned
	}
	if score <= b.Midpoint-(b.Midpoint-b.Floor)/2 {
		return LabelHighlyOpposed
	}
	return LabelOpposed
}
