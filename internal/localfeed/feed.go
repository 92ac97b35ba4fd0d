package localfeed

import (
	"fmt"
	"strings"

	"github.com/onnwee/stand/internal/alignment"
	"github.com/onnwee/stand/internal/geo"
	"github.com/onnwee/stand/internal/ranking"
)

// Direction orders the combined feed by normalized score.
type Direction string

const (
	HighToLow Direction = "highToLow"
	LowToHigh Direction = "lowToHigh"
)

// ParseDirection parses a sort direction. An empty string is HighToLow.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case "", HighToLow:
		return HighToLow, nil
	case LowToHigh:
		return LowToHigh, nil
	default:
		return "", fmt.Errorf("unknown sort direction %q", s)
	}
}

// Options controls a feed build.
type Options struct {
	// Origin is the user's coordinate. Without it no distances are computed
	// and only an inactive Radius admits businesses.
	Origin *geo.Point
	Radius geo.Radius
	// Query filters by name, category or closest address after normalization.
	Query     string
	Direction Direction
	Bounds    ranking.LocalFeedWeights
}

// Item is one business in the feed.
type Item struct {
	Entity          alignment.Scorable       `json:"-"`
	RawScore        int                      `json:"raw_score"`
	Score           int                      `json:"score"`
	Classification  alignment.Classification `json:"classification"`
	Label           string                   `json:"label"`
	Distance        *float64                 `json:"distance,omitempty"`
	ClosestLocation *geo.Location            `json:"closest_location,omitempty"`
}

// ID returns the business id.
func (i Item) ID() string {
	return i.Entity.Info().ID
}

// Result is a built feed. All is ordered by Direction. Aligned holds scores
// at or above the midpoint, highest first, and Unaligned the rest, lowest
// first.
type Result struct {
	All       []Item
	Aligned   []Item
	Unaligned []Item
}

// Build filters candidates to those within range of the origin, scores them
// against the user's causes, normalizes the scores across the businesses in
// range, applies the text query and orders the result.
func Build(candidates []alignment.Scorable, causes []alignment.Cause, opts Options) Result {
	if opts.Bounds == (ranking.LocalFeedWeights{}) {
		opts.Bounds = ranking.DefaultWeights().LocalFeed
	}

	inRange := make([]Item, 0, len(candidates))
	for _, c := range candidates {
		rr := geo.RangeResult{WithinRange: !opts.Radius.Active()}
		if opts.Origin != nil {
			rr = geo.Evaluate(c.Coordinates(), *opts.Origin, opts.Radius)
		}
		if !rr.WithinRange {
			continue
		}
		inRange = append(inRange, Item{
			Entity:          c,
			RawScore:        RawScore(causes, c.Stances()),
			Distance:        rr.Distance,
			ClosestLocation: rr.ClosestLocation,
		})
	}

	raw := make([]int, len(inRange))
	for i, it := range inRange {
		raw[i] = it.RawScore
	}
	for i, s := range Normalize(raw, opts.Bounds) {
		inRange[i].Score = s
		inRange[i].Classification = Classify(s, opts.Bounds)
		inRange[i].Label = Label(s, opts.Bounds)
	}

	matched := filter(inRange, opts.Query)

	res := Result{Aligned: []Item{}, Unaligned: []Item{}}
	for _, it := range matched {
		if it.Classification == alignment.Aligned {
			res.Aligned = append(res.Aligned, it)
		} else {
			res.Unaligned = append(res.Unaligned, it)
		}
	}

	res.Aligned = ranking.SortDescending(res.Aligned, score)
	res.Unaligned = ranking.SortAscending(res.Unaligned, score)
	if opts.Direction == LowToHigh {
		res.All = ranking.SortAscending(matched, score)
	} else {
		res.All = ranking.SortDescending(matched, score)
	}
	return res
}

func filter(items []Item, query string) []Item {
	q := alignment.FoldText(strings.TrimSpace(query))
	if q == "" {
		return items
	}

	out := make([]Item, 0, len(items))
	for _, it := range items {
		info := it.Entity.Info()
		if alignment.ContainsFolded(info.Name, q) ||
			alignment.ContainsFolded(info.Category, q) ||
			(it.ClosestLocation != nil && alignment.ContainsFolded(it.ClosestLocation.Address, q)) {
			out = append(out, it)
		}
	}
	return out
}

func score(i Item) int {
	return i.Score
}
