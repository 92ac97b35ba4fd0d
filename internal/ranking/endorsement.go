package ranking

import "math"

// Endorsement is a brand's aggregate standing across users' ordered lists.
type Endorsement struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
	Count int     `json:"endorsement_count"`
}

// Weight returns the score contributed by an entry at the 1-based position
// p of a user's list. Positions covered by Head use the table; later
// positions decay and never fall below 1.
func (w EndorsementWeights) Weight(p int) float64 {
	if p < 1 {
		return 0
	}
	if p <= len(w.Head) {
		return w.Head[p-1]
	}

	switch {
	case p <= 20:
		return float64(50 - 2*(p-10))
	case p <= 50:
		return float64(30 - (p - 20))
	default:
		return math.Max(1, 10-float64(p-50)/10)
	}
}

// TopEndorsed sums the position weight of every brand id across lists and
// returns the limit highest scoring brands. Empty ids are skipped but still
// occupy a position. Ties keep the order in which brands were first seen.
// A non-positive limit returns every brand.
func TopEndorsed(lists [][]string, limit int, w EndorsementWeights) []Endorsement {
	index := make(map[string]int)
	var out []Endorsement

	for _, list := range lists {
		for i, id := range list {
			if id == "" {
				continue
			}
			weight := w.Weight(i + 1)
			if at, ok := index[id]; ok {
				out[at].Score += weight
				out[at].Count++
				continue
			}
			index[id] = len(out)
			out = append(out, Endorsement{ID: id, Score: weight, Count: 1})
		}
	}

	out = SortDescending(out, func(e Endorsement) float64 { return e.Score })
	return Window(out, 0, limit)
}
