package alignment

import (
	"strings"

	"github.com/onnwee/stand/internal/ranking"
)

// SearchHit is a scored entity matched by a text query.
type SearchHit struct {
	ScoredEntity
	Relevance float64 `json:"relevance"`
}

// Search returns the scored entities whose name or category contains query,
// ignoring case and accents, ordered by relevance. Relevance is the distance of
// the strength from neutral plus causeBoost when the entity touched any of
// the user's causes. An empty query matches everything. Equal relevance
// keeps the order of scored.
func Search(scored []ScoredEntity, query string, causeBoost float64) []SearchHit {
	q := FoldText(strings.TrimSpace(query))

	hits := make([]SearchHit, 0, len(scored))
	for _, s := range scored {
		info := s.Entity.Info()
		if q != "" &&
			!ContainsFolded(info.Name, q) &&
			!ContainsFolded(info.Category, q) {
			continue
		}

		relevance := float64(abs(s.AlignmentStrength - NeutralStrength))
		if s.MatchingValuesCount > 0 {
			relevance += causeBoost
		}
		hits = append(hits, SearchHit{ScoredEntity: s, Relevance: relevance})
	}

	return ranking.SortDescending(hits, func(h SearchHit) float64 { return h.Relevance })
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
