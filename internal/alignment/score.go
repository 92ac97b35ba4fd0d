package alignment

import "github.com/onnwee/stand/internal/ranking"

// ScoredEntity is the outcome of scoring one entity for one user.
type ScoredEntity struct {
	Entity              Scorable       `json:"-"`
	TotalSupportScore   int            `json:"total_support_score"`
	TotalAvoidScore     int            `json:"total_avoid_score"`
	AlignmentStrength   int            `json:"alignment_strength"`
	AveragePosition     float64        `json:"average_position"`
	MatchingValuesCount int            `json:"matching_values_count"`
	MatchingValueIDs    []string       `json:"matching_value_ids,omitempty"`
	Classification      Classification `json:"classification"`
}

// ID returns the scored entity's id.
func (s ScoredEntity) ID() string {
	return s.Entity.Info().ID
}

// ScoreEntity scores e against the user's causes.
func ScoreEntity(e Scorable, causes []Cause, lists RankLists) ScoredEntity {
	t := Aggregate(e.Info().RankKey(), causes, lists)
	class := Classify(t.Support, t.Avoid)

	avg := float64(SentinelPosition)
	switch class {
	case Aligned:
		avg = AveragePosition(t.AlignedPositions)
	case Unaligned:
		avg = AveragePosition(t.UnalignedPositions)
	}

	return ScoredEntity{
		Entity:              e,
		TotalSupportScore:   t.Support,
		TotalAvoidScore:     t.Avoid,
		AlignmentStrength:   Strength(class, t),
		AveragePosition:     avg,
		MatchingValuesCount: len(t.MatchingValueIDs),
		MatchingValueIDs:    t.MatchingValueIDs,
		Classification:      class,
	}
}

// ScoreAll scores every entity, preserving input order.
func ScoreAll(entities []Scorable, causes []Cause, lists RankLists) []ScoredEntity {
	out := make([]ScoredEntity, 0, len(entities))
	for _, e := range entities {
		out = append(out, ScoreEntity(e, causes, lists))
	}
	return out
}

// Result is the ranked output of one scoring pass. Neutral entities appear
// only in Scored and Strengths.
type Result struct {
	Scored    []ScoredEntity
	Aligned   []ScoredEntity
	Unaligned []ScoredEntity
	Strengths map[string]int
}

// Rank partitions scored entities by classification. Aligned entities are
// ordered strongest first and unaligned entities most conflicting first.
// Ties keep the order of scored.
func Rank(scored []ScoredEntity) Result {
	res := Result{
		Scored:    scored,
		Aligned:   []ScoredEntity{},
		Unaligned: []ScoredEntity{},
		Strengths: make(map[string]int, len(scored)),
	}

	for _, s := range scored {
		res.Strengths[s.ID()] = s.AlignmentStrength
		switch s.Classification {
		case Aligned:
			res.Aligned = append(res.Aligned, s)
		case Unaligned:
			res.Unaligned = append(res.Unaligned, s)
		}
	}

	res.Aligned = ranking.SortDescending(res.Aligned, strength)
	res.Unaligned = ranking.SortAscending(res.Unaligned, strength)
	return res
}

func strength(s ScoredEntity) int {
	return s.AlignmentStrength
}
