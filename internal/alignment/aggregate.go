package alignment

// PointsPerCause is added to a total for every cause where the entity holds
// a counting list position.
const PointsPerCause = 100

// Tally is the aggregate of one entity's positions across a user's causes.
// AlignedPositions and UnalignedPositions hold one entry per evaluated cause.
type Tally struct {
	Support            int
	Avoid              int
	AlignedPositions   []int
	UnalignedPositions []int
	MatchingValueIDs   []string
}

// Aggregate evaluates the entity identified by key against every cause the
// user holds a stance on. For a supported cause a support-list position
// counts toward Support and an oppose-list position toward Avoid. For an
// avoided cause the lists swap roles. The first matching rule wins, so an
// entity on both lists is scored by its favourable membership. Causes with
// no stance are skipped and repeated cause ids are evaluated once.
func Aggregate(key string, causes []Cause, lists RankLists) Tally {
	var t Tally
	seen := make(map[string]struct{}, len(causes))

	for _, c := range causes {
		if !c.Type.Valid() {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}

		// A cause missing from lists resolves to the sentinel on both sides.
		supportPos, opposePos := ResolvePositions(key, lists[c.ID])
		favourable, unfavourable := supportPos, opposePos
		if c.Type == Avoid {
			favourable, unfavourable = opposePos, supportPos
		}

		switch {
		case favourable <= MaxListPosition:
			t.Support += PointsPerCause
			t.AlignedPositions = append(t.AlignedPositions, favourable)
			t.UnalignedPositions = append(t.UnalignedPositions, SentinelPosition)
			t.MatchingValueIDs = append(t.MatchingValueIDs, c.ID)
		case unfavourable <= MaxListPosition:
			t.Avoid += PointsPerCause
			t.AlignedPositions = append(t.AlignedPositions, SentinelPosition)
			t.UnalignedPositions = append(t.UnalignedPositions, unfavourable)
			t.MatchingValueIDs = append(t.MatchingValueIDs, c.ID)
		default:
			t.AlignedPositions = append(t.AlignedPositions, SentinelPosition)
			t.UnalignedPositions = append(t.UnalignedPositions, SentinelPosition)
		}
	}

	return t
}
