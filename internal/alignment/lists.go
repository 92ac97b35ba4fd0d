package alignment

import "slices"

type listEntry struct {
	key      string
	position int
}

// ListsFromAlignments derives per-cause rank lists from the ValueAlignment
// records carried by entities. Each entity lands at its recorded position.
// Unused slots are left empty, and an entity whose slot is taken moves to
// the next free one. Positions below 1 are ignored. Positions past
// MaxListPosition are kept in position order after slot 10 and never count.
// A repeated (cause, side, entity) record keeps its first occurrence. An
// entity recorded on both sides of a cause stays on both.
func ListsFromAlignments(entities []Scorable) RankLists {
	type side struct{ support, oppose []listEntry }
	bySide := make(map[string]*side)
	var order []string
	seen := make(map[[3]string]struct{})

	for _, e := range entities {
		key := e.Info().RankKey()
		if key == "" {
			continue
		}
		for _, va := range e.Alignments() {
			if va.Position < 1 || va.ValueID == "" {
				continue
			}
			dir := "oppose"
			if va.IsSupport {
				dir = "support"
			}
			id := [3]string{va.ValueID, dir, key}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			s, ok := bySide[va.ValueID]
			if !ok {
				s = &side{}
				bySide[va.ValueID] = s
				order = append(order, va.ValueID)
			}
			entry := listEntry{key: key, position: va.Position}
			if va.IsSupport {
				s.support = append(s.support, entry)
			} else {
				s.oppose = append(s.oppose, entry)
			}
		}
	}

	lists := make(RankLists, len(order))
	for _, valueID := range order {
		s := bySide[valueID]
		lists[valueID] = RankList{
			Support: place(s.support),
			Oppose:  place(s.oppose),
		}
	}
	return lists
}

func place(entries []listEntry) []string {
	if len(entries) == 0 {
		return nil
	}
	slices.SortStableFunc(entries, func(a, b listEntry) int {
		return a.position - b.position
	})

	var list []string
	for _, e := range entries {
		for len(list) < e.position-1 && len(list) < MaxListPosition {
			list = append(list, "")
		}
		list = append(list, e.key)
	}
	return list
}

// WithFallback returns primary with any cause missing from it filled in
// from fallback. Neither input is modified.
func WithFallback(primary, fallback RankLists) RankLists {
	out := make(RankLists, len(primary)+len(fallback))
	for id, l := range fallback {
		out[id] = l
	}
	for id, l := range primary {
		out[id] = l
	}
	return out
}
