package alignment

// Similarity returns the Jaccard similarity of two cause sets as a
// percentage, comparing cause ids only. Either set being empty yields 0.
func Similarity(a, b []Cause) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, c := range a {
		setA[c.ID] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, c := range b {
		setB[c.ID] = struct{}{}
	}

	intersection := 0
	for id := range setA {
		if _, ok := setB[id]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection

	return RoundHalfUp(float64(intersection) / float64(union) * 100)
}
