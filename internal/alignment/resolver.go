package alignment

const (
	// MaxListPosition is the last list slot that counts as membership.
	MaxListPosition = 10
	// SentinelPosition marks an entity absent from the top of a list.
	SentinelPosition = MaxListPosition + 1
)

// ResolvePositions returns the 1-based positions of key in the support and
// oppose lists. Matching is exact and case-sensitive and the first
// occurrence wins. A key that is empty, absent, or only found past
// MaxListPosition resolves to SentinelPosition.
func ResolvePositions(key string, list RankList) (support, oppose int) {
	return position(key, list.Support), position(key, list.Oppose)
}

func position(key string, list []string) int {
	if key == "" {
		return SentinelPosition
	}
	for i, k := range list {
		if i >= MaxListPosition {
			break
		}
		if k == key {
			return i + 1
		}
	}
	return SentinelPosition
}
