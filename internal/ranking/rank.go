package ranking

import (
	"cmp"
	"slices"
)

// SortDescending returns a copy of items ordered by key, highest first.
// Items with equal keys keep their input order.
func SortDescending[T any, K cmp.Ordered](items []T, key func(T) K) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		return cmp.Compare(key(b), key(a))
	})
	return out
}

// SortAscending returns a copy of items ordered by key, lowest first.
// Items with equal keys keep their input order.
func SortAscending[T any, K cmp.Ordered](items []T, key func(T) K) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	})
	return out
}

// Window returns items[offset:offset+limit], clamped to the slice bounds.
// A non-positive limit returns everything from offset onwards. The result
// shares the backing array of items but cannot grow into it.
func Window[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}

	end := len(items)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return items[offset:end:end]
}

// HasMore reports whether a window at offset with the given limit leaves
// items of a slice of length total unreturned.
func HasMore(total, offset, limit int) bool {
	if limit <= 0 {
		return false
	}
	if offset < 0 {
		offset = 0
	}
	return offset+limit < total
}
