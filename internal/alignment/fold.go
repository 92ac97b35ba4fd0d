package alignment

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldText reduces s to a form for loose text matching: diacritics are
// stripped and case is folded, so "Café" and "CAFE" both become "cafe".
func FoldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), cases.Fold(), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// ContainsFolded reports whether query, already passed through FoldText,
// occurs in s once s is folded.
func ContainsFolded(s, foldedQuery string) bool {
	return strings.Contains(FoldText(s), foldedQuery)
}
