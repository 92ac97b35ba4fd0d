package catalog

import (
	"strings"
	"unicode"

	"github.com/onnwee/stand/internal/alignment"
)

// Category is a display grouping for brands.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`

	categoryKeywords []string
	nameKeywords     []string
}

// CategoryOther collects brands no other category claims.
var CategoryOther = Category{ID: "other", Label: "Other"}

// Categories is matched in order; the first category whose predicate accepts a
// brand wins. CategoryOther is never part of the table.
var Categories = []Category{
	{
		ID: "technology", Label: "Technology",
		categoryKeywords: []string{"tech", "software", "cloud", "digital", "electronics", "social media", "internet"},
		nameKeywords:     []string{"meta", "facebook", "instagram", "tiktok", "snapchat", "twitter", "google", "microsoft", "apple"},
	},
	{
		ID: "finance", Label: "Finance",
		categoryKeywords: []string{"financ", "bank", "capital", "fund", "investment", "insurance", "credit"},
		nameKeywords:     []string{"state farm", "allstate", "progressive", "geico"},
	},
	{
		ID: "food_beverage", Label: "Food & Beverage",
		categoryKeywords: []string{"food", "restaurant", "beverage", "pizza", "burger", "cafe", "coffee", "grocery"},
		nameKeywords:     []string{"mcdonald", "burger king", "wendy", "kfc", "taco bell", "subway", "chick-fil-a", "starbucks"},
	},
	{
		ID: "retail", Label: "Retail",
		categoryKeywords: []string{"retail", "store", "department", "e-commerce"},
		nameKeywords:     []string{"walmart", "target", "costco", "kroger", "whole foods", "publix"},
	},
	{
		ID: "automotive", Label: "Automotive",
		categoryKeywords: []string{"auto", "vehicle", "energy", "petroleum", "gas"},
		nameKeywords:     []string{"tesla", "ford", "toyota", "honda", "chevrolet", "exxon", "chevron", "shell"},
	},
	{
		ID: "entertainment", Label: "Entertainment",
		categoryKeywords: []string{"entertainment", "streaming", "media", "music", "gaming", "film"},
		nameKeywords:     []string{"netflix", "disney", "hulu", "spotify", "youtube"},
	},
	{
		ID: "health_wellness", Label: "Health & Wellness",
		categoryKeywords: []string{"health", "wellness", "pharma", "fitness", "medical", "beauty"},
	},
	{
		ID: "fashion", Label: "Fashion",
		categoryKeywords: []string{"fashion", "apparel", "clothing", "footwear", "shoes"},
		nameKeywords:     []string{"nike", "adidas", "zara", "h&m"},
	},
	{
		ID: "travel", Label: "Travel",
		categoryKeywords: []string{"travel", "airline", "hotel", "hospitality", "cruise"},
	},
}

// Matches reports whether the brand's category or name holds one of the
// category's keywords, ignoring case and accents. Keywords match on word
// boundaries: a name keyword must equal whole words ("Ford Motor" but not
// "Stanford"), and the last word of a category keyword may be a word prefix
// ("financ" matches "Financial Services", "gas" does not match "Las Vegas").
func (c Category) Matches(b alignment.Brand) bool {
	if category := words(b.Category); len(category) > 0 {
		for _, kw := range c.categoryKeywords {
			if containsPhrase(category, words(kw), true) {
				return true
			}
		}
	}
	if name := words(b.Name); len(name) > 0 {
		for _, kw := range c.nameKeywords {
			if containsPhrase(name, words(kw), false) {
				return true
			}
		}
	}
	return false
}

// words folds s and splits it into runs of letters and digits.
func words(s string) []string {
	return strings.FieldsFunc(alignment.FoldText(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsPhrase reports whether phrase occurs as consecutive words of text.
// With prefixLast the final phrase word only has to start its text word.
func containsPhrase(text, phrase []string, prefixLast bool) bool {
	if len(phrase) == 0 || len(phrase) > len(text) {
		return false
	}
	last := len(phrase) - 1
	for i := 0; i+len(phrase) <= len(text); i++ {
		match := true
		for j, w := range phrase {
			t := text[i+j]
			if j == last && prefixLast {
				match = strings.HasPrefix(t, w)
			} else {
				match = t == w
			}
			if !match {
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// Categorize returns the display category of a brand. A brand whose stored
// category already names a known category keeps it.
func Categorize(b alignment.Brand) Category {
	if c, ok := NormalizeCategory(b.Category); ok {
		return c
	}
	for _, c := range Categories {
		if c.Matches(b) {
			return c
		}
	}
	return CategoryOther
}

// NormalizeCategory maps a stored category string to a known category by id
// ("food_beverage") or label ("Food & Beverage"), ignoring case.
func NormalizeCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Category{}, false
	}
	id := categoryID(s)
	if id == CategoryOther.ID {
		return CategoryOther, true
	}
	for _, c := range Categories {
		if c.ID == id || strings.EqualFold(c.Label, s) {
			return c, true
		}
	}
	return Category{}, false
}

// GroupByCategory buckets brands by display category. Brands keep their
// catalog order inside each bucket.
func GroupByCategory(brands []alignment.Brand) map[string][]alignment.Brand {
	out := make(map[string][]alignment.Brand)
	for _, b := range brands {
		id := Categorize(b).ID
		out[id] = append(out[id], b)
	}
	return out
}

// categoryID lowercases s and folds runs of '&' and whitespace into one '_'.
func categoryID(s string) string {
	var sb strings.Builder
	sep := false
	for _, r := range strings.ToLower(s) {
		if r == '&' || r == ' ' || r == '\t' || r == '\n' {
			sep = true
			continue
		}
		if sep {
			sb.WriteByte('_')
			sep = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
