package catalog

import (
	"testing"

	"github.com/onnwee/stand/internal/alignment"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name     string
		brand    string
		category string
		want     string
	}{
		{"stored id", "Anything", "food_beverage", "food_beverage"},
		{"stored label", "Anything", "Health & Wellness", "health_wellness"},
		{"stored label any case", "Anything", "health & wellness", "health_wellness"},
		{"category keyword", "Initech", "Enterprise Software", "technology"},
		{"finance keyword", "Northwind", "Venture Capital", "finance"},
		{"insurance by name", "State Farm", "", "finance"},
		{"fast food by name", "McDonald's", "", "food_beverage"},
		{"grocery chain by name", "Whole Foods Market", "", "retail"},
		{"energy counts as automotive", "Exxon", "Energy", "automotive"},
		{"streaming by name", "Netflix", "", "entertainment"},
		{"apparel", "Patagonia", "Outdoor Apparel", "fashion"},
		{"travel", "Delta", "Airline", "travel"},
		{"health care is not automotive", "Kaiser", "Health Care", "health_wellness"},
		{"unknown", "Acme", "", "other"},
		{"explicit other", "Acme", "Other", "other"},
		{"apple as a whole word", "Apple", "", "technology"},
		{"applebee's is not apple", "Applebee's", "Restaurant", "food_beverage"},
		{"applebee's without category", "Applebee's", "", "other"},
		{"ford as a whole word", "Ford Motor Company", "", "automotive"},
		{"stanford is not ford", "Stanford Health Care", "Medical Center", "health_wellness"},
		{"stanford without category", "Stanford Bookstore", "", "other"},
		{"natural gas", "Atmos", "Natural Gas", "automotive"},
		{"vegas is not gas", "Wynn", "Las Vegas Resorts", "other"},
		{"vegas hotel", "Bellagio", "Las Vegas Hotel", "travel"},
		{"meta is not metallica", "Metallica", "Music", "entertainment"},
		{"hyphenated name", "Chick-fil-A", "", "food_beverage"},
		{"ampersand name", "H&M", "", "fashion"},
		{"category prefix", "Northwind", "Financial Services", "finance"},
		{"accented category", "Le Pain", "Café", "food_beverage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := alignment.Brand{Profile: alignment.Profile{Name: tt.brand, Category: tt.category}}
			if got := Categorize(b); got.ID != tt.want {
				t.Errorf("Categorize(%q, %q) = %s, want %s", tt.brand, tt.category, got.ID, tt.want)
			}
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in     string
		wantID string
		wantOK bool
	}{
		{"technology", "technology", true},
		{"Food & Beverage", "food_beverage", true},
		{"FOOD  &  BEVERAGE", "food_beverage", true},
		{"  Travel ", "travel", true},
		{"", "", false},
		{"Widgets", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeCategory(tt.in)
			if ok != tt.wantOK || got.ID != tt.wantID {
				t.Errorf("NormalizeCategory(%q) = %s, %v; want %s, %v", tt.in, got.ID, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestCategories_UniqueIDs(t *testing.T) {
	seen := map[string]bool{CategoryOther.ID: true}
	for _, c := range Categories {
		if seen[c.ID] {
			t.Errorf("duplicate category id %q", c.ID)
		}
		seen[c.ID] = true
		if c.Label == "" {
			t.Errorf("category %q has no label", c.ID)
		}
	}
}

func TestGroupByCategory(t *testing.T) {
	groups := GroupByCategory(testSnapshot().Brands)

	if got := groups["fashion"]; len(got) != 1 || got[0].ID != "b-1" {
		t.Errorf("fashion = %+v", got)
	}
	if got := groups["automotive"]; len(got) != 1 || got[0].ID != "b-2" {
		t.Errorf("automotive = %+v", got)
	}
	if got := groups["other"]; len(got) != 1 || got[0].ID != "b-3" {
		t.Errorf("other = %+v", got)
	}
}
