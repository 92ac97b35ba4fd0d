// Package alignment scores commercial entities against a user's declared
// causes. It resolves each entity's position in the curated per-cause rank
// lists, aggregates support and avoid totals, classifies the entity and
// turns its average list position into a 0-100 alignment strength.
//
// Every function in this package is pure: the same causes, entities and
// rank lists always produce the same scores and orderings.
package alignment

import (
	"fmt"
	"strings"

	"github.com/onnwee/stand/internal/geo"
)

// Stance is the direction a user (or business) holds on a cause.
type Stance string

const (
	Support Stance = "support"
	Avoid   Stance = "avoid"
)

// Valid reports whether s is a known stance. Causes with any other value
// are treated as holding no stance and are skipped when scoring.
func (s Stance) Valid() bool {
	return s == Support || s == Avoid
}

// Opposite returns the inverse stance. Unknown stances are returned as is.
func (s Stance) Opposite() Stance {
	switch s {
	case Support:
		return Avoid
	case Avoid:
		return Support
	default:
		return s
	}
}

// ParseStance parses a stance case-insensitively.
func ParseStance(s string) (Stance, error) {
	st := Stance(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown stance %q", s)
	}
	return st, nil
}

// Cause is a value position held by a user or a business.
type Cause struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
	Type     Stance `json:"type"`
}

// ValueAlignment records an entity's place in one cause's curated list.
type ValueAlignment struct {
	ValueID   string `json:"value_id"`
	Position  int    `json:"position"`
	IsSupport bool   `json:"is_support"`
}

// RankList is the curated ordering of entities for one cause. Entries are
// rank keys; index 0 is position 1.
type RankList struct {
	Support []string `json:"support"`
	Oppose  []string `json:"oppose"`
}

// RankLists maps a cause id to its rank list.
type RankLists map[string]RankList

// Kind identifies the concrete type behind a Scorable.
type Kind string

const (
	KindBrand    Kind = "brand"
	KindBusiness Kind = "business"
	KindPlace    Kind = "place"
)

// Profile is the identity shared by every scorable entity.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Website  string `json:"website,omitempty"`
}

// RankKey is the string the curated rank lists use to refer to the entity.
func (p Profile) RankKey() string {
	return p.Name
}

// Scorable is implemented by every entity the engine can score.
type Scorable interface {
	Kind() Kind
	Info() Profile
	// Alignments returns the entity's recorded rank-list memberships.
	Alignments() []ValueAlignment
	// Stances returns the causes the entity itself declares.
	Stances() []Cause
	// Coordinates returns the entity's physical locations.
	Coordinates() []geo.Location
}

// Brand is a curated catalog brand. Locations are optional storefronts;
// a brand without any is excluded from distance-scoped feeds.
type Brand struct {
	Profile
	ValueAlignments []ValueAlignment `json:"value_alignments,omitempty"`
	Locations       []geo.Location   `json:"locations,omitempty"`
}

func (b Brand) Kind() Kind                   { return KindBrand }
func (b Brand) Info() Profile                { return b.Profile }
func (b Brand) Alignments() []ValueAlignment { return b.ValueAlignments }
func (b Brand) Stances() []Cause             { return nil }
func (b Brand) Coordinates() []geo.Location  { return b.Locations }

// Business is a business account registered on the platform. It declares
// its own causes and may list several locations.
type Business struct {
	Profile
	Causes          []Cause          `json:"causes,omitempty"`
	Locations       []geo.Location   `json:"locations,omitempty"`
	ValueAlignments []ValueAlignment `json:"value_alignments,omitempty"`
}

func (b Business) Kind() Kind                   { return KindBusiness }
func (b Business) Info() Profile                { return b.Profile }
func (b Business) Alignments() []ValueAlignment { return b.ValueAlignments }
func (b Business) Stances() []Cause             { return b.Causes }
func (b Business) Coordinates() []geo.Location  { return b.Locations }

// PlaceBusiness is a business sourced from an external places directory.
// It has a single address and no curated alignments.
type PlaceBusiness struct {
	Profile
	PlaceID string     `json:"place_id,omitempty"`
	Address string     `json:"address,omitempty"`
	Point   *geo.Point `json:"coordinates,omitempty"`
	Causes  []Cause    `json:"causes,omitempty"`
}

func (p PlaceBusiness) Kind() Kind                   { return KindPlace }
func (p PlaceBusiness) Info() Profile                { return p.Profile }
func (p PlaceBusiness) Alignments() []ValueAlignment { return nil }
func (p PlaceBusiness) Stances() []Cause             { return p.Causes }

func (p PlaceBusiness) Coordinates() []geo.Location {
	if p.Point == nil && p.Address == "" {
		return nil
	}
	return []geo.Location{{Address: p.Address, Coordinates: p.Point, Primary: true}}
}
