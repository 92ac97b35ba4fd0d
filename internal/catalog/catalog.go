// Package catalog supplies the entity catalog and curated rank lists the
// scoring engine reads. Sources load a complete Snapshot; CachedSource memoizes
// it behind a Cache port so every request shares one immutable copy.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/onnwee/stand/internal/alignment"
)

// ErrNoSnapshot is returned by a source that has nothing loaded yet.
var ErrNoSnapshot = errors.New("catalog snapshot not loaded")

// Source loads the current catalog.
type Source interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// Snapshot is an immutable view of the catalog. Callers must not modify it.
type Snapshot struct {
	Brands     []alignment.Brand         `json:"brands"`
	Businesses []alignment.Business      `json:"businesses"`
	Places     []alignment.PlaceBusiness `json:"places,omitempty"`
	RankLists  alignment.RankLists       `json:"rank_lists"`
	LoadedAt   time.Time                 `json:"loaded_at"`
}

// BrandEntities returns the brands as scorable entities, in catalog order.
func (s *Snapshot) BrandEntities() []alignment.Scorable {
	out := make([]alignment.Scorable, len(s.Brands))
	for i, b := range s.Brands {
		out[i] = b
	}
	return out
}

// LocalEntities returns the platform businesses followed by the externally
// sourced places.
func (s *Snapshot) LocalEntities() []alignment.Scorable {
	out := make([]alignment.Scorable, 0, len(s.Businesses)+len(s.Places))
	for _, b := range s.Businesses {
		out = append(out, b)
	}
	for _, p := range s.Places {
		out = append(out, p)
	}
	return out
}

// Lists returns the curated rank lists, with causes that have no curated
// list derived from the brands' value alignments.
func (s *Snapshot) Lists() alignment.RankLists {
	return alignment.WithFallback(s.RankLists, alignment.ListsFromAlignments(s.BrandEntities()))
}

// Brand returns the brand with the given id.
func (s *Snapshot) Brand(id string) (alignment.Brand, bool) {
	for _, b := range s.Brands {
		if b.ID == id {
			return b, true
		}
	}
	return alignment.Brand{}, false
}

// Counts returns the number of brands, local businesses and curated lists.
func (s *Snapshot) Counts() (brands, local, lists int) {
	return len(s.Brands), len(s.Businesses) + len(s.Places), len(s.RankLists)
}
