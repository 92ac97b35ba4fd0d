package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// InMemorySource serves a snapshot held in memory. It is used in development
// and tests, and when no database is configured.
type InMemorySource struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// NewInMemorySource creates a source serving snap. A nil snap serves an
// empty catalog.
func NewInMemorySource(snap *Snapshot) *InMemorySource {
	if snap == nil {
		snap = &Snapshot{LoadedAt: time.Now().UTC()}
	}
	return &InMemorySource{snap: snap}
}

// Snapshot returns the current snapshot.
func (s *InMemorySource) Snapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, ErrNoSnapshot
	}
	return s.snap, nil
}

// Replace swaps in a new snapshot.
func (s *InMemorySource) Replace(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

// LoadSeedFile reads a JSON snapshot from path.
func LoadSeedFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if snap.LoadedAt.IsZero() {
		snap.LoadedAt = time.Now().UTC()
	}
	return &snap, nil
}
