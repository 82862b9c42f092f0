package store

import (
	"context"
	"sort"
	"sync"

	"trichluc/internal/allocation/models"
)

// InMemoryStore keeps the audit log as an append-only slice.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []models.AllocationRecord
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, record models.AllocationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, record)
	return nil
}

func (s *InMemoryStore) Query(_ context.Context, q models.Query) ([]models.AllocationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.AllocationRecord
	for _, r := range s.entries {
		if q.Matches(r) {
			matched = append(matched, r)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].IssuedAt.After(matched[j].IssuedAt)
	})
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}
