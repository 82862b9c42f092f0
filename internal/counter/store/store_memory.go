package store

import (
	"context"
	"sync"

	dErrors "trichluc/pkg/domain-errors"
)

// InMemoryStore keeps counters in a mutex-guarded map. The mutex is the
// atomic primitive: every increment holds it across read and write, so
// results per key are gapless under concurrency.
type InMemoryStore struct {
	mu       sync.RWMutex
	counters map[string]int64
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{counters: make(map[string]int64)}
}

func (s *InMemoryStore) Increment(_ context.Context, scopeKey string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[scopeKey]++
	return s.counters[scopeKey], nil
}

func (s *InMemoryStore) Peek(_ context.Context, scopeKey string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters[scopeKey], nil
}

func (s *InMemoryStore) Overwrite(_ context.Context, scopeKey string, value int64) error {
	if value < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "counter value cannot be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[scopeKey] = value
	return nil
}
