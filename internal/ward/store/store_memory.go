package store

import (
	"context"
	"sync"
	"time"

	"trichluc/internal/ward"
	"trichluc/pkg/platform/sentinel"
)

// InMemoryStore keeps the registry as an ordered slice so List returns wards
// in insertion order, the way operators expect to see them.
type InMemoryStore struct {
	mu    sync.RWMutex
	wards []ward.Ward
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) List(_ context.Context) ([]ward.Ward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ward.Ward{}, s.wards...), nil
}

func (s *InMemoryStore) Contains(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(name) >= 0, nil
}

func (s *InMemoryStore) Add(_ context.Context, w ward.Ward) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(w.Name) >= 0 {
		return sentinel.ErrConflict
	}
	s.wards = append(s.wards, w)
	return nil
}

func (s *InMemoryStore) Remove(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(name)
	if i < 0 {
		return sentinel.ErrNotFound
	}
	s.wards = append(s.wards[:i], s.wards[i+1:]...)
	return nil
}

// Replace swaps the whole set atomically. Used by ResetToDefault.
func (s *InMemoryStore) Replace(_ context.Context, names []string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wards = s.wards[:0]
	for _, name := range names {
		s.wards = append(s.wards, ward.Ward{Name: name, AddedAt: now})
	}
	return nil
}

// indexOf requires the caller to hold the mutex.
func (s *InMemoryStore) indexOf(name string) int {
	for i, w := range s.wards {
		if w.Name == name {
			return i
		}
	}
	return -1
}
