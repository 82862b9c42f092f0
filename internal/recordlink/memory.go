package recordlink

import (
	"context"
	"sync"

	"trichluc/pkg/platform/sentinel"
)

// InMemoryLinker is the development and test double for the records system.
type InMemoryLinker struct {
	mu       sync.RWMutex
	records  map[string]RecordMeta
	attached map[string]int64
}

func NewInMemory() *InMemoryLinker {
	return &InMemoryLinker{
		records:  make(map[string]RecordMeta),
		attached: make(map[string]int64),
	}
}

// Seed registers a record so FindByCode can resolve it.
func (l *InMemoryLinker) Seed(meta RecordMeta) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[meta.Code] = meta
}

func (l *InMemoryLinker) FindByCode(_ context.Context, code string) (*RecordMeta, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if meta, ok := l.records[code]; ok {
		return &meta, nil
	}
	return nil, sentinel.ErrNotFound
}

func (l *InMemoryLinker) AttachIssuedNumber(_ context.Context, code string, number int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.records[code]; !ok {
		return sentinel.ErrNotFound
	}
	l.attached[code] = number
	return nil
}

// AttachedNumber reports the number stored on a record, if any.
func (l *InMemoryLinker) AttachedNumber(code string) (int64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	number, ok := l.attached[code]
	return number, ok
}
