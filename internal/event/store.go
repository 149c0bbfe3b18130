package event

import (
	"context"
	"sync"
)

// Store is the append-only sink for events.
type Store interface {
	Append(ctx context.Context, e Event) error
	ListByUID(ctx context.Context, uid string) ([]Event, error)
}

// MemoryStore keeps events in memory for tests and local runs.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[string][]Event)}
}

func (s *MemoryStore) Append(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e.ID = s.nextID
	s.events[e.UID] = append(s.events[e.UID], e)
	return nil
}

func (s *MemoryStore) ListByUID(_ context.Context, uid string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[uid]...), nil
}
