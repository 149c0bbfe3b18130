package card

import (
	"context"
	"sort"
	"sync"
	"time"

	"cardlink/pkg/sentinel"
)

// MemoryStore keeps cards in a mutex-guarded map. It intentionally favors
// clarity over performance and is the default for tests and local runs.
// ClaimIfUnclaimed performs its check-and-set entirely under the write lock,
// which gives the same at-most-one-winner guarantee the SQL store gets from a
// conditional UPDATE.
type MemoryStore struct {
	mu    sync.RWMutex
	cards map[string]Card
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cards: make(map[string]Card)}
}

func (s *MemoryStore) Get(_ context.Context, uid string) (Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.cards[uid]; ok {
		return c, nil
	}
	return Card{}, sentinel.ErrNotFound
}

func (s *MemoryStore) Create(_ context.Context, c Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[c.UID]; ok {
		return sentinel.ErrConflict
	}
	s.cards[c.UID] = c
	return nil
}

func (s *MemoryStore) ClaimIfUnclaimed(_ context.Context, uid string, profile Profile, claimedByEmail string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[uid]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	if c.Claim.Claimed() {
		return false, nil
	}
	c.Profile = profile
	c.Claim = ClaimedAt(at, claimedByEmail)
	c.UpdatedAt = at
	s.cards[uid] = c
	return true, nil
}

func (s *MemoryStore) UpdateProfile(_ context.Context, uid string, profile Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[uid]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.Profile = profile
	c.UpdatedAt = time.Now()
	s.cards[uid] = c
	return nil
}

func (s *MemoryStore) List(_ context.Context, limit, offset int) ([]Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uids := make([]string, 0, len(s.cards))
	for uid := range s.cards {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	if offset >= len(uids) {
		return []Card{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(uids) {
		end = len(uids)
	}

	out := make([]Card, 0, end-offset)
	for _, uid := range uids[offset:end] {
		out = append(out, s.cards[uid])
	}
	return out, nil
}
