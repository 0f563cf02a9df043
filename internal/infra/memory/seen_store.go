package memory

import (
	"context"
	"sync"
)

// SeenStore is an in-memory implementation of the seen-question store.
type SeenStore struct {
	mu   sync.RWMutex
	sets map[string][]string
}

func NewSeenStore() *SeenStore {
	return &SeenStore{sets: make(map[string][]string)}
}

func (s *SeenStore) Load(_ context.Context, userKey string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.sets[userKey]
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

// Save overwrites the stored set for userKey.
func (s *SeenStore) Save(_ context.Context, userKey string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]string, len(ids))
	copy(stored, ids)
	s.sets[userKey] = stored
	return nil
}
