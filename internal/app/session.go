package app

import (
	"sync"

	"github.com/google/uuid"
)

// surfacedSet remembers which keys were surfaced to each user during this process.
type surfacedSet struct {
	mu   sync.Mutex
	keys map[uuid.UUID]map[string]struct{}
}

func newSurfacedSet() *surfacedSet {
	return &surfacedSet{keys: make(map[uuid.UUID]map[string]struct{})}
}

func (s *surfacedSet) Seen(userID uuid.UUID, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[userID][key]
	return ok
}

func (s *surfacedSet) Mark(userID uuid.UUID, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys, ok := s.keys[userID]
	if !ok {
		keys = make(map[string]struct{})
		s.keys[userID] = keys
	}
	keys[key] = struct{}{}
}

func (s *surfacedSet) Forget(userID uuid.UUID, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys[userID], key)
}
