package profile

import (
	"context"
	"fmt"
	"sync"

	"mindlog/pkg/platform/sentinel"
)

// InMemoryStore stores profiles in memory for tests/dev.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewInMemoryStore constructs an empty in-memory profile store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[string]*Profile)}
}

func (s *InMemoryStore) ExistsByID(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.profiles[id]
	return ok, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile %q: %w", id, sentinel.ErrNotFound)
	}
	copied := *p
	return &copied, nil
}

func (s *InMemoryStore) Save(_ context.Context, p *Profile) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("profile id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.ID]; ok {
		return fmt.Errorf("profile %q: %w", p.ID, sentinel.ErrConflict)
	}
	copied := *p
	s.profiles[p.ID] = &copied
	return nil
}
