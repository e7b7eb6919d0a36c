package handover

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"mindlog/internal/auth/models"
	"mindlog/pkg/platform/sentinel"
)

// InMemoryStore keeps handover entries in a process-local map. Fine for a
// single instance: the useful window is under a minute and a lost entry just
// forces a re-login. Use RedisStore when instances share traffic.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[string]*Entry
	ttl     time.Duration
	now     func() time.Time
}

// InMemoryOption configures an InMemoryStore.
type InMemoryOption func(*InMemoryStore)

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) InMemoryOption {
	return func(s *InMemoryStore) { s.now = now }
}

// WithTTL overrides the default token TTL.
func WithTTL(ttl time.Duration) InMemoryOption {
	return func(s *InMemoryStore) { s.ttl = ttl }
}

// NewInMemoryStore constructs an empty in-memory handover store.
func NewInMemoryStore(opts ...InMemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		entries: make(map[string]*Entry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Create registers the payload under a fresh random token. As a side effect
// it sweeps entries older than twice the TTL, which bounds memory by login
// rate without a background goroutine.
func (s *InMemoryStore) Create(_ context.Context, principal models.Principal, attrs models.Attributes) (string, error) {
	token, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate handover token: %w", err)
	}

	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(now)
	s.entries[token.String()] = &Entry{
		Token:      token.String(),
		Principal:  principal,
		Attributes: attrs.Clone(),
		CreatedAt:  now,
	}
	return token.String(), nil
}

// Consume removes the entry under the lock, so lookup-and-delete is atomic
// and exactly one concurrent caller can observe a hit. Expired entries have
// already been deleted by the time the check fails, so no further cleanup
// is needed.
func (s *InMemoryStore) Consume(_ context.Context, token string) (*Entry, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[token]
	if !ok {
		return nil, fmt.Errorf("handover token: %w", sentinel.ErrNotFound)
	}
	delete(s.entries, token)

	if now.After(entry.CreatedAt.Add(s.ttl)) {
		// Expired reads identically to absent.
		return nil, fmt.Errorf("handover token: %w", sentinel.ErrNotFound)
	}
	return entry, nil
}

// Len reports the current number of parked entries.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *InMemoryStore) sweepLocked(now time.Time) {
	cutoff := now.Add(-2 * s.ttl)
	for token, entry := range s.entries {
		if entry.CreatedAt.Before(cutoff) {
			delete(s.entries, token)
		}
	}
}
