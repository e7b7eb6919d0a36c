package handover

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mindlog/internal/auth/models"
	"mindlog/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) principal() models.Principal {
	return models.Principal{
		UserID:      "11111111-1111-1111-1111-111111111111",
		Authority:   models.AuthorityUser,
		AccessToken: "access-token",
	}
}

func (s *InMemoryStoreSuite) attrs() models.Attributes {
	return models.Attributes{
		models.AttrAccessToken: "access-token",
		models.AttrUserName:    "a",
	}
}

func (s *InMemoryStoreSuite) TestCreateAndConsume() {
	ctx := context.Background()

	s.Run("consume returns the parked payload once", func() {
		store := NewInMemoryStore()
		token, err := store.Create(ctx, s.principal(), s.attrs())
		s.NoError(err)
		s.NotEmpty(token)

		entry, err := store.Consume(ctx, token)
		s.NoError(err)
		s.Equal("11111111-1111-1111-1111-111111111111", entry.Principal.UserID)
		s.Equal("access-token", entry.Attributes[models.AttrAccessToken])
		s.Equal("a", entry.Attributes[models.AttrUserName])
	})

	s.Run("second consume of the same token misses", func() {
		store := NewInMemoryStore()
		token, err := store.Create(ctx, s.principal(), s.attrs())
		s.NoError(err)

		_, err = store.Consume(ctx, token)
		s.NoError(err)

		entry, err := store.Consume(ctx, token)
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.Nil(entry)
	})

	s.Run("unknown token misses", func() {
		store := NewInMemoryStore()
		entry, err := store.Consume(ctx, "never-issued")
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.Nil(entry)
	})

	s.Run("attributes are copied on create", func() {
		store := NewInMemoryStore()
		attrs := s.attrs()
		token, err := store.Create(ctx, s.principal(), attrs)
		s.NoError(err)

		attrs[models.AttrUserName] = "mutated"

		entry, err := store.Consume(ctx, token)
		s.NoError(err)
		s.Equal("a", entry.Attributes[models.AttrUserName])
	})

	s.Run("tokens are unique across creates", func() {
		store := NewInMemoryStore()
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			token, err := store.Create(ctx, s.principal(), s.attrs())
			s.NoError(err)
			s.False(seen[token])
			seen[token] = true
		}
	})
}

func (s *InMemoryStoreSuite) TestExpiry() {
	ctx := context.Background()
	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	s.Run("token within the window is served", func() {
		now := base
		store := NewInMemoryStore(WithClock(func() time.Time { return now }))

		token, err := store.Create(ctx, s.principal(), s.attrs())
		s.NoError(err)

		now = base.Add(59 * time.Second)
		entry, err := store.Consume(ctx, token)
		s.NoError(err)
		s.NotNil(entry)
	})

	s.Run("expired token reads as missing", func() {
		now := base
		store := NewInMemoryStore(WithClock(func() time.Time { return now }))

		token, err := store.Create(ctx, s.principal(), s.attrs())
		s.NoError(err)

		now = base.Add(61 * time.Second)
		entry, err := store.Consume(ctx, token)
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.Nil(entry)
	})

	s.Run("expired consume also removes the entry", func() {
		now := base
		store := NewInMemoryStore(WithClock(func() time.Time { return now }))

		_, err := store.Create(ctx, s.principal(), s.attrs())
		s.NoError(err)
		s.Equal(1, store.Len())

		now = base.Add(61 * time.Second)
		token2, err := store.Create(ctx, s.principal(), s.attrs())
		s.NoError(err)

		_, _ = store.Consume(ctx, token2)
		s.Equal(1, store.Len()) // only the first, stale entry remains until swept
	})

	s.Run("create sweeps entries older than twice the ttl", func() {
		now := base
		store := NewInMemoryStore(WithClock(func() time.Time { return now }))

		for i := 0; i < 5; i++ {
			_, err := store.Create(ctx, s.principal(), s.attrs())
			s.NoError(err)
		}
		s.Equal(5, store.Len())

		now = base.Add(3 * time.Minute)
		_, err := store.Create(ctx, s.principal(), s.attrs())
		s.NoError(err)
		s.Equal(1, store.Len())
	})

	s.Run("custom ttl is honored", func() {
		now := base
		store := NewInMemoryStore(WithClock(func() time.Time { return now }), WithTTL(5*time.Second))

		token, err := store.Create(ctx, s.principal(), s.attrs())
		s.NoError(err)

		now = base.Add(6 * time.Second)
		_, err = store.Consume(ctx, token)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestConcurrentConsume() {
	s.Run("exactly one of N racing consumers wins", func() {
		ctx := context.Background()
		store := NewInMemoryStore()

		token, err := store.Create(ctx, s.principal(), s.attrs())
		s.NoError(err)

		const racers = 32
		var wg sync.WaitGroup
		var mu sync.Mutex
		wins := 0

		start := make(chan struct{})
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if _, err := store.Consume(ctx, token); err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		close(start)
		wg.Wait()

		s.Equal(1, wins)
		s.Equal(0, store.Len())
	})
}
