//go:build integration

package profile_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"mindlog/internal/profile"
	"mindlog/pkg/platform/sentinel"
	"mindlog/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *profile.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = profile.NewPostgresStore(s.postgres.Pool)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "profiles"))
}

func newTestProfile() *profile.Profile {
	id := uuid.NewString()
	return &profile.Profile{
		ID:          id,
		Email:       "a@b.com",
		Username:    "a" + id[:8],
		DisplayName: "a",
		AvatarURL:   "https://cdn.example/a.png",
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestSaveAndFind() {
	ctx := context.Background()

	s.Run("profile round-trips", func() {
		p := newTestProfile()
		s.Require().NoError(s.store.Save(ctx, p))

		found, err := s.store.FindByID(ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(p.Email, found.Email)
		s.Equal(p.Username, found.Username)
		s.Equal(p.DisplayName, found.DisplayName)
		s.Equal(p.AvatarURL, found.AvatarURL)
	})

	s.Run("unknown id misses", func() {
		_, err := s.store.FindByID(ctx, uuid.NewString())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("duplicate id conflicts", func() {
		p := newTestProfile()
		s.Require().NoError(s.store.Save(ctx, p))

		dup := newTestProfile()
		dup.ID = p.ID
		s.ErrorIs(s.store.Save(ctx, dup), sentinel.ErrConflict)
	})
}

func (s *PostgresStoreSuite) TestExistsByID() {
	ctx := context.Background()

	p := newTestProfile()
	exists, err := s.store.ExistsByID(ctx, p.ID)
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(s.store.Save(ctx, p))

	exists, err = s.store.ExistsByID(ctx, p.ID)
	s.Require().NoError(err)
	s.True(exists)
}

// TestConcurrentFirstLogin verifies that racing profile creations for the same
// user resolve to exactly one insert and conflicts everywhere else.
func (s *PostgresStoreSuite) TestConcurrentFirstLogin() {
	ctx := context.Background()
	shared := newTestProfile()
	const goroutines = 20

	var wg sync.WaitGroup
	var successes, conflicts atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := *shared
			err := s.store.Save(ctx, &p)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(goroutines-1), conflicts.Load())
}
