package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mindlog/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func testProfile() *Profile {
	return &Profile{
		ID:          "11111111-1111-1111-1111-111111111111",
		Email:       "a@b.com",
		Username:    "a11111111",
		DisplayName: "a",
		CreatedAt:   time.Now(),
	}
}

func (s *InMemoryStoreSuite) TestSaveAndFind() {
	ctx := context.Background()

	s.Run("saved profile is found by id", func() {
		p := testProfile()
		s.NoError(s.store.Save(ctx, p))

		found, err := s.store.FindByID(ctx, p.ID)
		s.NoError(err)
		s.Equal(p.Email, found.Email)
		s.Equal(p.Username, found.Username)
	})

	s.Run("unknown id misses", func() {
		_, err := s.store.FindByID(ctx, "nope")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("duplicate save conflicts", func() {
		err := s.store.Save(ctx, testProfile())
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("profile without id is rejected", func() {
		s.Error(s.store.Save(ctx, &Profile{}))
	})
}

func (s *InMemoryStoreSuite) TestExistsByID() {
	ctx := context.Background()

	s.Run("reports presence without error", func() {
		exists, err := s.store.ExistsByID(ctx, "unknown")
		s.NoError(err)
		s.False(exists)

		s.Require().NoError(s.store.Save(ctx, testProfile()))

		exists, err = s.store.ExistsByID(ctx, testProfile().ID)
		s.NoError(err)
		s.True(exists)
	})
}
