package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "votecast/pkg/domain"
	"votecast/pkg/platform/sentinel"
)

type StoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func (s *StoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) principal(handle string) *Principal {
	principal, err := NewPrincipal(handle, "Test Voter", "hash", RoleVoter, time.Now())
	s.Require().NoError(err)
	return principal
}

func (s *StoreSuite) TestCreateAndLookup() {
	s.Run("finds stored principal by id and handle", func() {
		principal := s.principal("voter@example.org")
		s.Require().NoError(s.store.Create(context.Background(), principal))

		byID, err := s.store.FindByID(context.Background(), principal.ID)
		s.Require().NoError(err)
		s.Equal(principal, byID)

		byHandle, err := s.store.FindByHandle(context.Background(), "Voter@Example.org")
		s.Require().NoError(err)
		s.Equal(principal.ID, byHandle.ID)
	})

	s.Run("returns ErrNotFound for unknown principal", func() {
		_, err := s.store.FindByID(context.Background(), id.PrincipalID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns ErrConflict on duplicate handle", func() {
		first := s.principal("dup@example.org")
		s.Require().NoError(s.store.Create(context.Background(), first))

		second := s.principal("DUP@example.org")
		s.Require().ErrorIs(s.store.Create(context.Background(), second), sentinel.ErrConflict)
	})

	s.Run("mutating a returned principal does not change the store", func() {
		principal := s.principal("isolated@example.org")
		s.Require().NoError(s.store.Create(context.Background(), principal))

		found, err := s.store.FindByID(context.Background(), principal.ID)
		s.Require().NoError(err)
		found.Verified = true

		again, err := s.store.FindByID(context.Background(), principal.ID)
		s.Require().NoError(err)
		s.False(again.Verified)
	})
}

func (s *StoreSuite) TestUpdate() {
	s.Run("persists changes to an existing principal", func() {
		principal := s.principal("voter@example.org")
		s.Require().NoError(s.store.Create(context.Background(), principal))

		principal.MarkVerified()
		s.Require().NoError(s.store.Update(context.Background(), principal))

		found, err := s.store.FindByID(context.Background(), principal.ID)
		s.Require().NoError(err)
		s.True(found.Verified)
	})

	s.Run("update on a missing principal returns ErrNotFound", func() {
		principal := s.principal("ghost@example.org")
		s.Require().ErrorIs(s.store.Update(context.Background(), principal), sentinel.ErrNotFound)
	})
}
