package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "votecast/pkg/domain"
	dErrors "votecast/pkg/domain-errors"
)

type TokenSuite struct {
	suite.Suite
	svc *Service
	now time.Time
}

func (s *TokenSuite) SetupTest() {
	s.now = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	s.svc = NewService("test-signing-key", WithClock(func() time.Time { return s.now }))
}

func TestTokenSuite(t *testing.T) {
	suite.Run(t, new(TokenSuite))
}

func (s *TokenSuite) TestRoundTrip() {
	principalID := id.NewPrincipalID()

	signed, err := s.svc.Generate(principalID, "voter", s.now)
	s.Require().NoError(err)
	s.NotEmpty(signed)

	claims, err := s.svc.Validate(signed)
	s.Require().NoError(err)
	s.Equal(principalID.String(), claims.PrincipalID)
	s.Equal("voter", claims.Role)

	extracted, err := s.svc.ExtractPrincipalID(signed)
	s.Require().NoError(err)
	s.Equal(principalID, extracted)
}

func (s *TokenSuite) TestRejectsForeignKey() {
	signed, err := s.svc.Generate(id.NewPrincipalID(), "voter", s.now)
	s.Require().NoError(err)

	other := NewService("different-key")
	_, err = other.Validate(signed)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *TokenSuite) TestRejectsExpiredToken() {
	signed, err := s.svc.Generate(id.NewPrincipalID(), "voter", s.now.Add(-2*DefaultTTL))
	s.Require().NoError(err)

	_, err = s.svc.Validate(signed)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *TokenSuite) TestExpiryTracksValidationClock() {
	signed, err := s.svc.Generate(id.NewPrincipalID(), "voter", s.now)
	s.Require().NoError(err)

	_, err = s.svc.Validate(signed)
	s.Require().NoError(err)

	s.now = s.now.Add(DefaultTTL + time.Minute)
	_, err = s.svc.Validate(signed)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *TokenSuite) TestRejectsGarbage() {
	_, err := s.svc.Validate("not-a-token")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
