// Package token issues and validates the signed bearer tokens that carry a
// principal's identity between requests.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "votecast/pkg/domain"
	dErrors "votecast/pkg/domain-errors"
)

const (
	issuer   = "votecast"
	audience = "votecast-api"

	// DefaultTTL bounds how long a login stays valid.
	DefaultTTL = 12 * time.Hour
)

// Claims are the JWT claims for access tokens.
type Claims struct {
	PrincipalID string `json:"principal_id"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and validates HS256 tokens.
type Service struct {
	signingKey []byte
	ttl        time.Duration
	clock      func() time.Time
}

type Option func(*Service)

// WithClock pins the clock expiry is checked against. Tests use it; the
// default is the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.clock = now }
}

func NewService(signingKey string, opts ...Option) *Service {
	svc := &Service{signingKey: []byte(signingKey), ttl: DefaultTTL, clock: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Generate signs a token for the principal. now anchors both issued-at and
// expiry so request-scoped clocks flow through.
func (s *Service) Generate(principalID id.PrincipalID, role string, now time.Time) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		PrincipalID: principalID.String(),
		Role:        role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Audience:  []string{audience},
			ID:        uuid.NewString(),
		},
	})

	signed, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signed, nil
}

// Validate parses the token and returns its claims.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(s.clock))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// ExtractPrincipalID validates the token and parses its subject principal.
func (s *Service) ExtractPrincipalID(tokenString string) (id.PrincipalID, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return id.PrincipalID{}, err
	}
	principalID, err := id.ParsePrincipalID(claims.PrincipalID)
	if err != nil {
		return id.PrincipalID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return principalID, nil
}
