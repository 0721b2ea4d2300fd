package credential

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"math/rand/v2"

	id "votecast/pkg/domain"
)

// Ceremony and sensor failures. The service translates these into coded
// domain errors; callers may retry or skip the factor.
var (
	ErrUnsupportedPlatform = errors.New("possession factor unsupported on this platform")
	ErrCeremonyAborted     = errors.New("ceremony aborted by user")
	ErrCeremonyFailed      = errors.New("ceremony failed")
	ErrNoCredential        = errors.New("no credential registered")
	ErrSensorUnavailable   = errors.New("sensor unavailable")
	ErrCaptureFailed       = errors.New("capture failed")
)

// Authenticator runs the possession-proof ceremonies against the user's
// device. Implementations must respect context cancellation: a deadline or
// user abort surfaces as an error, never a hang.
type Authenticator interface {
	CreateCredential(ctx context.Context, principalID id.PrincipalID, displayName string) (publicKey string, err error)
	ProveCredential(ctx context.Context, record *Record) (token string, err error)
}

// Camera produces a still image for the likeness and document factors.
type Camera interface {
	Capture(ctx context.Context) (ImageEvidence, error)
}

// Matcher makes the accept/reject decision for captured evidence. The
// production matcher is stochastic (standing in for real biometric and
// document matching); tests inject deterministic implementations.
type Matcher interface {
	MatchLikeness(image ImageEvidence) bool
	MatchDocument(documentNumber string, image ImageEvidence) bool
}

// StochasticMatcher accepts evidence with the configured probabilities.
type StochasticMatcher struct {
	likenessPassRate float64
	documentPassRate float64
}

func NewStochasticMatcher(likenessPassRate, documentPassRate float64) *StochasticMatcher {
	return &StochasticMatcher{
		likenessPassRate: likenessPassRate,
		documentPassRate: documentPassRate,
	}
}

func (m *StochasticMatcher) MatchLikeness(ImageEvidence) bool {
	return rand.Float64() < m.likenessPassRate
}

func (m *StochasticMatcher) MatchDocument(string, ImageEvidence) bool {
	return rand.Float64() < m.documentPassRate
}

// SimulatedAuthenticator stands in for a platform authenticator. It always
// completes the ceremony successfully with random key material.
type SimulatedAuthenticator struct{}

func (SimulatedAuthenticator) CreateCredential(ctx context.Context, _ id.PrincipalID, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return randomToken("pk")
}

func (SimulatedAuthenticator) ProveCredential(ctx context.Context, _ *Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return randomToken("proof")
}

// SimulatedCamera returns a fixed placeholder frame.
type SimulatedCamera struct{}

func (SimulatedCamera) Capture(ctx context.Context) (ImageEvidence, error) {
	if err := ctx.Err(); err != nil {
		return ImageEvidence{}, err
	}
	return ImageEvidence{Data: []byte("simulated-frame")}, nil
}

func randomToken(prefix string) (string, error) {
	buf := make([]byte, 16)
	if _, err := crand.Read(buf); err != nil {
		return "", err
	}
	return prefix + "_" + hex.EncodeToString(buf), nil
}
