// Package attempt throttles repeated authentication failures per client
// scope. The scope is a browser/session-level key, not a global counter, so
// one abusive client cannot lock everyone out.
package attempt

import (
	"context"
	"errors"
	"log/slog"

	"votecast/internal/audit"
	"votecast/internal/platform/config"
	dErrors "votecast/pkg/domain-errors"
	"votecast/pkg/platform/circuit"
)

// Guard enforces the login failure policy: once a scope accumulates
// MaxFailures inside the window, further attempts fail fast before the
// identity store is ever consulted.
//
// Store errors never block logins: a circuit breaker degrades the guard to an
// in-memory fallback store while the primary (typically Redis) is down.
type Guard struct {
	store    Store
	fallback Store
	breaker  *circuit.Breaker
	policy   config.AttemptConfig
	auditor  audit.Emitter
	logger   *slog.Logger
}

type Option func(*Guard)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) { g.logger = logger }
}

func WithAuditEmitter(emitter audit.Emitter) Option {
	return func(g *Guard) { g.auditor = emitter }
}

func New(store Store, policy config.AttemptConfig, opts ...Option) (*Guard, error) {
	if store == nil {
		return nil, errors.New("attempt store is required")
	}
	if policy.MaxFailures <= 0 {
		return nil, errors.New("max failures must be positive")
	}
	guard := &Guard{
		store:    store,
		fallback: NewInMemoryStore(policy.Window),
		breaker:  circuit.New("attempt-store"),
		policy:   policy,
	}
	for _, opt := range opts {
		opt(guard)
	}
	return guard, nil
}

// Check fails fast with a rate-limit error when the scope has exhausted its
// attempts. Callers run this before any credential lookup.
func (g *Guard) Check(ctx context.Context, scope string) error {
	count, err := g.failures(ctx, scope)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read attempt count")
	}
	if count >= g.policy.MaxFailures {
		return dErrors.New(dErrors.CodeRateLimited, "too many failed login attempts")
	}
	return nil
}

// RecordAttempt updates the scope's counter from one authentication outcome:
// success resets it, failure increments it. Crossing the limit lands one
// entry in the security log.
func (g *Guard) RecordAttempt(ctx context.Context, scope string, success bool) error {
	if success {
		return g.Reset(ctx, scope)
	}

	count, err := g.recordFailure(ctx, scope)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record login failure")
	}
	if count == g.policy.MaxFailures {
		g.emit(ctx, audit.Event{
			Kind:    audit.KindRateLimit,
			Message: "login attempts exhausted for client scope",
		})
	}
	return nil
}

// AttemptsInWindow returns the scope's current failure count.
func (g *Guard) AttemptsInWindow(ctx context.Context, scope string) (int, error) {
	count, err := g.failures(ctx, scope)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read attempt count")
	}
	return count, nil
}

// Reset zeroes the scope's counter.
func (g *Guard) Reset(ctx context.Context, scope string) error {
	if err := g.store.Clear(ctx, scope); err != nil {
		g.degrade(err)
		return g.fallback.Clear(ctx, scope)
	}
	g.restore()
	// The fallback may hold counts recorded while the primary was down.
	_ = g.fallback.Clear(ctx, scope)
	return nil
}

// failures and recordFailure hit the primary store and fall back to the
// in-memory store on error. Every primary outcome feeds the circuit breaker,
// which exists only to collapse a flood of store errors into two log lines:
// one when the circuit opens and one when it closes again.
func (g *Guard) failures(ctx context.Context, scope string) (int, error) {
	count, err := g.store.Failures(ctx, scope)
	if err != nil {
		g.degrade(err)
		return g.fallback.Failures(ctx, scope)
	}
	g.restore()
	return count, nil
}

func (g *Guard) recordFailure(ctx context.Context, scope string) (int, error) {
	count, err := g.store.RecordFailure(ctx, scope)
	if err != nil {
		g.degrade(err)
		return g.fallback.RecordFailure(ctx, scope)
	}
	g.restore()
	return count, nil
}

func (g *Guard) degrade(err error) {
	_, change := g.breaker.RecordFailure()
	if change.Opened && g.logger != nil {
		g.logger.Error("attempt store unavailable, circuit opened, counting in memory",
			"breaker", g.breaker.Name(), "error", err)
	}
}

func (g *Guard) restore() {
	_, change := g.breaker.RecordSuccess()
	if change.Closed && g.logger != nil {
		g.logger.Info("attempt store recovered, circuit closed",
			"breaker", g.breaker.Name())
	}
}

func (g *Guard) emit(ctx context.Context, event audit.Event) {
	if g.auditor == nil {
		return
	}
	if err := g.auditor.Emit(ctx, event); err != nil && g.logger != nil {
		g.logger.Warn("audit emit failed", "kind", event.Kind, "error", err)
	}
}
