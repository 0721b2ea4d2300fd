package attempt

import "context"

// Store counts authentication failures per client scope within the guard's
// sliding window. Implementations own the window expiry mechanics: the
// in-memory store tracks a deadline per scope, the Redis store leans on key
// TTLs.
type Store interface {
	// RecordFailure increments the scope's failure count and returns the
	// new total.
	RecordFailure(ctx context.Context, scope string) (int, error)

	// Failures returns the scope's current failure count inside the window.
	Failures(ctx context.Context, scope string) (int, error)

	// Clear resets the scope's count to zero.
	Clear(ctx context.Context, scope string) error
}
