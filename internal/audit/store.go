package audit

import "context"

// Store is the append-only destination for security log entries. Entries are
// never updated or deleted; list methods exist for the operator dashboard.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
	ListByKind(ctx context.Context, kind Kind, limit int) ([]Event, error)
}
