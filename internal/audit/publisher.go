package audit

import (
	"context"

	"votecast/pkg/requestcontext"
)

// Emitter is the interface services depend on. The synchronous Publisher,
// the channel-backed async pipeline, and the Kafka sink all satisfy it.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Publisher captures structured security events. It is append-only and uses
// the storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	return p.store.Append(ctx, event)
}

func (p *Publisher) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	return p.store.ListRecent(ctx, limit)
}

func (p *Publisher) ListByKind(ctx context.Context, kind Kind, limit int) ([]Event, error) {
	return p.store.ListByKind(ctx, kind, limit)
}
