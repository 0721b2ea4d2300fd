package audit

import (
	"context"

	"votecast/pkg/requestcontext"
)

// AsyncEmitter buffers events on a channel so emitting never blocks the
// request path. Pair it with a Worker draining the same channel.
type AsyncEmitter struct {
	inbox chan<- Event
}

func NewAsyncEmitter(inbox chan<- Event) *AsyncEmitter {
	return &AsyncEmitter{inbox: inbox}
}

// Emit enqueues the event. When the buffer is full the event is dropped
// rather than stalling a vote or login; the security log is advisory, votes
// are not.
func (e *AsyncEmitter) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	select {
	case e.inbox <- event:
	default:
	}
	return nil
}

// Worker consumes audit events from a channel and persists them. It keeps
// background processing testable without wiring queue implementations in.
type Worker struct {
	store Store
	inbox <-chan Event
}

func NewWorker(store Store, inbox <-chan Event) *Worker {
	return &Worker{store: store, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}
