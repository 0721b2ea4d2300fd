package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps the security log in process memory. It intentionally
// favors clarity over performance; the Postgres store handles real retention.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lastN(s.events, limit), nil
}

func (s *InMemoryStore) ListByKind(_ context.Context, kind Kind, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []Event
	for _, event := range s.events {
		if event.Kind == kind {
			matched = append(matched, event)
		}
	}
	return lastN(matched, limit), nil
}

// lastN returns the most recent events, newest last. Events are appended in
// arrival order so the tail is the recent end.
func lastN(events []Event, limit int) []Event {
	if limit <= 0 || limit > len(events) {
		limit = len(events)
	}
	out := make([]Event, limit)
	copy(out, events[len(events)-limit:])
	return out
}
