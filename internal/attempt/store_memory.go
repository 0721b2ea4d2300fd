package attempt

import (
	"context"
	"sync"
	"time"

	"votecast/pkg/requestcontext"
)

type window struct {
	count     int
	expiresAt time.Time
}

// InMemoryStore tracks failure windows per client scope. The window starts
// at the first failure and the whole count expires together, matching the
// Redis store's TTL behavior.
type InMemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	windows map[string]*window
}

func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	return &InMemoryStore{ttl: ttl, windows: make(map[string]*window)}
}

func (s *InMemoryStore) RecordFailure(ctx context.Context, scope string) (int, error) {
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[scope]
	if !ok || now.After(w.expiresAt) {
		w = &window{expiresAt: now.Add(s.ttl)}
		s.windows[scope] = w
	}
	w.count++
	return w.count, nil
}

func (s *InMemoryStore) Failures(ctx context.Context, scope string) (int, error) {
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[scope]
	if !ok || now.After(w.expiresAt) {
		return 0, nil
	}
	return w.count, nil
}

func (s *InMemoryStore) Clear(_ context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, scope)
	return nil
}
