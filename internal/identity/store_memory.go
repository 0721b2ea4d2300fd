package identity

import (
	"context"
	"strings"
	"sync"

	id "votecast/pkg/domain"
	"votecast/pkg/platform/sentinel"
)

// InMemoryStore keeps principals in process memory. It intentionally favors
// clarity over performance.
type InMemoryStore struct {
	mu         sync.RWMutex
	principals map[id.PrincipalID]*Principal
	byHandle   map[string]id.PrincipalID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		principals: make(map[id.PrincipalID]*Principal),
		byHandle:   make(map[string]id.PrincipalID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, principal *Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle := normalizeHandle(principal.ContactHandle)
	if _, taken := s.byHandle[handle]; taken {
		return sentinel.ErrConflict
	}

	copied := *principal
	s.principals[principal.ID] = &copied
	s.byHandle[handle] = principal.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, principalID id.PrincipalID) (*Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if principal, ok := s.principals[principalID]; ok {
		copied := *principal
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByHandle(_ context.Context, handle string) (*Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if principalID, ok := s.byHandle[normalizeHandle(handle)]; ok {
		copied := *s.principals[principalID]
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Update(_ context.Context, principal *Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.principals[principal.ID]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *principal
	s.principals[principal.ID] = &copied
	return nil
}

func normalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}
