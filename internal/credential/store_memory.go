package credential

import (
	"context"
	"sync"

	id "votecast/pkg/domain"
	"votecast/pkg/platform/sentinel"
)

// InMemoryStore keeps credential records in process memory.
type InMemoryStore struct {
	mu          sync.RWMutex
	records     map[id.CredentialID]*Record
	byPrincipal map[id.PrincipalID][]id.CredentialID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records:     make(map[id.CredentialID]*Record),
		byPrincipal: make(map[id.PrincipalID][]id.CredentialID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *record
	s.records[record.ID] = &copied
	s.byPrincipal[record.PrincipalID] = append(s.byPrincipal[record.PrincipalID], record.ID)
	return nil
}

func (s *InMemoryStore) ListByPrincipal(_ context.Context, principalID id.PrincipalID) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []*Record
	for _, credentialID := range s.byPrincipal[principalID] {
		copied := *s.records[credentialID]
		records = append(records, &copied)
	}
	return records, nil
}

func (s *InMemoryStore) IncrementUsage(_ context.Context, credentialID id.CredentialID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[credentialID]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	record.UsageCounter++
	return record.UsageCounter, nil
}
