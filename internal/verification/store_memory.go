package verification

import (
	"context"
	"sync"

	id "votecast/pkg/domain"
	"votecast/pkg/platform/sentinel"
)

// InMemoryStore is a mutex-guarded session store. Execute holds the lock for
// the whole read-validate-mutate cycle, so sessions for different principals
// only contend on the map itself.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*Session
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[id.SessionID]*Session)}
}

func (s *InMemoryStore) Create(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ID]; exists {
		return sentinel.ErrConflict
	}
	s.sessions[session.ID] = copySession(session)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, sessionID id.SessionID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copySession(session), nil
}

func (s *InMemoryStore) Execute(_ context.Context, sessionID id.SessionID,
	validate func(*Session) error, mutate func(*Session)) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	working := copySession(stored)
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.sessions[sessionID] = working
	return copySession(working), nil
}

func (s *InMemoryStore) FindLatestTerminalByPrincipal(_ context.Context, principalID id.PrincipalID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *Session
	for _, session := range s.sessions {
		if session.PrincipalID != principalID || !session.IsTerminal() {
			continue
		}
		if latest == nil || session.StartedAt.After(latest.StartedAt) {
			latest = session
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	return copySession(latest), nil
}

func copySession(session *Session) *Session {
	dup := *session
	dup.Results = make(map[FactorKind]FactorResult, len(session.Results))
	for kind, result := range session.Results {
		dup.Results[kind] = result
	}
	return &dup
}
