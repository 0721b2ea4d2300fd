package ledger

import (
	"context"
	"sync"
	"time"

	id "votecast/pkg/domain"
	"votecast/pkg/platform/sentinel"
)

type voteKey struct {
	voter  id.PrincipalID
	ballot id.BallotID
}

// InMemoryStore keeps vote records in insertion order under a single RWMutex.
// The index map backs the conditional insert.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []VoteRecord
	index   map[voteKey]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{index: make(map[voteKey]struct{})}
}

func (s *InMemoryStore) Insert(_ context.Context, record *VoteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := voteKey{voter: record.VoterID, ballot: record.BallotID}
	if _, exists := s.index[key]; exists {
		return sentinel.ErrConflict
	}
	s.records = append(s.records, *record)
	s.index[key] = struct{}{}
	return nil
}

func (s *InMemoryStore) Exists(_ context.Context, voterID id.PrincipalID, ballotID id.BallotID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.index[voteKey{voter: voterID, ballot: ballotID}]
	return exists, nil
}

func (s *InMemoryStore) CountByVoterSince(_ context.Context, voterID id.PrincipalID, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, record := range s.records {
		if record.VoterID == voterID && !record.CastAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) Tally(_ context.Context, ballotID id.BallotID) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tally := make(map[string]int)
	for _, record := range s.records {
		if record.BallotID == ballotID {
			tally[record.Option]++
		}
	}
	return tally, nil
}

func (s *InMemoryStore) CountsByVoterSince(_ context.Context, since time.Time) (map[id.PrincipalID]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[id.PrincipalID]int)
	for _, record := range s.records {
		if !record.CastAt.Before(since) {
			counts[record.VoterID]++
		}
	}
	return counts, nil
}

func (s *InMemoryStore) CountsByOrigin(_ context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, record := range s.records {
		counts[record.Origin]++
	}
	return counts, nil
}
