package memory

import (
	"context"
	"sync"

	audit "talentgate/pkg/platform/audit"
)

// Store keeps audit events in memory, keyed by candidate. It backs unit
// tests and single-process deployments.
type Store struct {
	mu     sync.RWMutex
	events map[string][]audit.Event
}

func New() *Store {
	return &Store{events: make(map[string][]audit.Event)}
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.CandidateID] = append(s.events[event.CandidateID], event)
	return nil
}

func (s *Store) ListByCandidate(_ context.Context, candidateID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[candidateID]...), nil
}
