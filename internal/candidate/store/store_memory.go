package store

import (
	"context"
	"strings"
	"sync"

	"talentgate/internal/candidate/models"
	id "talentgate/pkg/domain"
)

// InMemoryCandidateStore keeps candidate documents in a map. It favors
// clarity over performance and deep-copies on both reads and writes so no
// caller shares mutable state with the store.
type InMemoryCandidateStore struct {
	mu         sync.RWMutex
	candidates map[id.CandidateID]*models.Candidate
}

func NewMemory() *InMemoryCandidateStore {
	return &InMemoryCandidateStore{candidates: make(map[id.CandidateID]*models.Candidate)}
}

func (s *InMemoryCandidateStore) Save(_ context.Context, candidate *models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[candidate.ID] = candidate.Clone()
	return nil
}

func (s *InMemoryCandidateStore) FindByID(_ context.Context, candidateID id.CandidateID) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if candidate, ok := s.candidates[candidateID]; ok {
		return candidate.Clone(), nil
	}
	return nil, ErrNotFound
}

func (s *InMemoryCandidateStore) FindByEmail(_ context.Context, email string) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, candidate := range s.candidates {
		if strings.EqualFold(candidate.Email, email) {
			return candidate.Clone(), nil
		}
	}
	return nil, ErrNotFound
}
