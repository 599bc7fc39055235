package store

import (
	"context"
	"sort"
	"sync"

	"talentgate/internal/evaluation/models"
	id "talentgate/pkg/domain"
)

// InMemoryResultStore keeps results per candidate in insertion order and
// sorts on read.
type InMemoryResultStore struct {
	mu      sync.RWMutex
	results map[id.CandidateID][]*models.RoundResult
}

// NewMemory creates an empty in-memory result store.
func NewMemory() *InMemoryResultStore {
	return &InMemoryResultStore{
		results: make(map[id.CandidateID][]*models.RoundResult),
	}
}

func (s *InMemoryResultStore) Append(_ context.Context, result *models.RoundResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *result
	copied.Questions = append([]models.QuestionResult{}, result.Questions...)
	s.results[result.CandidateID] = append(s.results[result.CandidateID], &copied)
	return nil
}

func (s *InMemoryResultStore) ListByCandidateAndRound(_ context.Context, candidateID id.CandidateID, roundID id.RoundID) ([]*models.RoundResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.RoundResult
	for _, result := range s.results[candidateID] {
		if result.RoundID == roundID {
			copied := *result
			out = append(out, &copied)
		}
	}
	sortByCompletedDesc(out)
	return out, nil
}

func (s *InMemoryResultStore) ListByCandidate(_ context.Context, candidateID id.CandidateID) ([]*models.RoundResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.RoundResult, 0, len(s.results[candidateID]))
	for _, result := range s.results[candidateID] {
		copied := *result
		out = append(out, &copied)
	}
	sortByCompletedDesc(out)
	return out, nil
}

func sortByCompletedDesc(results []*models.RoundResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CompletedAt.After(results[j].CompletedAt)
	})
}
