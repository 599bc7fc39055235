package store

import (
	"context"
	"sync"

	"talentgate/internal/interviewer/models"
	id "talentgate/pkg/domain"
)

// InMemoryInterviewerStore keeps aggregates in a map guarded by a mutex.
// Clones on the way in and out so callers never share mutable state.
type InMemoryInterviewerStore struct {
	mu           sync.RWMutex
	interviewers map[id.InterviewerID]*models.Interviewer
}

// NewMemory creates an empty in-memory interviewer store.
func NewMemory() *InMemoryInterviewerStore {
	return &InMemoryInterviewerStore{
		interviewers: make(map[id.InterviewerID]*models.Interviewer),
	}
}

func (s *InMemoryInterviewerStore) Save(_ context.Context, interviewer *models.Interviewer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interviewers[interviewer.ID] = interviewer.Clone()
	return nil
}

func (s *InMemoryInterviewerStore) FindByID(_ context.Context, interviewerID id.InterviewerID) (*models.Interviewer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	interviewer, ok := s.interviewers[interviewerID]
	if !ok {
		return nil, ErrNotFound
	}
	return interviewer.Clone(), nil
}

func (s *InMemoryInterviewerStore) List(_ context.Context) ([]*models.Interviewer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Interviewer, 0, len(s.interviewers))
	for _, interviewer := range s.interviewers {
		out = append(out, interviewer.Clone())
	}
	return out, nil
}
