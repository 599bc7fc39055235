package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"talentgate/internal/evaluation/models"
	id "talentgate/pkg/domain"
)

type ResultStoreSuite struct {
	suite.Suite
	store *InMemoryResultStore
	ctx   context.Context
}

func (s *ResultStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func TestResultStoreSuite(t *testing.T) {
	suite.Run(t, new(ResultStoreSuite))
}

func (s *ResultStoreSuite) newResult(candidateID id.CandidateID, roundID id.RoundID, completedAt time.Time) *models.RoundResult {
	return &models.RoundResult{
		ID:          id.NewResultID(),
		CandidateID: candidateID,
		RoundID:     roundID,
		CompletedAt: completedAt,
	}
}

// ============================================================
// Append and ordering
// ============================================================

func (s *ResultStoreSuite) TestAppendAndOrdering() {
	candidateID := id.NewCandidateID()
	roundID := id.NewRoundID()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	s.Run("lists attempts for a round newest first", func() {
		older := s.newResult(candidateID, roundID, base)
		newer := s.newResult(candidateID, roundID, base.Add(48*time.Hour))
		s.Require().NoError(s.store.Append(s.ctx, older))
		s.Require().NoError(s.store.Append(s.ctx, newer))

		listed, err := s.store.ListByCandidateAndRound(s.ctx, candidateID, roundID)
		s.Require().NoError(err)
		s.Require().Len(listed, 2)
		s.Equal(newer.ID, listed[0].ID)
		s.Equal(older.ID, listed[1].ID)
	})

	s.Run("filters by round", func() {
		otherRound := s.newResult(candidateID, id.NewRoundID(), base.Add(time.Hour))
		s.Require().NoError(s.store.Append(s.ctx, otherRound))

		listed, err := s.store.ListByCandidateAndRound(s.ctx, candidateID, roundID)
		s.Require().NoError(err)
		s.Len(listed, 2)

		all, err := s.store.ListByCandidate(s.ctx, candidateID)
		s.Require().NoError(err)
		s.Len(all, 3)
	})

	s.Run("unknown candidate lists empty without error", func() {
		listed, err := s.store.ListByCandidate(s.ctx, id.NewCandidateID())
		s.Require().NoError(err)
		s.Empty(listed)
	})
}

// ============================================================
// Isolation
// ============================================================

func (s *ResultStoreSuite) TestIsolation() {
	s.Run("mutating a listed result does not leak into the store", func() {
		candidateID := id.NewCandidateID()
		roundID := id.NewRoundID()
		result := s.newResult(candidateID, roundID, time.Now())
		result.Passed = false
		s.Require().NoError(s.store.Append(s.ctx, result))

		listed, err := s.store.ListByCandidateAndRound(s.ctx, candidateID, roundID)
		s.Require().NoError(err)
		listed[0].Passed = true

		fresh, err := s.store.ListByCandidateAndRound(s.ctx, candidateID, roundID)
		s.Require().NoError(err)
		s.False(fresh[0].Passed)
	})
}
