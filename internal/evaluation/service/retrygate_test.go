package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	candidatemodels "talentgate/internal/candidate/models"
	candidatestore "talentgate/internal/candidate/store"
	"talentgate/internal/catalog"
	"talentgate/internal/evaluation/models"
	"talentgate/internal/evaluation/policy"
	"talentgate/internal/evaluation/store"
	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/requestcontext"
)

// =============================================================================
// Retry Gate Test Suite
// =============================================================================

type RetryGateSuite struct {
	suite.Suite
	results     *store.InMemoryResultStore
	candidates  *candidatestore.InMemoryCandidateStore
	rounds      *catalog.Static
	service     *Service
	domainID    id.DomainID
	roundIDs    []id.RoundID
	candidateID id.CandidateID
}

func TestRetryGateSuite(t *testing.T) {
	suite.Run(t, new(RetryGateSuite))
}

func (s *RetryGateSuite) SetupTest() {
	s.results = store.NewMemory()
	s.candidates = candidatestore.NewMemory()
	s.rounds = catalog.NewStatic()
	s.domainID = id.NewDomainID()
	s.roundIDs = []id.RoundID{id.NewRoundID(), id.NewRoundID(), id.NewRoundID()}
	s.rounds.SetDomain(s.domainID, []catalog.Round{
		{ID: s.roundIDs[0], Name: "MCQ Screen", Sequence: 1},
		{ID: s.roundIDs[1], Name: "Coding Round", Sequence: 2},
		{ID: s.roundIDs[2], Name: "System Design", Sequence: 3},
	})

	candidate, err := candidatemodels.NewCandidate(
		id.NewCandidateID(), "Ada", "ada@example.com",
		candidatemodels.WorkDomain{ID: s.domainID, Name: "Backend"}, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.candidates.Save(context.Background(), candidate))
	s.candidateID = candidate.ID

	s.service, err = New(s.results, s.candidates, s.rounds, policy.NewStatic(24*time.Hour))
	s.Require().NoError(err)
}

func (s *RetryGateSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *RetryGateSuite) appendAttempt(roundID id.RoundID, completedAt time.Time, passed bool) {
	err := s.results.Append(context.Background(), &models.RoundResult{
		ID:          id.NewResultID(),
		CandidateID: s.candidateID,
		DomainID:    s.domainID,
		RoundID:     roundID,
		CompletedAt: completedAt,
		Passed:      passed,
	})
	s.Require().NoError(err)
}

func atTime(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

// =============================================================================
// RetryStatus Tests
// =============================================================================

func (s *RetryGateSuite) TestRetryStatus() {
	t0 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	round := s.roundIDs[1]

	s.Run("no attempts reports no result and allows the attempt", func() {
		status, err := s.service.RetryStatus(context.Background(), s.candidateID, round)
		s.Require().NoError(err)
		s.True(status.Allowed)
		s.False(status.HasResult)
		s.Nil(status.LastResult)
	})

	s.Run("inside freezing period denies with next eligible timestamp", func() {
		s.appendAttempt(round, t0, false)

		status, err := s.service.RetryStatus(atTime(t0.Add(23*time.Hour)), s.candidateID, round)
		s.Require().NoError(err)
		s.False(status.Allowed)
		s.True(status.HasResult)
		s.Require().NotNil(status.NextAvailableAt)
		s.Equal(t0.Add(24*time.Hour), *status.NextAvailableAt)
		s.False(status.LastResult.Passed)
	})

	s.Run("after freezing period allows with last failed attempt", func() {
		s.appendAttempt(round, t0, false)

		status, err := s.service.RetryStatus(atTime(t0.Add(25*time.Hour)), s.candidateID, round)
		s.Require().NoError(err)
		s.True(status.Allowed)
		s.Nil(status.NextAvailableAt)
		s.False(status.LastResult.Passed)
	})

	s.Run("passed attempt takes precedence over later failures", func() {
		s.appendAttempt(round, t0, true)
		s.appendAttempt(round, t0.Add(time.Hour), false)

		status, err := s.service.RetryStatus(atTime(t0.Add(90*time.Minute)), s.candidateID, round)
		s.Require().NoError(err)
		s.False(status.Allowed)
		s.Require().NotNil(status.LastResult)
		s.True(status.LastResult.Passed)
		s.Nil(status.NextAvailableAt)
	})

	s.Run("freezing period is resolved at call time", func() {
		s.appendAttempt(round, t0, false)

		shortened, err := New(s.results, s.candidates, s.rounds, policy.NewStatic(time.Hour))
		s.Require().NoError(err)

		status, err := shortened.RetryStatus(atTime(t0.Add(2*time.Hour)), s.candidateID, round)
		s.Require().NoError(err)
		s.True(status.Allowed)
	})

	s.Run("most recent failed attempt drives the window", func() {
		s.appendAttempt(round, t0, false)
		s.appendAttempt(round, t0.Add(48*time.Hour), false)

		status, err := s.service.RetryStatus(atTime(t0.Add(49*time.Hour)), s.candidateID, round)
		s.Require().NoError(err)
		s.False(status.Allowed)
		s.Equal(t0.Add(72*time.Hour), *status.NextAvailableAt)
	})
}

// =============================================================================
// NextEligibleRound Tests
// =============================================================================

func (s *RetryGateSuite) TestNextEligibleRound() {
	ctx := context.Background()

	s.Run("first uncleared round in catalog order", func() {
		candidate, err := s.candidates.FindByID(ctx, s.candidateID)
		s.Require().NoError(err)
		candidate.ActiveProgress().ClearRound(s.roundIDs[0])
		s.Require().NoError(s.candidates.Save(ctx, candidate))

		next, err := s.service.NextEligibleRound(ctx, s.candidateID)
		s.Require().NoError(err)
		s.Require().NotNil(next)
		s.Equal(s.roundIDs[1], *next)
	})

	s.Run("all rounds cleared yields nil", func() {
		candidate, err := s.candidates.FindByID(ctx, s.candidateID)
		s.Require().NoError(err)
		for _, roundID := range s.roundIDs {
			candidate.ActiveProgress().ClearRound(roundID)
		}
		s.Require().NoError(s.candidates.Save(ctx, candidate))

		next, err := s.service.NextEligibleRound(ctx, s.candidateID)
		s.Require().NoError(err)
		s.Nil(next)
	})

	s.Run("missing candidate returns not found", func() {
		_, err := s.service.NextEligibleRound(ctx, id.NewCandidateID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
