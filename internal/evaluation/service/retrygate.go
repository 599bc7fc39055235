package service

import (
	"context"
	"errors"

	candidatestore "talentgate/internal/candidate/store"
	"talentgate/internal/evaluation/models"
	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/requestcontext"
)

// RetryStatus reports whether the candidate may retake the round. The gate
// is a pure function of stored result history, the request clock, and the
// freezing period resolved at call time. It never mutates state.
func (s *Service) RetryStatus(ctx context.Context, candidateID id.CandidateID, roundID id.RoundID) (*models.RetryStatus, error) {
	attempts, err := s.results.ListByCandidateAndRound(ctx, candidateID, roundID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load round results")
	}
	if len(attempts) == 0 {
		return &models.RetryStatus{Allowed: true, HasResult: false}, nil
	}

	// A pass at any point is authoritative regardless of later failures.
	for _, attempt := range attempts {
		if attempt.Passed {
			return &models.RetryStatus{Allowed: false, HasResult: true, LastResult: attempt}, nil
		}
	}

	latest := attempts[0]
	freezingPeriod := s.policy.FreezingPeriod(ctx)
	now := requestcontext.Now(ctx)
	eligibleAt := latest.CompletedAt.Add(freezingPeriod)
	if now.Before(eligibleAt) {
		if s.metrics != nil {
			s.metrics.IncrementRetryDenials()
		}
		return &models.RetryStatus{
			Allowed:         false,
			HasResult:       true,
			NextAvailableAt: &eligibleAt,
			LastResult:      latest,
		}, nil
	}
	return &models.RetryStatus{Allowed: true, HasResult: true, LastResult: latest}, nil
}

// NextEligibleRound returns the first round in the active domain's catalog
// order that the candidate has not cleared, or nil when every round is
// cleared or the domain has no rounds.
func (s *Service) NextEligibleRound(ctx context.Context, candidateID id.CandidateID) (*id.RoundID, error) {
	candidate, err := s.candidates.FindByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, candidatestore.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "candidate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate")
	}

	progress := candidate.ActiveProgress()
	if progress == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "candidate has no progress for the active work domain")
	}

	rounds, err := s.rounds.OrderedRounds(ctx, progress.DomainID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load domain rounds")
	}
	for _, round := range rounds {
		if !progress.HasCleared(round.ID) {
			roundID := round.ID
			return &roundID, nil
		}
	}
	return nil, nil
}

// ResultsForCandidate lists the candidate's full attempt history, most
// recent first.
func (s *Service) ResultsForCandidate(ctx context.Context, candidateID id.CandidateID) ([]*models.RoundResult, error) {
	results, err := s.results.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load round results")
	}
	return results, nil
}
