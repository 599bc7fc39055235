package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	candidatemodels "talentgate/internal/candidate/models"
	candidatestore "talentgate/internal/candidate/store"
	"talentgate/internal/catalog"
	"talentgate/internal/evaluation/mocks"
	"talentgate/internal/evaluation/models"
	"talentgate/internal/evaluation/oracle"
	"talentgate/internal/evaluation/policy"
	"talentgate/internal/evaluation/store"
	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
)

// =============================================================================
// Scoring Service Test Suite
// =============================================================================
// Justification for unit tests: the per-round-type scoring rules and oracle
// degradation paths are arithmetic contracts that must hold exactly; driving
// them through HTTP would bury the boundary cases.

type ScoringServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	oracleMock *mocks.MockOracle
	results    *store.InMemoryResultStore
	candidates *candidatestore.InMemoryCandidateStore
	rounds     *catalog.Static
	service    *Service
	domainID   id.DomainID
	roundID    id.RoundID
}

func TestScoringServiceSuite(t *testing.T) {
	suite.Run(t, new(ScoringServiceSuite))
}

func (s *ScoringServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.oracleMock = mocks.NewMockOracle(s.ctrl)
	s.results = store.NewMemory()
	s.candidates = candidatestore.NewMemory()
	s.rounds = catalog.NewStatic()
	s.domainID = id.NewDomainID()
	s.roundID = id.NewRoundID()
	s.rounds.SetDomain(s.domainID, []catalog.Round{
		{ID: s.roundID, Name: "Coding Round", Sequence: 1},
	})

	var err error
	s.service, err = New(s.results, s.candidates, s.rounds, policy.NewStatic(24*time.Hour),
		WithOracle(s.oracleMock))
	s.Require().NoError(err)
}

func (s *ScoringServiceSuite) seedCandidate(ctx context.Context) *candidatemodels.Candidate {
	candidate, err := candidatemodels.NewCandidate(
		id.NewCandidateID(), "Ada", "ada@example.com",
		candidatemodels.WorkDomain{ID: s.domainID, Name: "Backend"}, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.candidates.Save(ctx, candidate))
	return candidate
}

func (s *ScoringServiceSuite) submission(candidateID id.CandidateID, questions ...models.QuestionAttempt) *models.RoundSubmission {
	now := time.Now()
	return &models.RoundSubmission{
		CandidateID: candidateID,
		DomainID:    s.domainID,
		RoundID:     s.roundID,
		RoundName:   "Coding Round",
		StartedAt:   now.Add(-30 * time.Minute),
		CompletedAt: now,
		Questions:   questions,
	}
}

func codingQuestion(text string) models.QuestionAttempt {
	return models.QuestionAttempt{Question: text, CandidateAnswer: "func main() {}", Type: models.QuestionCoding}
}

func evaluation(correctness, understanding, quality, efficiency int) *oracle.Evaluation {
	return &oracle.Evaluation{
		Correctness:       correctness,
		Understanding:     understanding,
		Quality:           quality,
		Efficiency:        efficiency,
		Feedback:          "reviewed",
		FollowUpQuestions: []string{"why?", "how?"},
	}
}

// =============================================================================
// Project Round Tests
// =============================================================================

func (s *ScoringServiceSuite) TestProjectRound() {
	ctx := context.Background()
	candidate := s.seedCandidate(ctx)

	s.Run("always passes with zero percentage", func() {
		result, err := s.service.SubmitRoundResult(ctx, s.submission(candidate.ID,
			models.QuestionAttempt{Question: "Build a URL shortener", CandidateAnswer: "repo link", Type: models.QuestionProject},
		))
		s.Require().NoError(err)
		s.True(result.Passed)
		s.Equal(0.0, result.Percentage)
	})
}

// =============================================================================
// Coding / System Design Round Tests
// =============================================================================

func (s *ScoringServiceSuite) TestFreeFormRound() {
	ctx := context.Background()

	s.Run("percentage is sum of sub-scores over 4n scaled to 100", func() {
		candidate := s.seedCandidate(ctx)
		s.oracleMock.EXPECT().Evaluate(gomock.Any(), "q1", gomock.Any()).Return(evaluation(8, 7, 6, 9), nil)
		s.oracleMock.EXPECT().Evaluate(gomock.Any(), "q2", gomock.Any()).Return(evaluation(6, 6, 6, 6), nil)

		result, err := s.service.SubmitRoundResult(ctx, s.submission(candidate.ID,
			codingQuestion("q1"), codingQuestion("q2")))
		s.Require().NoError(err)

		// (30 + 24) / (4 * 2) * 10 = 67.5
		s.InDelta(67.5, result.Percentage, 1e-9)
		s.True(result.Passed)
		s.Equal(2, result.CorrectAnswers)
	})

	s.Run("exactly 60 percent passes", func() {
		candidate := s.seedCandidate(ctx)
		s.oracleMock.EXPECT().Evaluate(gomock.Any(), gomock.Any(), gomock.Any()).Return(evaluation(6, 6, 6, 6), nil)

		result, err := s.service.SubmitRoundResult(ctx, s.submission(candidate.ID, codingQuestion("q")))
		s.Require().NoError(err)
		s.InDelta(60.0, result.Percentage, 1e-9)
		s.True(result.Passed)
	})

	s.Run("just below 60 percent fails", func() {
		candidate := s.seedCandidate(ctx)
		// Sum 119 over 5 questions: 119/20*100 = 59.5.
		scores := [][4]int{{6, 6, 6, 6}, {6, 6, 6, 6}, {6, 6, 6, 6}, {6, 6, 6, 6}, {6, 6, 6, 5}}
		questions := make([]models.QuestionAttempt, 0, len(scores))
		for i, sc := range scores {
			q := codingQuestion("q" + string(rune('a'+i)))
			questions = append(questions, q)
			s.oracleMock.EXPECT().Evaluate(gomock.Any(), q.Question, gomock.Any()).
				Return(evaluation(sc[0], sc[1], sc[2], sc[3]), nil)
		}

		result, err := s.service.SubmitRoundResult(ctx, s.submission(candidate.ID, questions...))
		s.Require().NoError(err)
		s.InDelta(59.5, result.Percentage, 1e-9)
		s.False(result.Passed)
	})

	s.Run("question correct only when all four sub-scores exceed 5", func() {
		candidate := s.seedCandidate(ctx)
		s.oracleMock.EXPECT().Evaluate(gomock.Any(), gomock.Any(), gomock.Any()).Return(evaluation(10, 10, 10, 5), nil)

		result, err := s.service.SubmitRoundResult(ctx, s.submission(candidate.ID, codingQuestion("q")))
		s.Require().NoError(err)
		s.Equal(0, result.CorrectAnswers)
		s.False(result.Questions[0].IsCorrect)
	})

	s.Run("oracle failure degrades question without aborting the round", func() {
		candidate := s.seedCandidate(ctx)
		s.oracleMock.EXPECT().Evaluate(gomock.Any(), "broken", gomock.Any()).
			Return(nil, errors.New("upstream timeout"))
		s.oracleMock.EXPECT().Evaluate(gomock.Any(), "fine", gomock.Any()).Return(evaluation(8, 8, 8, 8), nil)

		result, err := s.service.SubmitRoundResult(ctx, s.submission(candidate.ID,
			codingQuestion("broken"), codingQuestion("fine")))
		s.Require().NoError(err)

		degraded := result.Questions[0]
		s.False(degraded.IsCorrect)
		s.Nil(degraded.CodeEvaluation)
		s.Equal(oracle.FallbackFollowUps(), degraded.FollowUpQuestions)

		// (0 + 32) / (4 * 2) * 10 = 40.
		s.InDelta(40.0, result.Percentage, 1e-9)
		s.False(result.Passed)
	})

	s.Run("system design scores through the oracle too", func() {
		candidate := s.seedCandidate(ctx)
		s.oracleMock.EXPECT().Evaluate(gomock.Any(), gomock.Any(), gomock.Any()).Return(evaluation(7, 7, 7, 7), nil)

		result, err := s.service.SubmitRoundResult(ctx, s.submission(candidate.ID,
			models.QuestionAttempt{Question: "Design a rate limiter", CandidateAnswer: "token bucket", Type: models.QuestionSystemDesign}))
		s.Require().NoError(err)
		s.True(result.Passed)
	})
}

// =============================================================================
// MCQ / Mixed Round Tests
// =============================================================================

func (s *ScoringServiceSuite) TestCorrectnessRound() {
	ctx := context.Background()

	s.Run("percentage is correct over total", func() {
		candidate := s.seedCandidate(ctx)
		result, err := s.service.SubmitRoundResult(ctx, s.submission(candidate.ID,
			models.QuestionAttempt{Question: "2+2?", CandidateAnswer: "4", CorrectAnswer: "4", Type: models.QuestionMCQ},
			models.QuestionAttempt{Question: "3+3?", CandidateAnswer: "7", CorrectAnswer: "6", Type: models.QuestionMCQ},
			models.QuestionAttempt{Question: "5+5?", CandidateAnswer: "10", CorrectAnswer: "10", Type: models.QuestionMCQ},
		))
		s.Require().NoError(err)
		s.Equal(2, result.CorrectAnswers)
		s.InDelta(100.0*2/3, result.Percentage, 1e-9)
		s.True(result.Passed)
	})

	s.Run("below threshold fails", func() {
		candidate := s.seedCandidate(ctx)
		result, err := s.service.SubmitRoundResult(ctx, s.submission(candidate.ID,
			models.QuestionAttempt{Question: "a?", CandidateAnswer: "x", CorrectAnswer: "y", Type: models.QuestionMCQ},
			models.QuestionAttempt{Question: "b?", CandidateAnswer: "y", CorrectAnswer: "y", Type: models.QuestionMCQ},
		))
		s.Require().NoError(err)
		s.InDelta(50.0, result.Percentage, 1e-9)
		s.False(result.Passed)
	})
}

// =============================================================================
// Validation and Side Effect Tests
// =============================================================================

func (s *ScoringServiceSuite) TestSubmitRoundResult() {
	ctx := context.Background()

	s.Run("missing questions is a validation error", func() {
		candidate := s.seedCandidate(ctx)
		_, err := s.service.SubmitRoundResult(ctx, s.submission(candidate.ID))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("pass adds round to cleared set idempotently", func() {
		candidate := s.seedCandidate(ctx)
		submission := s.submission(candidate.ID,
			models.QuestionAttempt{Question: "q", CandidateAnswer: "a", CorrectAnswer: "a", Type: models.QuestionMCQ})

		_, err := s.service.SubmitRoundResult(ctx, submission)
		s.Require().NoError(err)
		_, err = s.service.SubmitRoundResult(ctx, submission)
		s.Require().NoError(err)

		stored, err := s.candidates.FindByID(ctx, candidate.ID)
		s.Require().NoError(err)
		progress := stored.ProgressFor(s.domainID)
		s.Require().NotNil(progress)
		s.Equal([]id.RoundID{s.roundID}, progress.ClearedRounds)
	})

	s.Run("fail does not touch the cleared set", func() {
		candidate := s.seedCandidate(ctx)
		_, err := s.service.SubmitRoundResult(ctx, s.submission(candidate.ID,
			models.QuestionAttempt{Question: "q", CandidateAnswer: "x", CorrectAnswer: "a", Type: models.QuestionMCQ}))
		s.Require().NoError(err)

		stored, err := s.candidates.FindByID(ctx, candidate.ID)
		s.Require().NoError(err)
		s.Empty(stored.ProgressFor(s.domainID).ClearedRounds)
	})

	s.Run("cleared-set failure does not fail the submission", func() {
		// Candidate missing entirely: the secondary write has nothing to
		// update, but the result write already succeeded.
		ghost := id.NewCandidateID()
		result, err := s.service.SubmitRoundResult(ctx, s.submission(ghost,
			models.QuestionAttempt{Question: "q", CandidateAnswer: "a", CorrectAnswer: "a", Type: models.QuestionMCQ}))
		s.Require().NoError(err)
		s.True(result.Passed)

		attempts, err := s.results.ListByCandidateAndRound(ctx, ghost, s.roundID)
		s.Require().NoError(err)
		s.Len(attempts, 1)
	})
}
