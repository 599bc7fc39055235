// Package service implements round scoring and retry gating. Scoring turns a
// raw submission into an immutable RoundResult; the retry gate decides when a
// failed round may be retaken. The result write is the primary write and must
// succeed; the cleared-rounds side effect on the candidate aggregate is
// best-effort and heals by recomputation.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	candidatemodels "talentgate/internal/candidate/models"
	"talentgate/internal/catalog"
	"talentgate/internal/evaluation/metrics"
	"talentgate/internal/evaluation/models"
	"talentgate/internal/evaluation/oracle"
	"talentgate/internal/evaluation/policy"
	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/audit"
	"talentgate/pkg/requestcontext"
)

// passThreshold is the round-level pass mark in percent.
const passThreshold = 60.0

// subScoreBar is the per-criterion bar a free-form answer must clear on all
// four rubric scores to count as correct.
const subScoreBar = 5

type ResultStore interface {
	Append(ctx context.Context, result *models.RoundResult) error
	ListByCandidateAndRound(ctx context.Context, candidateID id.CandidateID, roundID id.RoundID) ([]*models.RoundResult, error)
	ListByCandidate(ctx context.Context, candidateID id.CandidateID) ([]*models.RoundResult, error)
}

type CandidateStore interface {
	Save(ctx context.Context, candidate *candidatemodels.Candidate) error
	FindByID(ctx context.Context, candidateID id.CandidateID) (*candidatemodels.Candidate, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service scores submissions and answers retake queries.
type Service struct {
	results        ResultStore
	candidates     CandidateStore
	rounds         catalog.Catalog
	oracle         oracle.Oracle
	policy         policy.Provider
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithOracle(o oracle.Oracle) Option {
	return func(s *Service) {
		s.oracle = o
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service. Stores, catalog, and retry policy are required;
// the oracle is optional and its absence degrades free-form questions the
// same way an oracle failure would.
func New(results ResultStore, candidates CandidateStore, rounds catalog.Catalog, retryPolicy policy.Provider, opts ...Option) (*Service, error) {
	if results == nil {
		return nil, errors.New("result store is required")
	}
	if candidates == nil {
		return nil, errors.New("candidate store is required")
	}
	if rounds == nil {
		return nil, errors.New("round catalog is required")
	}
	if retryPolicy == nil {
		return nil, errors.New("retry policy is required")
	}
	s := &Service{
		results:    results,
		candidates: candidates,
		rounds:     rounds,
		policy:     retryPolicy,
		tracer:     otel.Tracer("talentgate/evaluation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SubmitRoundResult scores the submission, persists the verdict, and applies
// the cleared-rounds side effect on a pass.
func (s *Service) SubmitRoundResult(ctx context.Context, submission *models.RoundSubmission) (*models.RoundResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "evaluation.submit_round_result")
	defer span.End()

	if submission == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "submission is required")
	}
	if err := submission.Validate(); err != nil {
		return nil, err
	}

	result := s.score(ctx, submission)
	span.SetAttributes(
		attribute.String("candidate_id", result.CandidateID.String()),
		attribute.String("round_id", result.RoundID.String()),
		attribute.Bool("passed", result.Passed),
	)

	if err := s.results.Append(ctx, result); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist round result")
	}

	if result.Passed {
		s.clearRound(ctx, result)
	}

	s.logAudit(ctx, result)
	if s.metrics != nil {
		s.metrics.IncrementRoundsScored()
		if result.Passed {
			s.metrics.IncrementRoundsPassed()
		}
		s.metrics.ObserveScore(start)
	}
	return result, nil
}

// score applies the per-round-type rules. The round type is inferred from
// the uniform type of its questions; mixed rounds score like MCQ.
func (s *Service) score(ctx context.Context, submission *models.RoundSubmission) *models.RoundResult {
	result := &models.RoundResult{
		ID:          id.NewResultID(),
		CandidateID: submission.CandidateID,
		DomainID:    submission.DomainID,
		DomainName:  submission.DomainName,
		RoundID:     submission.RoundID,
		RoundName:   submission.RoundName,
		StartedAt:   submission.StartedAt,
		CompletedAt: submission.CompletedAt,
	}
	if result.CompletedAt.IsZero() {
		result.CompletedAt = requestcontext.Now(ctx)
	}
	if !result.StartedAt.IsZero() && result.CompletedAt.After(result.StartedAt) {
		result.DurationSeconds = int(result.CompletedAt.Sub(result.StartedAt).Seconds())
	}
	result.TotalQuestions = len(submission.Questions)

	uniform, ok := submission.UniformType()
	switch {
	case ok && uniform == models.QuestionProject:
		s.scoreProject(submission, result)
	case s.allOracleScored(submission):
		s.scoreFreeForm(ctx, submission, result)
	default:
		s.scoreByCorrectness(submission, result)
	}
	return result
}

// allOracleScored reports whether every question is oracle-scored
// (coding or system design, in any combination).
func (s *Service) allOracleScored(submission *models.RoundSubmission) bool {
	for _, q := range submission.Questions {
		if !q.Type.NeedsOracle() {
			return false
		}
	}
	return true
}

// scoreProject marks the round passed with a zero percentage. Completing the
// project is the signal; content is reviewed by humans later.
func (s *Service) scoreProject(submission *models.RoundSubmission, result *models.RoundResult) {
	for _, q := range submission.Questions {
		result.Questions = append(result.Questions, models.QuestionResult{
			Question:        q.Question,
			CandidateAnswer: q.CandidateAnswer,
			IsCorrect:       true,
			Type:            q.Type,
		})
	}
	result.CorrectAnswers = len(result.Questions)
	result.Percentage = 0
	result.Passed = true
	result.Feedback = "project submission recorded"
}

// scoreFreeForm delegates each question to the oracle. An oracle failure
// degrades that question to incorrect with fallback follow-ups; the round
// computation proceeds.
func (s *Service) scoreFreeForm(ctx context.Context, submission *models.RoundSubmission, result *models.RoundResult) {
	subScoreSum := 0
	for _, q := range submission.Questions {
		questionResult := models.QuestionResult{
			Question:        q.Question,
			CandidateAnswer: q.CandidateAnswer,
			Type:            q.Type,
		}

		evaluation, err := s.evaluate(ctx, q.Question, q.CandidateAnswer)
		if err != nil {
			if s.logger != nil {
				s.logger.WarnContext(ctx, "oracle evaluation failed, degrading question",
					"candidate_id", submission.CandidateID.String(),
					"round_id", submission.RoundID.String(),
					"error", err)
			}
			if s.metrics != nil {
				s.metrics.IncrementOracleFailures()
			}
			questionResult.IsCorrect = false
			questionResult.FollowUpQuestions = oracle.FallbackFollowUps()
		} else {
			codeEval := models.CodeEvaluation{
				Correctness:   evaluation.Correctness,
				Understanding: evaluation.Understanding,
				Quality:       evaluation.Quality,
				Efficiency:    evaluation.Efficiency,
				Feedback:      evaluation.Feedback,
			}
			questionResult.CodeEvaluation = &codeEval
			questionResult.FollowUpQuestions = evaluation.FollowUpQuestions
			questionResult.IsCorrect = codeEval.AllAboveBar(subScoreBar)
			subScoreSum += codeEval.Sum()
		}

		if questionResult.IsCorrect {
			result.CorrectAnswers++
		}
		result.Questions = append(result.Questions, questionResult)
	}

	// Average sub-score is out of 10; scale it to a 0-100 percentage.
	result.Percentage = float64(subScoreSum) / float64(4*result.TotalQuestions) * 10
	result.Passed = result.Percentage >= passThreshold
	result.Feedback = fmt.Sprintf("%d of %d answers cleared the rubric bar", result.CorrectAnswers, result.TotalQuestions)
}

// evaluate calls the oracle, treating a missing oracle as a failed call.
func (s *Service) evaluate(ctx context.Context, question, answer string) (*oracle.Evaluation, error) {
	if s.oracle == nil {
		return nil, errors.New("no oracle configured")
	}
	return s.oracle.Evaluate(ctx, question, answer)
}

// scoreByCorrectness handles MCQ and mixed rounds: plain correct/total.
func (s *Service) scoreByCorrectness(submission *models.RoundSubmission, result *models.RoundResult) {
	for _, q := range submission.Questions {
		isCorrect := q.IsCorrect
		if q.CorrectAnswer != "" {
			isCorrect = strings.EqualFold(strings.TrimSpace(q.CandidateAnswer), strings.TrimSpace(q.CorrectAnswer))
		}
		if isCorrect {
			result.CorrectAnswers++
		}
		result.Questions = append(result.Questions, models.QuestionResult{
			Question:        q.Question,
			CandidateAnswer: q.CandidateAnswer,
			CorrectAnswer:   q.CorrectAnswer,
			IsCorrect:       isCorrect,
			Type:            q.Type,
		})
	}
	result.Percentage = float64(result.CorrectAnswers) / float64(result.TotalQuestions) * 100
	result.Passed = result.Percentage >= passThreshold
	result.Feedback = fmt.Sprintf("%d of %d answers correct", result.CorrectAnswers, result.TotalQuestions)
}

// clearRound adds the round to the candidate's cleared set for the domain it
// was attempted in. This is the best-effort secondary write: a failure is
// logged and the scoring result stands, because the cleared set can be
// rebuilt from result history.
func (s *Service) clearRound(ctx context.Context, result *models.RoundResult) {
	candidate, err := s.candidates.FindByID(ctx, result.CandidateID)
	if err != nil {
		s.warnConsistency(ctx, result, "failed to load candidate for cleared-rounds update", err)
		return
	}
	progress := candidate.ProgressFor(result.DomainID)
	if progress == nil {
		s.warnConsistency(ctx, result, "candidate has no progress entry for scored domain", nil)
		return
	}
	if progress.HasCleared(result.RoundID) {
		return
	}
	progress.ClearRound(result.RoundID)
	candidate.UpdatedAt = requestcontext.Now(ctx)
	if err := s.candidates.Save(ctx, candidate); err != nil {
		s.warnConsistency(ctx, result, "failed to save cleared-rounds update", err)
	}
}

func (s *Service) warnConsistency(ctx context.Context, result *models.RoundResult, msg string, err error) {
	if s.logger == nil {
		return
	}
	args := []any{
		"candidate_id", result.CandidateID.String(),
		"round_id", result.RoundID.String(),
		"warning", "consistency",
	}
	if err != nil {
		args = append(args, "error", err)
	}
	s.logger.WarnContext(ctx, msg, args...)
}

func (s *Service) logAudit(ctx context.Context, result *models.RoundResult) {
	event := audit.EventRoundRecorded
	decision := "failed"
	if result.Passed {
		decision = "passed"
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event),
			"candidate_id", result.CandidateID.String(),
			"round_id", result.RoundID.String(),
			"percentage", result.Percentage,
			"decision", decision,
			"event", string(event),
			"log_type", "audit")
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Category:    event.Category(),
		Timestamp:   requestcontext.Now(ctx),
		CandidateID: result.CandidateID.String(),
		Subject:     result.RoundID.String(),
		Action:      string(event),
		ActorID:     requestcontext.ActorID(ctx),
		Decision:    decision,
		RequestID:   requestcontext.RequestID(ctx),
	})
}
