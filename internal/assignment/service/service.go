// Package service implements the assignment sequencer: the state machine
// that binds candidates to evaluators one slot at a time.
//
// Cross-aggregate writes here are a sequence of independent document saves,
// not a transaction. The candidate write is primary and must succeed; the
// evaluator roster bookkeeping is best-effort, logged on failure, and safe to
// lose because workload counts are recomputed from the roster list on read.
// Concurrent reassignment of the same slot resolves last-write-wins by
// design.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"talentgate/internal/assignment/metrics"
	candidatemodels "talentgate/internal/candidate/models"
	candidatestore "talentgate/internal/candidate/store"
	"talentgate/internal/catalog"
	interviewermodels "talentgate/internal/interviewer/models"
	interviewerstore "talentgate/internal/interviewer/store"
	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/audit"
	"talentgate/pkg/requestcontext"
)

// ErrSequenceExhausted rejects a third sequenced assignment or a role that
// does not match the slot's position.
var ErrSequenceExhausted = dErrors.New(dErrors.CodeConflict, "all rounds already assigned or invalid role sequence")

type CandidateStore interface {
	Save(ctx context.Context, candidate *candidatemodels.Candidate) error
	FindByID(ctx context.Context, candidateID id.CandidateID) (*candidatemodels.Candidate, error)
}

type InterviewerStore interface {
	Save(ctx context.Context, interviewer *interviewermodels.Interviewer) error
	FindByID(ctx context.Context, interviewerID id.InterviewerID) (*interviewermodels.Interviewer, error)
	List(ctx context.Context) ([]*interviewermodels.Interviewer, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service executes assign, reassign, unassign, and feedback transitions.
type Service struct {
	candidates     CandidateStore
	interviewers   InterviewerStore
	rounds         catalog.Catalog
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

// New constructs a Service. Both stores and the catalog are required.
func New(candidates CandidateStore, interviewers InterviewerStore, rounds catalog.Catalog, opts ...Option) (*Service, error) {
	if candidates == nil {
		return nil, errors.New("candidate store is required")
	}
	if interviewers == nil {
		return nil, errors.New("interviewer store is required")
	}
	if rounds == nil {
		return nil, errors.New("round catalog is required")
	}
	s := &Service{
		candidates:   candidates,
		interviewers: interviewers,
		rounds:       rounds,
		tracer:       otel.Tracer("talentgate/assignment"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AssignNext creates the next slot in the fixed sequence: slot 1 goes to an
// interviewer, slot 2 to an admin, and there is no slot 3. The requested role
// must match the slot's position. Any outstanding slot is replaced, keeping
// the single-outstanding-assignment invariant at the write boundary.
func (s *Service) AssignNext(ctx context.Context, candidateID id.CandidateID, role candidatemodels.AssignedRole, evaluatorID id.InterviewerID, schedule candidatemodels.Schedule) (*candidatemodels.AssignedRound, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.assign_next")
	defer span.End()

	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid role: "+string(role))
	}

	candidate, err := s.loadCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	roundNumber := candidate.NextAssignmentNumber()
	span.SetAttributes(attribute.Int("round_number", roundNumber), attribute.String("role", string(role)))
	requiredRole, ok := roleForSlot(roundNumber)
	if !ok || role != requiredRole {
		return nil, ErrSequenceExhausted
	}

	evaluator, err := s.loadEvaluator(ctx, evaluatorID)
	if err != nil {
		return nil, err
	}

	slot := s.placeSlot(ctx, candidate, roundNumber, role, evaluatorID, schedule)
	if err := s.candidates.Save(ctx, candidate); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save candidate")
	}

	s.recordOnEvaluator(ctx, evaluator, candidate, roundNumber)
	s.logAudit(ctx, audit.EventAssignmentCreated, candidate.ID.String(), "",
		"round_number", roundNumber,
		"role", string(role),
		"evaluator_id", evaluatorID.String())
	if s.metrics != nil {
		s.metrics.IncrementAssignmentsCreated()
	}
	return slot, nil
}

// Assign is the administrative override: it always writes slot 1 and skips
// the sequence rule. Interviewer targets must be Active; admins are not
// availability-gated.
func (s *Service) Assign(ctx context.Context, candidateID id.CandidateID, role candidatemodels.AssignedRole, evaluatorID id.InterviewerID, schedule candidatemodels.Schedule) (*candidatemodels.AssignedRound, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.assign")
	defer span.End()

	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid role: "+string(role))
	}

	candidate, err := s.loadCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	evaluator, err := s.loadEvaluator(ctx, evaluatorID)
	if err != nil {
		return nil, err
	}
	if role == candidatemodels.RoleInterviewer && evaluator.Availability != interviewermodels.AvailabilityActive {
		return nil, dErrors.New(dErrors.CodeConflict, "interviewer is not active")
	}

	// Moving the candidate away from a previously assigned interviewer
	// drops them from that roster entry first.
	if previous := candidate.OutstandingAssignment(); previous != nil && previous.AssignedTo != evaluatorID {
		s.removeFromEvaluator(ctx, previous.AssignedTo, candidate.ID)
	}

	slot := s.placeSlot(ctx, candidate, 1, role, evaluatorID, schedule)
	if err := s.candidates.Save(ctx, candidate); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save candidate")
	}

	s.recordOnEvaluator(ctx, evaluator, candidate, 1)
	s.logAudit(ctx, audit.EventAssignmentCreated, candidate.ID.String(), "direct assignment",
		"round_number", 1,
		"role", string(role),
		"evaluator_id", evaluatorID.String())
	if s.metrics != nil {
		s.metrics.IncrementAssignmentsCreated()
	}
	return slot, nil
}

// Reassign moves an existing slot, keyed by (roundNumber, role), to a new
// evaluator. The slot mutates in place and resets to assigned.
func (s *Service) Reassign(ctx context.Context, candidateID id.CandidateID, roundNumber int, role candidatemodels.AssignedRole, newEvaluatorID id.InterviewerID, schedule candidatemodels.Schedule) (*candidatemodels.AssignedRound, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.reassign")
	defer span.End()

	candidate, err := s.loadCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	slot := candidate.FindAssignedRound(roundNumber, role)
	if slot == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "no assignment matches the given round and role")
	}
	evaluator, err := s.loadEvaluator(ctx, newEvaluatorID)
	if err != nil {
		return nil, err
	}

	previousEvaluator := slot.AssignedTo
	changed := previousEvaluator != newEvaluatorID
	slot.AssignedTo = newEvaluatorID
	slot.Schedule = schedule
	slot.Status = candidatemodels.AssignmentAssigned
	slot.AssignedAt = requestcontext.Now(ctx)
	slot.AssignedBy = requestcontext.ActorID(ctx)
	candidate.PipelineStatus = statusForRole(role)
	candidate.LegacyAssignment = &candidatemodels.EvaluatorAssignment{
		InterviewerID: newEvaluatorID,
		Role:          role,
		AssignedAt:    slot.AssignedAt,
	}
	candidate.UpdatedAt = slot.AssignedAt

	if err := s.candidates.Save(ctx, candidate); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save candidate")
	}

	if changed {
		s.removeFromEvaluator(ctx, previousEvaluator, candidate.ID)
		s.recordOnEvaluator(ctx, evaluator, candidate, roundNumber)
	}
	s.logAudit(ctx, audit.EventAssignmentReassigned, candidate.ID.String(), "",
		"round_number", roundNumber,
		"role", string(role),
		"evaluator_id", newEvaluatorID.String())
	if s.metrics != nil {
		s.metrics.IncrementReassignments()
	}
	return slot, nil
}

// Unassign removes the slot matching (roundNumber, role) and re-derives the
// pipeline status from the candidate's domain progress.
func (s *Service) Unassign(ctx context.Context, candidateID id.CandidateID, roundNumber int, role candidatemodels.AssignedRole) error {
	ctx, span := s.tracer.Start(ctx, "assignment.unassign")
	defer span.End()

	candidate, err := s.loadCandidate(ctx, candidateID)
	if err != nil {
		return err
	}
	if !candidate.RemoveAssignedRound(roundNumber, role) {
		return dErrors.New(dErrors.CodeNotFound, "no assignment matches the given round and role")
	}

	candidate.PipelineStatus = derivedStatus(candidate)
	candidate.LegacyAssignment = nil
	candidate.UpdatedAt = requestcontext.Now(ctx)

	if err := s.candidates.Save(ctx, candidate); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save candidate")
	}

	s.removeFromAllEvaluators(ctx, candidate.ID)
	s.logAudit(ctx, audit.EventAssignmentRemoved, candidate.ID.String(), "",
		"round_number", roundNumber,
		"role", string(role))
	if s.metrics != nil {
		s.metrics.IncrementUnassignments()
	}
	return nil
}

// SubmitFeedback completes the slot with the evaluator's decision. A pass
// from an interviewer hands the candidate to admin assignment; a pass from
// an admin is the final acceptance. A reject is terminal either way.
func (s *Service) SubmitFeedback(ctx context.Context, candidateID id.CandidateID, assignmentID id.AssignmentID, decision candidatemodels.FeedbackDecision, notes string) (*candidatemodels.AssignedRound, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.submit_feedback")
	defer span.End()

	if !decision.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid decision: "+string(decision))
	}

	candidate, err := s.loadCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	slot := candidate.FindAssignedRoundByID(assignmentID)
	if slot == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "assignment not found")
	}

	now := requestcontext.Now(ctx)
	slot.Status = candidatemodels.AssignmentCompleted
	slot.ResponseSubmitted = true
	slot.Feedback = &candidatemodels.FeedbackPayload{
		Decision:    decision,
		Notes:       notes,
		SubmittedAt: now,
		SubmittedBy: requestcontext.ActorID(ctx),
	}
	switch {
	case decision == candidatemodels.DecisionReject:
		candidate.PipelineStatus = candidatemodels.StatusRejected
	case slot.AssignedToRole == candidatemodels.RoleAdmin:
		candidate.PipelineStatus = candidatemodels.StatusFinalAccepted
	default:
		candidate.PipelineStatus = candidatemodels.StatusWaitingForAdminAssignment
	}
	candidate.UpdatedAt = now

	if err := s.candidates.Save(ctx, candidate); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save candidate")
	}

	s.markCompletedOnEvaluator(ctx, slot.AssignedTo, candidate.ID)
	s.logAudit(ctx, audit.EventFeedbackSubmitted, candidate.ID.String(), notes,
		"assignment_id", assignmentID.String(),
		"decision", string(decision))
	if s.metrics != nil {
		s.metrics.IncrementFeedbackSubmissions()
	}
	return slot, nil
}

// CandidateAssignments returns the candidate's full assignment history.
func (s *Service) CandidateAssignments(ctx context.Context, candidateID id.CandidateID) ([]candidatemodels.AssignedRound, error) {
	candidate, err := s.loadCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	return candidate.AssignedRounds, nil
}

// roleForSlot returns the role the fixed sequence demands for a slot number.
func roleForSlot(roundNumber int) (candidatemodels.AssignedRole, bool) {
	switch roundNumber {
	case 1:
		return candidatemodels.RoleInterviewer, true
	case 2:
		return candidatemodels.RoleAdmin, true
	}
	return "", false
}

func statusForRole(role candidatemodels.AssignedRole) candidatemodels.PipelineStatus {
	if role == candidatemodels.RoleAdmin {
		return candidatemodels.StatusAssignedAdmin
	}
	return candidatemodels.StatusAssignedInterviewer
}

// derivedStatus re-derives the pipeline status from domain progress,
// defaulting to in-progress when undeterminable.
func derivedStatus(candidate *candidatemodels.Candidate) candidatemodels.PipelineStatus {
	progress := candidate.ActiveProgress()
	if progress != nil && progress.Status == candidatemodels.DomainCompleted {
		return candidatemodels.StatusWaitingForAssignment
	}
	return candidatemodels.StatusInProgress
}

// placeSlot enforces the single-outstanding-assignment invariant and appends
// the new slot, updating the derived candidate fields.
func (s *Service) placeSlot(ctx context.Context, candidate *candidatemodels.Candidate, roundNumber int, role candidatemodels.AssignedRole, evaluatorID id.InterviewerID, schedule candidatemodels.Schedule) *candidatemodels.AssignedRound {
	now := requestcontext.Now(ctx)
	candidate.RemoveOutstandingAssignments()
	candidate.AssignedRounds = append(candidate.AssignedRounds, candidatemodels.AssignedRound{
		ID:             id.NewAssignmentID(),
		RoundNumber:    roundNumber,
		AssignedTo:     evaluatorID,
		AssignedToRole: role,
		AssignedAt:     now,
		AssignedBy:     requestcontext.ActorID(ctx),
		Schedule:       schedule,
		Status:         candidatemodels.AssignmentAssigned,
	})
	candidate.PipelineStatus = statusForRole(role)
	candidate.LegacyAssignment = &candidatemodels.EvaluatorAssignment{
		InterviewerID: evaluatorID,
		Role:          role,
		AssignedAt:    now,
	}
	candidate.UpdatedAt = now
	return &candidate.AssignedRounds[len(candidate.AssignedRounds)-1]
}

func (s *Service) loadCandidate(ctx context.Context, candidateID id.CandidateID) (*candidatemodels.Candidate, error) {
	candidate, err := s.candidates.FindByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, candidatestore.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "candidate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate")
	}
	return candidate, nil
}

func (s *Service) loadEvaluator(ctx context.Context, evaluatorID id.InterviewerID) (*interviewermodels.Interviewer, error) {
	evaluator, err := s.interviewers.FindByID(ctx, evaluatorID)
	if err != nil {
		if errors.Is(err, interviewerstore.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "evaluator not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load evaluator")
	}
	return evaluator, nil
}

// recordOnEvaluator takes a fresh denormalized snapshot of the candidate and
// upserts it into the evaluator's roster entry. Best-effort secondary write.
func (s *Service) recordOnEvaluator(ctx context.Context, evaluator *interviewermodels.Interviewer, candidate *candidatemodels.Candidate, roundNumber int) {
	now := requestcontext.Now(ctx)
	totalRounds := 0
	if progress := candidate.ActiveProgress(); progress != nil {
		if n, err := catalog.TotalRounds(ctx, s.rounds, progress.DomainID); err == nil {
			totalRounds = n
		}
	}
	evaluator.UpsertAssignedCandidate(interviewermodels.AssignedCandidate{
		CandidateID:    candidate.ID,
		CandidateName:  candidate.Name,
		CandidateEmail: candidate.Email,
		DomainName:     candidate.WorkDomain.Name,
		Status:         interviewermodels.InterviewAssigned,
		CurrentRound:   roundNumber,
		TotalRounds:    totalRounds,
		AssignedAt:     now,
		LastActivity:   now,
	})
	evaluator.UpdatedAt = now
	if err := s.interviewers.Save(ctx, evaluator); err != nil {
		s.warnConsistency(ctx, candidate.ID, "failed to record assignment on evaluator roster", err)
	}
}

// removeFromEvaluator drops the candidate from one evaluator's roster entry.
// A missing cross-reference is logged, not surfaced.
func (s *Service) removeFromEvaluator(ctx context.Context, evaluatorID id.InterviewerID, candidateID id.CandidateID) {
	evaluator, err := s.interviewers.FindByID(ctx, evaluatorID)
	if err != nil {
		s.warnConsistency(ctx, candidateID, "failed to load previous evaluator for cleanup", err)
		return
	}
	if !evaluator.RemoveAssignedCandidate(candidateID) {
		s.warnConsistency(ctx, candidateID, "previous evaluator had no roster entry for candidate", nil)
		return
	}
	evaluator.UpdatedAt = requestcontext.Now(ctx)
	if err := s.interviewers.Save(ctx, evaluator); err != nil {
		s.warnConsistency(ctx, candidateID, "failed to save evaluator roster cleanup", err)
	}
}

// removeFromAllEvaluators scans the roster and drops the candidate wherever
// they appear. Used by unassign, which does not trust the slot's pointer to
// be the only reference.
func (s *Service) removeFromAllEvaluators(ctx context.Context, candidateID id.CandidateID) {
	evaluators, err := s.interviewers.List(ctx)
	if err != nil {
		s.warnConsistency(ctx, candidateID, "failed to list evaluators for cleanup", err)
		return
	}
	for _, evaluator := range evaluators {
		if !evaluator.RemoveAssignedCandidate(candidateID) {
			continue
		}
		evaluator.UpdatedAt = requestcontext.Now(ctx)
		if err := s.interviewers.Save(ctx, evaluator); err != nil {
			s.warnConsistency(ctx, candidateID, "failed to save evaluator roster cleanup", err)
		}
	}
}

// markCompletedOnEvaluator flips the evaluator's roster entry to completed.
func (s *Service) markCompletedOnEvaluator(ctx context.Context, evaluatorID id.InterviewerID, candidateID id.CandidateID) {
	evaluator, err := s.interviewers.FindByID(ctx, evaluatorID)
	if err != nil {
		s.warnConsistency(ctx, candidateID, "failed to load evaluator for feedback bookkeeping", err)
		return
	}
	if !evaluator.MarkCompleted(candidateID, requestcontext.Now(ctx)) {
		s.warnConsistency(ctx, candidateID, "evaluator had no roster entry for candidate", nil)
		return
	}
	evaluator.UpdatedAt = requestcontext.Now(ctx)
	if err := s.interviewers.Save(ctx, evaluator); err != nil {
		s.warnConsistency(ctx, candidateID, "failed to save evaluator feedback bookkeeping", err)
	}
}

func (s *Service) warnConsistency(ctx context.Context, candidateID id.CandidateID, msg string, err error) {
	if s.metrics != nil {
		s.metrics.IncrementConsistencyWarnings()
	}
	if s.logger == nil {
		return
	}
	args := []any{"candidate_id", candidateID.String(), "warning", "consistency"}
	if err != nil {
		args = append(args, "error", err)
	}
	s.logger.WarnContext(ctx, msg, args...)
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, candidateID, reason string, attributes ...any) {
	if s.logger != nil {
		args := append(attributes, "candidate_id", candidateID, "event", string(event), "log_type", "audit")
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Category:    event.Category(),
		Timestamp:   requestcontext.Now(ctx),
		CandidateID: candidateID,
		Subject:     candidateID,
		Action:      string(event),
		ActorID:     requestcontext.ActorID(ctx),
		Reason:      reason,
		RequestID:   requestcontext.RequestID(ctx),
	})
}
