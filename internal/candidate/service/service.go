// Package service implements candidate registration and self-service
// progression. It owns the derivation of pipeline status from round position:
// status is recomputed from the aggregate on every write, never patched in
// isolation.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"talentgate/internal/candidate/metrics"
	"talentgate/internal/candidate/models"
	"talentgate/internal/candidate/store"
	"talentgate/internal/catalog"
	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/audit"
	"talentgate/pkg/requestcontext"
)

type CandidateStore interface {
	Save(ctx context.Context, candidate *models.Candidate) error
	FindByID(ctx context.Context, candidateID id.CandidateID) (*models.Candidate, error)
	FindByEmail(ctx context.Context, email string) (*models.Candidate, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates candidate lifecycle and domain progression.
type Service struct {
	candidates     CandidateStore
	rounds         catalog.Catalog
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
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

// New constructs a Service. The store and round catalog are required.
func New(candidates CandidateStore, rounds catalog.Catalog, opts ...Option) (*Service, error) {
	if candidates == nil {
		return nil, errors.New("candidate store is required")
	}
	if rounds == nil {
		return nil, errors.New("round catalog is required")
	}
	s := &Service{candidates: candidates, rounds: rounds}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates a candidate profile and seeds progress for the chosen
// work domain. Email is the uniqueness key.
func (s *Service) Register(ctx context.Context, name, email string, workDomain models.WorkDomain) (*models.Candidate, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if _, err := s.candidates.FindByEmail(ctx, email); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "candidate with this email already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing candidate")
	}

	candidate, err := models.NewCandidate(id.NewCandidateID(), name, email, workDomain, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeInvalidInput, err.Error())
		}
		return nil, err
	}
	s.refreshRoundName(ctx, candidate.ActiveProgress())

	if err := s.candidates.Save(ctx, candidate); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save candidate")
	}

	s.logAudit(ctx, audit.EventCandidateRegistered, candidate.ID.String(), "")
	if s.metrics != nil {
		s.metrics.IncrementCandidatesRegistered()
	}
	return candidate, nil
}

// Get returns the candidate aggregate.
func (s *Service) Get(ctx context.Context, candidateID id.CandidateID) (*models.Candidate, error) {
	candidate, err := s.candidates.FindByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "candidate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate")
	}
	return candidate, nil
}

// Advance moves the candidate to the given round index within the active
// domain and re-derives both the domain status and the pipeline status.
//
// Completion is judged against the catalog at call time: when the new index
// reaches the domain's round count the domain flips to completed and the
// candidate starts waiting for an evaluator assignment. An unknown domain has
// zero rounds and can never complete.
func (s *Service) Advance(ctx context.Context, candidateID id.CandidateID, roundIndex int) (*models.Candidate, error) {
	start := time.Now()
	if roundIndex < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "round index cannot be negative")
	}

	candidate, err := s.Get(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if candidate.PipelineStatus.IsTerminal() {
		return nil, dErrors.New(dErrors.CodeConflict, "pipeline already reached a terminal status")
	}

	progress := candidate.ActiveProgress()
	if progress == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "candidate has no progress for the active work domain")
	}

	totalRounds, err := catalog.TotalRounds(ctx, s.rounds, progress.DomainID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load domain rounds")
	}

	progress.CurrentRoundIndex = roundIndex
	if totalRounds > 0 && roundIndex >= totalRounds {
		progress.Status = models.DomainCompleted
		progress.CurrentRoundName = ""
		candidate.PipelineStatus = models.StatusWaitingForAssignment
		if s.metrics != nil {
			s.metrics.IncrementDomainsCompleted()
		}
	} else {
		progress.Status = models.DomainInProgress
		candidate.PipelineStatus = models.StatusInProgress
		s.refreshRoundName(ctx, progress)
	}
	candidate.UpdatedAt = requestcontext.Now(ctx)

	if err := s.candidates.Save(ctx, candidate); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save candidate")
	}

	s.logAudit(ctx, audit.EventProgressAdvanced, candidate.ID.String(), "",
		"domain_id", progress.DomainID.String(),
		"round_index", roundIndex,
		"domain_status", string(progress.Status))
	if s.metrics != nil {
		s.metrics.ObserveAdvance(start)
	}
	return candidate, nil
}

// SwitchDomain changes the candidate's active work domain. The previous
// domain's in-progress entry is abandoned, keeping its round position so a
// later switch back resumes where the candidate left off. A fresh entry is
// created for the new domain unless the candidate has been there before.
func (s *Service) SwitchDomain(ctx context.Context, candidateID id.CandidateID, workDomain models.WorkDomain) (*models.Candidate, error) {
	if workDomain.ID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "work domain id cannot be nil")
	}

	candidate, err := s.Get(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if candidate.PipelineStatus.IsTerminal() {
		return nil, dErrors.New(dErrors.CodeConflict, "pipeline already reached a terminal status")
	}
	if candidate.WorkDomain.ID == workDomain.ID {
		return candidate, nil
	}

	previousDomain := candidate.WorkDomain.ID
	if previous := candidate.ProgressFor(previousDomain); previous != nil && previous.Status == models.DomainInProgress {
		previous.Status = models.DomainAbandoned
	}
	candidate.WorkDomain = workDomain

	progress := candidate.ProgressFor(workDomain.ID)
	if progress == nil {
		candidate.Progress = append(candidate.Progress, models.DomainProgress{
			DomainID:   workDomain.ID,
			DomainName: workDomain.Name,
			Status:     models.DomainInProgress,
		})
		progress = candidate.ProgressFor(workDomain.ID)
	} else if progress.Status == models.DomainAbandoned {
		progress.Status = models.DomainInProgress
	}

	if progress.Status == models.DomainCompleted {
		candidate.PipelineStatus = models.StatusWaitingForAssignment
	} else {
		candidate.PipelineStatus = models.StatusInProgress
		s.refreshRoundName(ctx, progress)
	}
	candidate.UpdatedAt = requestcontext.Now(ctx)

	if err := s.candidates.Save(ctx, candidate); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save candidate")
	}

	s.logAudit(ctx, audit.EventDomainSwitched, candidate.ID.String(), "",
		"from_domain_id", previousDomain.String(),
		"to_domain_id", workDomain.ID.String())
	if s.metrics != nil {
		s.metrics.IncrementDomainSwitches()
	}
	return candidate, nil
}

// refreshRoundName resolves the display name for the current round index.
// Catalog misses are tolerated; the name is presentation-only.
func (s *Service) refreshRoundName(ctx context.Context, progress *models.DomainProgress) {
	if progress == nil {
		return
	}
	rounds, err := s.rounds.OrderedRounds(ctx, progress.DomainID)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to resolve round name",
				"domain_id", progress.DomainID.String(), "error", err)
		}
		return
	}
	if progress.CurrentRoundIndex >= 0 && progress.CurrentRoundIndex < len(rounds) {
		progress.CurrentRoundName = rounds[progress.CurrentRoundIndex].Name
	}
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
