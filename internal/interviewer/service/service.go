// Package service manages the evaluator roster.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"talentgate/internal/interviewer/models"
	"talentgate/internal/interviewer/store"
	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/requestcontext"
)

type InterviewerStore interface {
	Save(ctx context.Context, interviewer *models.Interviewer) error
	FindByID(ctx context.Context, interviewerID id.InterviewerID) (*models.Interviewer, error)
	List(ctx context.Context) ([]*models.Interviewer, error)
}

// Service exposes roster reads and availability management. Workload counts
// in every view are derived from the assigned-candidates list at read time,
// so a failed cross-aggregate write heals on the next read instead of
// leaving a stale counter behind.
type Service struct {
	interviewers InterviewerStore
	logger       *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs a Service. The store is required.
func New(interviewers InterviewerStore, opts ...Option) (*Service, error) {
	if interviewers == nil {
		return nil, errors.New("interviewer store is required")
	}
	s := &Service{interviewers: interviewers}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// InterviewerView is the roster read model with derived workload counts.
type InterviewerView struct {
	Interviewer         *models.Interviewer `json:"interviewer"`
	ActiveInterviews    int                 `json:"active_interviews"`
	CompletedInterviews int                 `json:"completed_interviews"`
}

func newView(interviewer *models.Interviewer) *InterviewerView {
	return &InterviewerView{
		Interviewer:         interviewer,
		ActiveInterviews:    interviewer.ActiveInterviews(),
		CompletedInterviews: interviewer.CompletedInterviews(),
	}
}

// Register adds an evaluator to the roster.
func (s *Service) Register(ctx context.Context, name, email string) (*models.Interviewer, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	interviewer, err := models.NewInterviewer(id.NewInterviewerID(), name, email, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeInvalidInput, err.Error())
		}
		return nil, err
	}
	if err := s.interviewers.Save(ctx, interviewer); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save interviewer")
	}
	return interviewer, nil
}

// Get returns one evaluator with recomputed workload counts.
func (s *Service) Get(ctx context.Context, interviewerID id.InterviewerID) (*InterviewerView, error) {
	interviewer, err := s.interviewers.FindByID(ctx, interviewerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "interviewer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load interviewer")
	}
	return newView(interviewer), nil
}

// List returns the full roster ordered by name.
func (s *Service) List(ctx context.Context) ([]*InterviewerView, error) {
	interviewers, err := s.interviewers.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list interviewers")
	}
	sort.Slice(interviewers, func(i, j int) bool {
		return interviewers[i].Name < interviewers[j].Name
	})
	views := make([]*InterviewerView, 0, len(interviewers))
	for _, interviewer := range interviewers {
		views = append(views, newView(interviewer))
	}
	return views, nil
}

// SetAvailability updates the evaluator's declared availability. Existing
// assignments are untouched; availability only gates new direct assignments.
func (s *Service) SetAvailability(ctx context.Context, interviewerID id.InterviewerID, availability models.AvailabilityStatus) (*models.Interviewer, error) {
	if !availability.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid availability status: "+string(availability))
	}

	interviewer, err := s.interviewers.FindByID(ctx, interviewerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "interviewer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load interviewer")
	}

	interviewer.Availability = availability
	interviewer.UpdatedAt = requestcontext.Now(ctx)
	if err := s.interviewers.Save(ctx, interviewer); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save interviewer")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "interviewer availability updated",
			"interviewer_id", interviewerID.String(),
			"availability", string(availability))
	}
	return interviewer, nil
}
