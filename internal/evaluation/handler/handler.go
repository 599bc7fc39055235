// Package handler wires scoring and retry-gate endpoints to the service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"talentgate/internal/evaluation/models"
	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/httputil"
	"talentgate/pkg/requestcontext"
)

// Service defines the interface for scoring and retry operations.
type Service interface {
	SubmitRoundResult(ctx context.Context, submission *models.RoundSubmission) (*models.RoundResult, error)
	RetryStatus(ctx context.Context, candidateID id.CandidateID, roundID id.RoundID) (*models.RetryStatus, error)
	NextEligibleRound(ctx context.Context, candidateID id.CandidateID) (*id.RoundID, error)
	ResultsForCandidate(ctx context.Context, candidateID id.CandidateID) ([]*models.RoundResult, error)
}

// Handler exposes round scoring and retake checks over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an evaluation handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts evaluation endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/rounds/results", h.HandleSubmitResult)
	r.Get("/rounds/{roundID}/retry-status", h.HandleRetryStatus)
	r.Get("/candidates/{candidateID}/next-round", h.HandleNextRound)
	r.Get("/candidates/{candidateID}/results", h.HandleResults)
}

type submitResultRequest struct {
	CandidateID string                   `json:"candidate_id"`
	DomainID    string                   `json:"domain_id"`
	DomainName  string                   `json:"domain_name"`
	RoundID     string                   `json:"round_id"`
	RoundName   string                   `json:"round_name"`
	StartedAt   time.Time                `json:"started_at"`
	CompletedAt time.Time                `json:"completed_at"`
	Questions   []models.QuestionAttempt `json:"questions"`
}

func (req *submitResultRequest) toSubmission() (*models.RoundSubmission, error) {
	candidateID, err := id.ParseCandidateID(req.CandidateID)
	if err != nil {
		return nil, err
	}
	domainID, err := id.ParseDomainID(req.DomainID)
	if err != nil {
		return nil, err
	}
	roundID, err := id.ParseRoundID(req.RoundID)
	if err != nil {
		return nil, err
	}
	return &models.RoundSubmission{
		CandidateID: candidateID,
		DomainID:    domainID,
		DomainName:  req.DomainName,
		RoundID:     roundID,
		RoundName:   req.RoundName,
		StartedAt:   req.StartedAt,
		CompletedAt: req.CompletedAt,
		Questions:   req.Questions,
	}, nil
}

// HandleSubmitResult handles POST /rounds/results requests.
func (h *Handler) HandleSubmitResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.Decode[submitResultRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}
	submission, err := req.toSubmission()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := authorizeSubmission(ctx, submission.CandidateID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.SubmitRoundResult(ctx, submission)
	if err != nil {
		h.logger.ErrorContext(ctx, "round result submission failed",
			"request_id", requestID,
			"candidate_id", req.CandidateID,
			"round_id", req.RoundID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "round result recorded",
		"request_id", requestID,
		"candidate_id", result.CandidateID.String(),
		"round_id", result.RoundID.String(),
		"passed", result.Passed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, result)
}

// authorizeSubmission lets a candidate submit only their own rounds; admins
// may submit on anyone's behalf.
func authorizeSubmission(ctx context.Context, candidateID id.CandidateID) error {
	if requestcontext.ActorRole(ctx) == requestcontext.RoleAdmin {
		return nil
	}
	if requestcontext.ActorID(ctx) != candidateID.String() {
		return dErrors.New(dErrors.CodeForbidden, "results can only be submitted for the authenticated candidate")
	}
	return nil
}

// HandleRetryStatus handles GET /rounds/{roundID}/retry-status requests.
// The candidate is identified by the candidate_id query parameter.
func (h *Handler) HandleRetryStatus(w http.ResponseWriter, r *http.Request) {
	roundID, err := id.ParseRoundID(chi.URLParam(r, "roundID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rawCandidate := r.URL.Query().Get("candidate_id")
	if rawCandidate == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "candidate_id query parameter is required"))
		return
	}
	candidateID, err := id.ParseCandidateID(rawCandidate)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	status, err := h.service.RetryStatus(r.Context(), candidateID, roundID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}

// HandleNextRound handles GET /candidates/{candidateID}/next-round requests.
func (h *Handler) HandleNextRound(w http.ResponseWriter, r *http.Request) {
	candidateID, err := id.ParseCandidateID(chi.URLParam(r, "candidateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	next, err := h.service.NextEligibleRound(r.Context(), candidateID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"next_round_id": next})
}

// HandleResults handles GET /candidates/{candidateID}/results requests.
func (h *Handler) HandleResults(w http.ResponseWriter, r *http.Request) {
	candidateID, err := id.ParseCandidateID(chi.URLParam(r, "candidateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	results, err := h.service.ResultsForCandidate(r.Context(), candidateID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, results)
}
