// Package handler wires candidate endpoints to the candidate service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"talentgate/internal/candidate/models"
	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/httputil"
	"talentgate/pkg/requestcontext"
)

// Service defines the interface for candidate operations.
type Service interface {
	Register(ctx context.Context, name, email string, workDomain models.WorkDomain) (*models.Candidate, error)
	Get(ctx context.Context, candidateID id.CandidateID) (*models.Candidate, error)
	Advance(ctx context.Context, candidateID id.CandidateID, roundIndex int) (*models.Candidate, error)
	SwitchDomain(ctx context.Context, candidateID id.CandidateID, workDomain models.WorkDomain) (*models.Candidate, error)
}

// Handler exposes candidate registration and progression over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a candidate handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts candidate endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/candidates", h.HandleRegister)
	r.Get("/candidates/{candidateID}", h.HandleGet)
	r.Post("/candidates/{candidateID}/domain", h.HandleSwitchDomain)
	r.Post("/candidates/{candidateID}/progress", h.HandleAdvance)
}

type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	WorkDomain struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"work_domain"`
}

type switchDomainRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type advanceRequest struct {
	CurrentRound int `json:"current_round"`
}

// HandleRegister handles POST /candidates requests.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.Decode[registerRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}
	domainID, err := id.ParseDomainID(req.WorkDomain.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	candidate, err := h.service.Register(ctx, req.Name, req.Email, models.WorkDomain{ID: domainID, Name: req.WorkDomain.Name})
	if err != nil {
		h.logger.ErrorContext(ctx, "candidate registration failed",
			"request_id", requestID,
			"email", req.Email,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "candidate registered",
		"request_id", requestID,
		"candidate_id", candidate.ID.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, candidate)
}

// HandleGet handles GET /candidates/{candidateID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	candidateID, err := id.ParseCandidateID(chi.URLParam(r, "candidateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	candidate, err := h.service.Get(ctx, candidateID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, candidate)
}

// HandleSwitchDomain handles POST /candidates/{candidateID}/domain requests.
func (h *Handler) HandleSwitchDomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	candidateID, err := id.ParseCandidateID(chi.URLParam(r, "candidateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[switchDomainRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}
	domainID, err := id.ParseDomainID(req.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	candidate, err := h.service.SwitchDomain(ctx, candidateID, models.WorkDomain{ID: domainID, Name: req.Name})
	if err != nil {
		h.logger.ErrorContext(ctx, "domain switch failed",
			"request_id", requestID,
			"candidate_id", candidateID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, candidate)
}

// HandleAdvance handles POST /candidates/{candidateID}/progress requests.
func (h *Handler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	candidateID, err := id.ParseCandidateID(chi.URLParam(r, "candidateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[advanceRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}
	if req.CurrentRound < 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "current_round cannot be negative"))
		return
	}

	candidate, err := h.service.Advance(ctx, candidateID, req.CurrentRound)
	if err != nil {
		h.logger.ErrorContext(ctx, "progress advance failed",
			"request_id", requestID,
			"candidate_id", candidateID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, candidate)
}
