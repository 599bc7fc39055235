package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"talentgate/internal/candidate/service"
	"talentgate/internal/candidate/store"
	"talentgate/internal/catalog"
	id "talentgate/pkg/domain"
)

var testDomainID = id.NewDomainID()

func newCandidateRouter(t *testing.T) chi.Router {
	t.Helper()

	rounds := catalog.NewStatic()
	rounds.SetDomain(testDomainID, []catalog.Round{
		{ID: id.NewRoundID(), Name: "MCQ Screen", Sequence: 1},
		{ID: id.NewRoundID(), Name: "Coding Round", Sequence: 2},
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := service.New(store.NewMemory(), rounds, service.WithLogger(logger))
	if err != nil {
		t.Fatalf("failed to build candidate service: %v", err)
	}

	router := chi.NewRouter()
	New(svc, logger).Register(router)
	return router
}

func registerCandidate(t *testing.T, router chi.Router, email string) map[string]any {
	t.Helper()

	payload := map[string]any{
		"name":  "Mia Torres",
		"email": email,
		"work_domain": map[string]string{
			"id":   testDomainID.String(),
			"name": "Backend",
		},
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/candidates", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 registering candidate, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	return resp
}

func TestRegisterAndGetCandidate(t *testing.T) {
	router := newCandidateRouter(t)

	created := registerCandidate(t, router, "mia@example.com")
	candidateID, _ := created["id"].(string)
	if candidateID == "" {
		t.Fatalf("expected candidate id in response")
	}
	if created["pipeline_status"] != "in_progress" {
		t.Fatalf("expected in_progress status, got %v", created["pipeline_status"])
	}

	req := httptest.NewRequest(http.MethodGet, "/candidates/"+candidateID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 fetching candidate, got %d", rec.Code)
	}

	var fetched struct {
		Progress []struct {
			CurrentRoundName string `json:"current_round_name"`
		} `json:"progress"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&fetched); err != nil {
		t.Fatalf("failed to decode candidate response: %v", err)
	}
	if len(fetched.Progress) != 1 || fetched.Progress[0].CurrentRoundName != "MCQ Screen" {
		t.Fatalf("expected progress seeded at the first catalog round, got %+v", fetched.Progress)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	router := newCandidateRouter(t)
	registerCandidate(t, router, "dupe@example.com")

	payload := map[string]any{
		"name":  "Mia Torres",
		"email": "dupe@example.com",
		"work_domain": map[string]string{
			"id":   testDomainID.String(),
			"name": "Backend",
		},
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/candidates", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", rec.Code)
	}
}

func TestRegisterRejectsMalformedDomainID(t *testing.T) {
	router := newCandidateRouter(t)

	payload := map[string]any{
		"name":  "Mia Torres",
		"email": "mia@example.com",
		"work_domain": map[string]string{
			"id":   "not-a-uuid",
			"name": "Backend",
		},
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/candidates", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed domain id, got %d", rec.Code)
	}
}

func TestGetUnknownCandidateReturns404(t *testing.T) {
	router := newCandidateRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/candidates/"+id.NewCandidateID().String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown candidate, got %d", rec.Code)
	}
}

func TestAdvanceRejectsNegativeRound(t *testing.T) {
	router := newCandidateRouter(t)
	created := registerCandidate(t, router, "mia@example.com")
	candidateID, _ := created["id"].(string)

	body, _ := json.Marshal(map[string]int{"current_round": -1})
	req := httptest.NewRequest(http.MethodPost, "/candidates/"+candidateID+"/progress", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative round index, got %d", rec.Code)
	}
}

func TestSwitchDomainViaHandler(t *testing.T) {
	router := newCandidateRouter(t)
	created := registerCandidate(t, router, "mia@example.com")
	candidateID, _ := created["id"].(string)

	payload := map[string]string{"id": id.NewDomainID().String(), "name": "Data"}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/candidates/"+candidateID+"/domain", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 switching domain, got %d", rec.Code)
	}

	var resp struct {
		WorkDomain struct {
			Name string `json:"name"`
		} `json:"work_domain"`
		Progress []any `json:"progress"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode switch response: %v", err)
	}
	if resp.WorkDomain.Name != "Data" {
		t.Fatalf("expected active work domain to be Data, got %q", resp.WorkDomain.Name)
	}
	if len(resp.Progress) != 2 {
		t.Fatalf("expected progress entries for both domains, got %d", len(resp.Progress))
	}
}
