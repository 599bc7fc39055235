// Package httpapi assembles the HTTP surface: middleware chain, health and
// metrics endpoints, and the per-context handler registrations. It stays a
// thin wiring layer; behavior lives in the context services.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"talentgate/pkg/platform/middleware/auth"
	"talentgate/pkg/platform/middleware/requestid"
	"talentgate/pkg/platform/middleware/requesttime"
)

// Registrar is implemented by every context handler.
type Registrar interface {
	Register(r chi.Router)
}

// Deps carries everything the router needs.
type Deps struct {
	Logger    *slog.Logger
	Validator *auth.Validator
	Handlers  []Registrar
	// Health reports readiness of backing resources. Nil checks are skipped.
	Health func() error
}

// NewRouter builds the full router. All API routes sit behind authentication;
// health and metrics stay open for probes and scrapers.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", handleHealth(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(api chi.Router) {
		api.Use(auth.RequireAuth(deps.Validator, deps.Logger))
		for _, handler := range deps.Handlers {
			handler.Register(api)
		}
	})
	return r
}

func handleHealth(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if check != nil {
			if err := check(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.Write([]byte(`{"status":"ok"}`))
	}
}
