package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	Services  *ServiceHandler
	Resources *ResourceHandler
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
	// Health reports storage health for GET /healthz.
	Health func(ctx context.Context) error
	// RegenerationLimit caps regeneration requests per client and window.
	RegenerationLimit  int
	RegenerationWindow time.Duration
	Logger             zerolog.Logger
	Middleware         []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(RequestLogger(cfg.Logger))
	for _, mw := range cfg.Middleware {
		if mw != nil {
			router.Use(mw)
		}
	}

	window := cfg.RegenerationWindow
	if window <= 0 {
		window = time.Minute
	}
	limited := RegenerationLimiter(cfg.RegenerationLimit, window)

	if cfg.Services != nil {
		router.Route("/services/{id}", func(r chi.Router) {
			r.Put("/", cfg.Services.Put)
			r.Get("/sessions", cfg.Services.ListSessions)
			r.Get("/sessions.ics", cfg.Services.Calendar)
			r.With(limited).Post("/sessions/regenerate", cfg.Services.Regenerate)
		})
		router.With(limited).Post("/regenerate", cfg.Services.RegenerateAll)
	}

	if cfg.Resources != nil {
		router.Put("/resources/{id}", cfg.Resources.Put)
	}

	if cfg.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	responder := newResponder(cfg.Logger)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(r.Context()); err != nil {
				responder.writeError(r.Context(), w, http.StatusServiceUnavailable, "unhealthy", err)
				return
			}
		}
		responder.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responder.writeError(r.Context(), w, http.StatusNotFound, "not_found", nil)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorBody(w, http.StatusMethodNotAllowed, errorBody{
			Code:    "method_not_allowed",
			Message: http.StatusText(http.StatusMethodNotAllowed),
		})
	})

	return router
}
