package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	pathHealth  = "/api/v1/health"
	pathMetrics = "/metrics"

	// healthCheckTimeout bounds each component check.
	healthCheckTimeout = 2 * time.Second
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Handle(pathMetrics, promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			if limit := s.rateLimitMiddleware(); limit != nil {
				r.Use(limit)
			}

			r.Route("/session", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Post("/control", s.handleControl)
				r.Get("/audio", s.handleGetAudio)
				r.Get("/overlays", s.handleGetOverlays)
			})

			r.Route("/rundown", func(r chi.Router) {
				r.Put("/", s.handlePutRundown)
				r.Post("/reload", s.handleReload)
			})

			r.Route("/rundowns", func(r chi.Router) {
				r.Get("/", s.handleListRundowns)
				r.Get("/{id}", s.handleGetRundown)
				r.Delete("/{id}", s.handleDeleteRundown)
			})

			r.Get("/asrun", s.handleListAsRun)

			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth reports the server version, whether a session is running,
// and the state of each registered component. Any failing component turns
// the response into a 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	components := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := check.HealthCheck(ctx)
		cancel()
		if err != nil {
			components[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	_, sessionErr := s.runner.Snapshot()

	body := map[string]any{
		"status":     "ok",
		"version":    s.version,
		"session":    sessionErr == nil,
		"components": components,
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	writeJSON(w, status, body)
}
