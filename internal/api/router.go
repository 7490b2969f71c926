package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/lightguard-core/internal/auth"
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

	r.Route("/api/v1", func(r chi.Router) {
		// Unauthenticated: vehicle-local diagnostics
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Get("/ws", s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.With(s.requirePermission(auth.PermFaultsRead)).Get("/faults", s.handleListFaults)

			r.With(s.requirePermission(auth.PermStatusRead)).Get("/override", s.handleGetOverride)
			r.With(s.requirePermission(auth.PermOverrideWrite)).Put("/override", s.handleSetOverride)
		})
	})

	return r
}
