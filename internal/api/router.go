package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/oriontek/customer-core/internal/metrics"
)

// publicPrefixes lists the request paths served without authentication.
// The request authentication middleware skips token resolution entirely for
// these, so an expired or garbage Authorization header can never break them.
var publicPrefixes = []string{
	"/api/v1/auth/",
	"/api/v1/health",
	"/metrics",
	"/favicon.ico",
}

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)
	r.Use(s.authenticationMiddleware)

	// Prometheus scrape endpoint (no auth; protect at the network layer)
	if s.gatherer != nil {
		r.Handle("/metrics", metrics.Handler(s.gatherer))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (public prefix; validate reports on the presented token)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.withLoginRateLimit(s.handleLogin))
			r.Get("/validate", s.handleValidate)
		})

		// Protected routes: any authenticated staff account
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuthenticated)

			r.Get("/profile", s.handleProfile)

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", s.handleListCustomers)
				r.Post("/", s.handleCreateCustomer)
				r.Get("/stats", s.handleCustomerStats)
				r.Get("/by-creator/{userID}", s.handleListCustomersByCreator)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetCustomer)
					r.Put("/", s.handleUpdateCustomer)
					r.Post("/activate", s.handleActivateCustomer)
					r.Post("/deactivate", s.handleDeactivateCustomer)
				})
			})

			// Account management; SUPERADMIN-gated in the service layer
			// (an ADMIN may still read and edit its own account), the
			// routing only requires authentication.
			r.Route("/admin", func(r chi.Router) {
				r.Route("/users", func(r chi.Router) {
					r.Get("/", s.handleListUsers)
					r.Post("/", s.handleCreateUser)
					r.Get("/stats", s.handleUserStats)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", s.handleGetUser)
						r.Put("/", s.handleUpdateUser)
						r.Put("/password", s.handleChangePassword)
						r.Post("/activate", s.handleActivateUser)
						r.Post("/deactivate", s.handleDeactivateUser)
					})
				})

				r.Get("/audit", s.handleListAudit)
			})
		})
	})

	return r
}

// handleHealth returns the server health status, including database
// connectivity when a database handle is wired.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK

	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err != nil {
			s.logger.Error("health check database failure", "error", err)
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":  status,
		"version": s.version,
	})
}

// isPublicPath reports whether the path is served without authentication.
func isPublicPath(path string) bool {
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
