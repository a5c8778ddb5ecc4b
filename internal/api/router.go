// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lectern-lms/lectern/internal/auth"
	"github.com/lectern-lms/lectern/internal/authz"
	"github.com/lectern-lms/lectern/internal/config"
	"github.com/lectern-lms/lectern/internal/models"
)

// RouterDeps are the wired components the router mounts.
type RouterDeps struct {
	Handler *Handler
	Edge    *auth.Edge
	CSRF    *auth.CSRFGuard
	Gate    *authz.Gate
}

// NewRouter assembles the HTTP surface.
//
// Middleware order: request id and real IP first, panic recovery, CORS
// (global, for preflight), the router-level rate limit, then the edge.
// The CSRF guard sits on the protected resource groups only; the auth
// namespace is covered by SameSite cookies plus the login limiter.
func NewRouter(cfg *config.Config, deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", auth.CSRFHeaderName},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if !cfg.Security.RateLimitDisabled {
		r.Use(httprate.LimitByIP(cfg.Security.RateLimitReqs, cfg.Security.RateLimitWindow))
	}
	r.Use(deps.Edge.Middleware)

	// Observability and liveness, public by the edge's path set.
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", deps.Handler.Health)

	// Auth namespace. Public at the edge; each handler decides for itself.
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", deps.Handler.Login)
		r.Post("/logout", deps.Handler.Logout)
		r.Get("/me", deps.Handler.Me)
		r.Get("/csrf", deps.Handler.CSRFToken)
	})

	// Webhook receivers: CSRF-exempt by prefix, authenticated by their own
	// signature schemes (owned by the integrations, stubbed here).
	r.Post("/api/webhooks/{source}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	// Protected API resources. Behind the edge (authenticated principal in
	// context), the CSRF guard, and per-endpoint permission gates. The
	// endpoint bodies are stubs; the domain modules own the real ones.
	r.Group(func(r chi.Router) {
		r.Use(deps.CSRF.Middleware)

		r.With(deps.Gate.RequirePermissionMiddleware(authz.PermViewContent)).
			Get("/api/content", okStub)
		r.With(deps.Gate.RequirePermissionMiddleware(authz.PermSubmitHomework)).
			Post("/api/homework", okStub)
		r.With(deps.Gate.RequirePermissionMiddleware(authz.PermCreateTests)).
			Post("/api/tests", okStub)
		r.With(deps.Gate.RequirePermissionMiddleware(authz.PermGradeTests)).
			Post("/api/tests/{id}/grades", okStub)
		r.With(deps.Gate.RequirePermissionMiddleware(authz.PermMarkAttendance)).
			Post("/api/attendance", okStub)
		r.With(deps.Gate.RequirePermissionMiddleware(authz.PermPostNotices)).
			Post("/api/notices", okStub)
		r.With(deps.Gate.RequirePermissionMiddleware(authz.PermViewReports)).
			Get("/api/reports", okStub)
		r.With(deps.Gate.RequirePermissionMiddleware(authz.PermManageStudents)).
			Post("/api/students", okStub)
		r.With(deps.Gate.RequirePermissionMiddleware(authz.PermManageBatches)).
			Post("/api/batches", okStub)
		r.With(deps.Gate.RequirePermissionMiddleware(authz.PermSystemSettings)).
			Get("/api/admin/settings", okStub)
	})

	// Role dashboards. The edge already redirects anonymous visitors to
	// /login; the role gate keeps students out of the teacher dashboard.
	r.With(deps.Gate.RequireRoleMiddleware(models.RoleStudent)).
		Get("/student/dashboard", dashboardStub)
	r.With(deps.Gate.RequireRoleMiddleware(models.RoleTeacher)).
		Get("/teacher/dashboard", dashboardStub)
	r.With(deps.Gate.RequireRoleMiddleware(models.RoleAdmin)).
		Get("/admin/dashboard", dashboardStub)
	r.Get("/dashboard", dashboardStub)

	// Landing and login pages. Server-rendered pages are owned by the web
	// module; these stubs keep the redirect behavior testable.
	r.Get("/", pageStub)
	r.Get("/login", pageStub)

	return r
}

func okStub(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func dashboardStub(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		writeUnauthenticated(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"dashboard": r.URL.Path,
		"user_id":   principal.ID,
	})
}

func pageStub(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("<!doctype html><title>Lectern</title>")) //nolint:errcheck
}
