// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/lectern-lms/lectern/internal/logging"
	"github.com/lectern-lms/lectern/internal/models"
)

type contextKey int

const principalKey contextKey = iota

// PrincipalFromContext returns the authenticated principal, or nil when
// the request is unauthenticated.
func PrincipalFromContext(ctx context.Context) *models.Principal {
	p, _ := ctx.Value(principalKey).(*models.Principal)
	return p
}

// ContextWithPrincipal returns a context carrying the principal. Exported
// for handler tests.
func ContextWithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// defaultPublicPaths are reachable without a token.
var defaultPublicPaths = map[string]bool{
	"/login":   true,
	"/health":  true,
	"/metrics": true,
}

// defaultPublicPrefixes are path prefixes reachable without a token.
// The whole auth namespace is public: login and csrf have no identity
// yet, logout must succeed with a stale token, and me resolves its own
// cookie so it can answer 401 instead of redirecting.
var defaultPublicPrefixes = []string{
	"/static/",
	"/assets/",
	"/api/auth/",
	"/api/webhooks/",
}

// dashboardPaths maps roles to their landing pages.
var dashboardPaths = map[string]string{
	models.RoleStudent: "/student/dashboard",
	models.RoleTeacher: "/teacher/dashboard",
	models.RoleAdmin:   "/admin/dashboard",
}

// DashboardPath returns the landing page for a role, falling back to the
// generic dashboard for roles without a dedicated one.
func DashboardPath(role string) string {
	if path, ok := dashboardPaths[role]; ok {
		return path
	}
	return "/dashboard"
}

// Edge is the perimeter middleware. Every request lands in exactly one of
// four states:
//
//   - public passthrough: the path needs no identity
//   - no token: redirect pages to /login, 401 for API paths
//   - invalid token: clear the cookie, then as above
//   - authenticated: principal injected into the request context
//
// Authenticated users visiting /login or the root are bounced to their
// role's dashboard instead of being shown the login page again.
type Edge struct {
	resolver *Resolver
	cookies  *CookieWriter

	publicPaths    map[string]bool
	publicPrefixes []string
}

// NewEdge creates the perimeter middleware. extraPublicPrefixes extends
// the built-in public prefix list (webhook receivers from config).
func NewEdge(resolver *Resolver, cookies *CookieWriter, extraPublicPrefixes []string) *Edge {
	prefixes := make([]string, 0, len(defaultPublicPrefixes)+len(extraPublicPrefixes))
	prefixes = append(prefixes, defaultPublicPrefixes...)
	for _, p := range extraPublicPrefixes {
		if p != "" && !containsString(prefixes, p) {
			prefixes = append(prefixes, p)
		}
	}

	return &Edge{
		resolver:       resolver,
		cookies:        cookies,
		publicPaths:    defaultPublicPaths,
		publicPrefixes: prefixes,
	}
}

// Middleware classifies the request and either rejects it, redirects it,
// or passes it on with the principal in context.
func (e *Edge) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		rawToken := TokenFromRequest(r)

		if e.isPublic(path) {
			// The login page and root bounce already-authenticated users to
			// their dashboard.
			if rawToken != "" && (path == "/login" || path == "/") {
				if principal, err := e.resolver.Resolve(r.Context(), rawToken); err == nil {
					http.Redirect(w, r, DashboardPath(principal.Role), http.StatusSeeOther)
					return
				}
			}
			next.ServeHTTP(w, r)
			return
		}

		if rawToken == "" {
			e.reject(w, r, false)
			return
		}

		principal, err := e.resolver.Resolve(r.Context(), rawToken)
		if err != nil {
			logging.Debug().Str("path", path).Err(err).Msg("rejected request with invalid token")
			e.reject(w, r, true)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}

// reject ends an unauthenticated request. API paths get 401 JSON; page
// requests are redirected to the login form. clearCookie is set when the
// request carried a token that failed to resolve.
func (e *Edge) reject(w http.ResponseWriter, r *http.Request, clearCookie bool) {
	if clearCookie {
		e.cookies.Clear(w)
	}
	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"unauthenticated","message":"authentication required"}`)) //nolint:errcheck
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (e *Edge) isPublic(path string) bool {
	if path == "/" {
		return true
	}
	if e.publicPaths[path] {
		return true
	}
	for _, prefix := range e.publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
