// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package authz

import (
	"net/http"

	"github.com/lectern-lms/lectern/internal/auth"
	"github.com/lectern-lms/lectern/internal/logging"
)

// RequireRoleMiddleware rejects requests whose principal does not hold
// the role. Runs behind the edge middleware, so a missing principal means
// a routing mistake and is answered 401 rather than panicking.
func (g *Gate) RequireRoleMiddleware(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := auth.PrincipalFromContext(r.Context())
			if principal == nil {
				writeUnauthenticated(w)
				return
			}
			if err := g.RequireRole(principal, role); err != nil {
				Denials.WithLabelValues("role").Inc()
				logging.Debug().
					Str("user_id", principal.ID).
					Str("role", principal.Role).
					Str("required_role", role).
					Str("path", r.URL.Path).
					Msg("role denied")
				writeForbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermissionMiddleware rejects requests whose principal's role does
// not grant the permission.
func (g *Gate) RequirePermissionMiddleware(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := auth.PrincipalFromContext(r.Context())
			if principal == nil {
				writeUnauthenticated(w)
				return
			}
			if err := g.RequirePermission(principal, permission); err != nil {
				Denials.WithLabelValues("permission").Inc()
				logging.Debug().
					Str("user_id", principal.ID).
					Str("role", principal.Role).
					Str("required_permission", permission).
					Str("path", r.URL.Path).
					Msg("permission denied")
				writeForbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthenticated","message":"authentication required"}`)) //nolint:errcheck
}

func writeForbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(`{"error":"forbidden","message":"insufficient privileges"}`)) //nolint:errcheck
}
