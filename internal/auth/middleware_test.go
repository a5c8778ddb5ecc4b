// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lectern-lms/lectern/internal/models"
)

// edgeEnv wires an Edge over the in-memory test environment with a logged
// in student.
type edgeEnv struct {
	*testEnv
	edge    *Edge
	handler http.Handler
	token   string
	user    *models.User
}

func newEdgeEnv(t *testing.T) *edgeEnv {
	t.Helper()
	env := newTestEnv(t)
	user := env.seedUser(t, "priya@example.com", "s3cret-pass", models.RoleStudent)

	result, err := env.service.Login(context.Background(), "priya@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	edge := NewEdge(env.resolver, NewCookieWriter(false, time.Hour), nil)
	handler := edge.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := PrincipalFromContext(r.Context()); p != nil {
			w.Header().Set("X-Test-Principal", p.ID)
		}
		w.WriteHeader(http.StatusOK)
	}))

	return &edgeEnv{testEnv: env, edge: edge, handler: handler, token: result.Token, user: user}
}

func (e *edgeEnv) request(t *testing.T, path, cookieName, cookieValue string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if cookieValue != "" {
		r.AddCookie(&http.Cookie{Name: cookieName, Value: cookieValue})
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, r)
	return rec
}

func TestEdgePublicPassthrough(t *testing.T) {
	env := newEdgeEnv(t)

	for _, path := range []string{"/login", "/health", "/metrics", "/static/app.css", "/api/auth/login", "/api/webhooks/payments"} {
		rec := env.request(t, path, "", "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s without token status = %d, want 200", path, rec.Code)
		}
	}
}

func TestEdgeNoToken(t *testing.T) {
	env := newEdgeEnv(t)

	t.Run("page redirects to login", func(t *testing.T) {
		rec := env.request(t, "/student/dashboard", "", "")
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("status = %d, want 303", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/login" {
			t.Errorf("Location = %q, want /login", loc)
		}
	})

	t.Run("api gets 401 json", func(t *testing.T) {
		rec := env.request(t, "/api/tests", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
	})
}

func TestEdgeInvalidToken(t *testing.T) {
	env := newEdgeEnv(t)

	rec := env.request(t, "/student/dashboard", CookieName, "not-a-valid-token")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}

	// The bad cookie must be expired in the response.
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("invalid auth cookie was not cleared")
	}
}

func TestEdgeRevokedToken(t *testing.T) {
	env := newEdgeEnv(t)

	if err := env.service.Logout(context.Background(), env.token); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	rec := env.request(t, "/api/tests", CookieName, env.token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status after logout = %d, want 401", rec.Code)
	}
}

func TestEdgeAuthenticated(t *testing.T) {
	env := newEdgeEnv(t)

	rec := env.request(t, "/student/dashboard", CookieName, env.token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("X-Test-Principal"); got != env.user.ID {
		t.Errorf("principal id = %q, want %q", got, env.user.ID)
	}
}

func TestEdgeLegacyCookieName(t *testing.T) {
	env := newEdgeEnv(t)

	rec := env.request(t, "/student/dashboard", CookieNameLegacy, env.token)
	if rec.Code != http.StatusOK {
		t.Errorf("status with legacy cookie = %d, want 200", rec.Code)
	}
}

func TestEdgeAuthenticatedLoginRedirect(t *testing.T) {
	env := newEdgeEnv(t)

	for _, path := range []string{"/login", "/"} {
		rec := env.request(t, path, CookieName, env.token)
		if rec.Code != http.StatusSeeOther {
			t.Errorf("GET %s with token status = %d, want 303", path, rec.Code)
			continue
		}
		if loc := rec.Header().Get("Location"); loc != "/student/dashboard" {
			t.Errorf("GET %s Location = %q, want /student/dashboard", path, loc)
		}
	}
}

func TestDashboardPath(t *testing.T) {
	tests := []struct {
		role string
		want string
	}{
		{models.RoleStudent, "/student/dashboard"},
		{models.RoleTeacher, "/teacher/dashboard"},
		{models.RoleAdmin, "/admin/dashboard"},
		{"unknown", "/dashboard"},
	}
	for _, tt := range tests {
		if got := DashboardPath(tt.role); got != tt.want {
			t.Errorf("DashboardPath(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}
