// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package api

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/lectern-lms/lectern/internal/auth"
	"github.com/lectern-lms/lectern/internal/models"
)

// Handler carries the auth endpoints.
type Handler struct {
	service  *auth.Service
	resolver *auth.Resolver
	csrf     *auth.CSRFGuard
	cookies  *auth.CookieWriter
	limiter  *auth.LoginLimiter
	validate *validator.Validate
}

// NewHandler wires the auth endpoint handler.
func NewHandler(service *auth.Service, resolver *auth.Resolver, csrf *auth.CSRFGuard, cookies *auth.CookieWriter, limiter *auth.LoginLimiter) *Handler {
	return &Handler{
		service:  service,
		resolver: resolver,
		csrf:     csrf,
		cookies:  cookies,
		limiter:  limiter,
		validate: validator.New(),
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// principalResponse is the wire form of a principal: role upper-cased.
type principalResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

func toPrincipalResponse(p *models.Principal) principalResponse {
	return principalResponse{
		ID:          p.ID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Role:        models.WireRole(p.Role),
		AvatarURL:   p.AvatarURL,
	}
}

type loginResponse struct {
	User      principalResponse `json:"user"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// Login handles POST /api/auth/login. Failures are uniform 401s so the
// response cannot distinguish unknown emails from wrong passwords.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	key := clientIP(r)
	allowed, remaining := h.limiter.Allow(key)
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if !allowed {
		auth.LoginAttempts.WithLabelValues("rate_limited").Inc()
		writeError(w, http.StatusTooManyRequests, "rate_limited", "too many login attempts, try again later")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "email and password are required")
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		return
	}
	if err != nil {
		writeServerError(w, err)
		return
	}

	h.limiter.Reset(key)
	h.cookies.Set(w, result.Token)
	writeJSON(w, http.StatusOK, loginResponse{
		User:      toPrincipalResponse(result.User.ToPrincipal()),
		ExpiresAt: result.ExpiresAt,
	})
}

// Logout handles POST /api/auth/logout. Always clears the cookie and is
// idempotent: a stale or absent token still yields success.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	rawToken := auth.TokenFromRequest(r)
	if err := h.service.Logout(r.Context(), rawToken); err != nil {
		writeServerError(w, err)
		return
	}
	h.cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me: the principal behind the request's cookie.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	rawToken := auth.TokenFromRequest(r)
	if rawToken == "" {
		writeUnauthenticated(w)
		return
	}
	principal, err := h.resolver.Resolve(r.Context(), rawToken)
	if err != nil {
		// Every resolution failure collapses to unauthenticated.
		writeUnauthenticated(w)
		return
	}
	writeJSON(w, http.StatusOK, toPrincipalResponse(principal))
}

// CSRFToken handles GET /api/auth/csrf: issues the double-submit pair and
// returns the readable half for clients that prefer the body over the
// cookie.
func (h *Handler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	tokenValue, err := h.csrf.Issue(w)
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"csrf_token": tokenValue})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// clientIP returns the remote IP without the port. The router installs
// chi's RealIP middleware ahead of this, so RemoteAddr already reflects
// X-Forwarded-For when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

