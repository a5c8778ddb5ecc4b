// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// CSRF protection errors.
var (
	// ErrCSRFTokenMissing indicates no CSRF token was provided.
	ErrCSRFTokenMissing = errors.New("CSRF token missing")

	// ErrCSRFTokenInvalid indicates the CSRF token did not match.
	ErrCSRFTokenInvalid = errors.New("CSRF token invalid")
)

// CSRF cookie and header names. The token cookie is readable by page
// scripts so they can echo it in the header; the hash cookie is HTTP-only
// so a script injected cross-site cannot mint a matching pair.
const (
	CSRFCookieName     = "csrf_token"
	CSRFHashCookieName = "csrf_token_hash"
	CSRFHeaderName     = "X-CSRF-Token"

	csrfTokenBytes = 32
	csrfCookieTTL  = 24 * time.Hour
)

// csrfSafeMethods are exempt per RFC 7231: they must not change state.
var csrfSafeMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
	http.MethodTrace:   true,
}

// CSRFGuard implements a stateless double-submit CSRF check. The server
// keeps no token table; validity is proven by an HMAC over the token
// keyed with the server secret, carried in a second HTTP-only cookie.
type CSRFGuard struct {
	secret         []byte
	secure         bool
	exemptPrefixes []string
}

// NewCSRFGuard creates the guard. exemptPrefixes lists path prefixes
// (webhook receivers) whose callers cannot carry cookies or headers.
func NewCSRFGuard(secret string, secure bool, exemptPrefixes []string) (*CSRFGuard, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("CSRF secret must be at least 32 characters (got %d)", len(secret))
	}
	return &CSRFGuard{
		secret:         []byte(secret),
		secure:         secure,
		exemptPrefixes: exemptPrefixes,
	}, nil
}

// Issue generates a fresh token pair and sets both cookies. Returns the
// readable token so handlers can include it in the response body.
func (g *CSRFGuard) Issue(w http.ResponseWriter) (string, error) {
	raw := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate CSRF token: %w", err)
	}
	tokenValue := base64.RawURLEncoding.EncodeToString(raw)

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    tokenValue,
		Path:     "/",
		MaxAge:   int(csrfCookieTTL.Seconds()),
		HttpOnly: false,
		Secure:   g.secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFHashCookieName,
		Value:    g.mac(tokenValue),
		Path:     "/",
		MaxAge:   int(csrfCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return tokenValue, nil
}

// Validate checks a state-changing request: the header token must equal
// the cookie token, and the hash cookie must carry a valid HMAC over it.
func (g *CSRFGuard) Validate(r *http.Request) error {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return ErrCSRFTokenMissing
	}
	hashCookie, err := r.Cookie(CSRFHashCookieName)
	if err != nil || hashCookie.Value == "" {
		return ErrCSRFTokenMissing
	}
	headerToken := r.Header.Get(CSRFHeaderName)
	if headerToken == "" {
		return ErrCSRFTokenMissing
	}

	if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(headerToken)) != 1 {
		return ErrCSRFTokenInvalid
	}
	if subtle.ConstantTimeCompare([]byte(g.mac(cookie.Value)), []byte(hashCookie.Value)) != 1 {
		return ErrCSRFTokenInvalid
	}
	return nil
}

// Middleware enforces the CSRF check on state-changing requests. Safe
// methods and exempt path prefixes pass through.
func (g *CSRFGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if csrfSafeMethods[r.Method] || g.isExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if err := g.Validate(r); err != nil {
			reason := "mismatch"
			if errors.Is(err, ErrCSRFTokenMissing) {
				reason = "missing"
			}
			CSRFRejections.WithLabelValues(reason).Inc()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"csrf_failed","message":"` + err.Error() + `"}`)) //nolint:errcheck
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *CSRFGuard) isExempt(path string) bool {
	for _, prefix := range g.exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (g *CSRFGuard) mac(tokenValue string) string {
	h := hmac.New(sha256.New, g.secret)
	h.Write([]byte(tokenValue))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
