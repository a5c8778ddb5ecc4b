// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package auth

import (
	"net/http"
	"time"
)

// Auth cookie names. CookieNameLegacy is the pre-1.0 name still presented
// by old clients; it is read but no longer written.
const (
	CookieName       = "auth_token"
	CookieNameLegacy = "auth-token"
)

var cookieNames = []string{CookieName, CookieNameLegacy}

// CookieWriter writes and clears the auth cookie with environment-aware
// attributes.
type CookieWriter struct {
	secure bool
	ttl    time.Duration
}

// NewCookieWriter creates a cookie writer. secure should be true in
// production so the cookie is never sent over plain HTTP.
func NewCookieWriter(secure bool, ttl time.Duration) *CookieWriter {
	return &CookieWriter{secure: secure, ttl: ttl}
}

// Set writes the auth cookie carrying the signed token.
func (c *CookieWriter) Set(w http.ResponseWriter, tokenValue string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tokenValue,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the auth cookie under both current and legacy names.
func (c *CookieWriter) Clear(w http.ResponseWriter) {
	for _, name := range cookieNames {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   c.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// TokenFromRequest extracts the raw token from the request cookies,
// preferring the current cookie name over the legacy alias. Returns ""
// when no auth cookie is present.
func TokenFromRequest(r *http.Request) string {
	for _, name := range cookieNames {
		if cookie, err := r.Cookie(name); err == nil && cookie.Value != "" {
			return cookie.Value
		}
	}
	return ""
}
