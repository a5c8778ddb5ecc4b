// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

// Package api exposes the HTTP surface: the auth endpoints, the
// role-gated resource endpoints, and the chi router wiring the edge,
// CSRF, and rate-limit middleware around them.
package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/lectern-lms/lectern/internal/logging"
)

// errorResponse is the uniform error body. Messages are generic on
// purpose: authentication failures never say which part was wrong.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

func writeUnauthenticated(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
}

func writeServerError(w http.ResponseWriter, err error) {
	// Internal details stay in the log, never in the response.
	logging.Error().Err(err).Msg("internal error")
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
