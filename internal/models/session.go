// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// SessionRecord is the server-side association between an issued token and
// a user. Deleting the record is the only revocation mechanism available
// before the token's natural expiry. Raw tokens are never persisted; the
// record is keyed by a SHA-256 hash of the token.
type SessionRecord struct {
	// ID is the session identifier (UUID).
	ID string `json:"id"`

	// TokenHash is the hex SHA-256 of the issued token.
	TokenHash string `json:"token_hash"`

	// UserID references the owning user.
	UserID string `json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the session has passed its expiry.
func (s *SessionRecord) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// HashToken computes the hex SHA-256 digest used to key session records.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
