// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

// Package store defines the persistence contracts consumed by the auth core
// and their backends: Postgres (pgx) for users and sessions, BadgerDB and
// in-memory alternatives for the session directory.
//
// The exact user schema is owned by the LMS domain modules; this package
// only depends on the columns the auth core reads.
package store

import (
	"context"
	"errors"

	"github.com/lectern-lms/lectern/internal/models"
)

// Store errors.
var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrSessionNotFound is returned when no session matches the token.
	ErrSessionNotFound = errors.New("session not found")
)

// UserStore is the read-side contract over the LMS user table.
// Writes (sign-up, profile updates, role changes) belong to the domain
// modules and are out of scope here.
type UserStore interface {
	// FindByID loads a user by principal id.
	// Returns ErrUserNotFound if absent.
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail loads a user by lowercased email.
	// Returns ErrUserNotFound if absent.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// SessionStore is the session directory: the revocable server-side record
// of issued tokens. Records are keyed by token hash; raw tokens are never
// stored.
type SessionStore interface {
	// Create persists a new session record.
	Create(ctx context.Context, session *models.SessionRecord) error

	// FindByToken returns the live session for a raw token.
	// Returns ErrSessionNotFound if absent or expired.
	FindByToken(ctx context.Context, token string) (*models.SessionRecord, error)

	// DeleteByToken removes the session for a raw token. Idempotent:
	// deleting a non-existent session is not an error, since logout must
	// succeed even if the session is already gone.
	DeleteByToken(ctx context.Context, token string) error

	// DeleteAll removes every session record and returns the count.
	// Used by the operator bulk-invalidation command.
	DeleteAll(ctx context.Context) (int, error)

	// DeleteExpired removes expired records and returns the count.
	DeleteExpired(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close() error
}
