// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lectern-lms/lectern/internal/logging"
	"github.com/lectern-lms/lectern/internal/models"
	"github.com/lectern-lms/lectern/internal/store"
	"github.com/lectern-lms/lectern/internal/token"
)

// ErrInvalidCredentials is returned for every login failure a caller may
// not distinguish: unknown email, wrong password, and deactivated account
// all collapse to this error so responses cannot be used to enumerate
// accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyPasswordHash is compared against when the email is unknown so that
// unknown-email and wrong-password failures take the same time.
const dummyPasswordHash = "$2a$12$VQC5Zd2eW8YyLD0k3F7mAOa1F0Hgkgi9GAlGJQBmxWr8Zl0PYDLMi"

// Service performs credential verification and session lifecycle.
type Service struct {
	users    store.UserStore
	sessions store.SessionStore
	codec    *token.Codec
	hasher   *Hasher
	tokenTTL time.Duration
}

// NewService wires the authentication service.
func NewService(users store.UserStore, sessions store.SessionStore, codec *token.Codec, hasher *Hasher, tokenTTL time.Duration) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		codec:    codec,
		hasher:   hasher,
		tokenTTL: tokenTTL,
	}
}

// LoginResult is a successful login: the signed token and the user it
// belongs to.
type LoginResult struct {
	Token     string
	User      *models.User
	ExpiresAt time.Time
}

// Login verifies the credentials, issues a token, and records the session.
// All verification failures return ErrInvalidCredentials; only backend
// faults surface as distinct errors.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	start := time.Now()
	defer func() { LoginDuration.Observe(time.Since(start).Seconds()) }()

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrUserNotFound) {
		s.hasher.Compare(dummyPasswordHash, password)
		LoginAttempts.WithLabelValues("invalid_credentials").Inc()
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		LoginAttempts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		LoginAttempts.WithLabelValues("invalid_credentials").Inc()
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		logging.Warn().Str("user_id", user.ID).Msg("login attempt on deactivated account")
		LoginAttempts.WithLabelValues("invalid_credentials").Inc()
		return nil, ErrInvalidCredentials
	}

	signed, err := s.codec.Issue(user.ID, user.Role, s.tokenTTL)
	if err != nil {
		LoginAttempts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	now := time.Now()
	session := &models.SessionRecord{
		ID:        uuid.NewString(),
		TokenHash: models.HashToken(signed),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		LoginAttempts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to record session: %w", err)
	}

	logging.Info().
		Str("user_id", user.ID).
		Str("role", user.Role).
		Str("session_id", session.ID).
		Msg("user logged in")
	LoginAttempts.WithLabelValues("success").Inc()

	return &LoginResult{Token: signed, User: user, ExpiresAt: session.ExpiresAt}, nil
}

// Logout deletes the session for the given raw token. Idempotent: logging
// out with an already-revoked or never-issued token succeeds.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	if err := s.sessions.DeleteByToken(ctx, rawToken); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	SessionsRevoked.WithLabelValues("logout").Inc()
	return nil
}

// WipeSessions deletes every session, forcing all users to log in again.
// Backs the operator bulk-invalidation command.
func (s *Service) WipeSessions(ctx context.Context) (int, error) {
	count, err := s.sessions.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to wipe sessions: %w", err)
	}
	SessionsRevoked.WithLabelValues("wipe").Add(float64(count))
	logging.Info().Int("count", count).Msg("wiped all sessions")
	return count, nil
}

// SweepExpired removes expired session records once. The server runs this
// on a timer; the store also treats expired records as absent on read, so
// the sweep is hygiene rather than correctness.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	count, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep sessions: %w", err)
	}
	if count > 0 {
		SessionsRevoked.WithLabelValues("sweep").Add(float64(count))
		logging.Debug().Int("count", count).Msg("swept expired sessions")
	}
	return count, nil
}

// StartSweeper runs SweepExpired on the given interval until ctx is done.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.SweepExpired(ctx); err != nil {
					logging.Warn().Err(err).Msg("session sweep failed")
				}
			}
		}
	}()
}
