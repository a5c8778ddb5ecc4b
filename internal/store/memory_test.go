// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lectern-lms/lectern/internal/models"
)

func testSession(token string, ttl time.Duration) *models.SessionRecord {
	now := time.Now()
	return &models.SessionRecord{
		ID:        uuid.NewString(),
		TokenHash: models.HashToken(token),
		UserID:    uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestMemoryUserStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStore()

	user := &models.User{
		ID:     uuid.NewString(),
		Email:  "ananya@example.com",
		Role:   models.RoleStudent,
		Active: true,
	}
	s.Put(user)

	t.Run("find by id", func(t *testing.T) {
		got, err := s.FindByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if got.Email != user.Email {
			t.Errorf("FindByID() email = %q, want %q", got.Email, user.Email)
		}
	})

	t.Run("find by email is case-insensitive", func(t *testing.T) {
		got, err := s.FindByEmail(ctx, "Ananya@Example.COM")
		if err != nil {
			t.Fatalf("FindByEmail() error = %v", err)
		}
		if got.ID != user.ID {
			t.Errorf("FindByEmail() id = %q, want %q", got.ID, user.ID)
		}
	})

	t.Run("absent user", func(t *testing.T) {
		if _, err := s.FindByID(ctx, "no-such-id"); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("FindByID() error = %v, want ErrUserNotFound", err)
		}
		if _, err := s.FindByEmail(ctx, "ghost@example.com"); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("FindByEmail() error = %v, want ErrUserNotFound", err)
		}
	})

	t.Run("returned user is a copy", func(t *testing.T) {
		got, _ := s.FindByID(ctx, user.ID)
		got.Email = "mutated@example.com"
		again, _ := s.FindByID(ctx, user.ID)
		if again.Email != user.Email {
			t.Error("mutation of returned user leaked into the store")
		}
	})
}

// sessionStoreContract exercises the SessionStore behavior shared by every
// backend.
func sessionStoreContract(t *testing.T, s SessionStore) {
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		session := testSession("token-alpha", time.Hour)
		if err := s.Create(ctx, session); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		got, err := s.FindByToken(ctx, "token-alpha")
		if err != nil {
			t.Fatalf("FindByToken() error = %v", err)
		}
		if got.UserID != session.UserID {
			t.Errorf("FindByToken() user = %q, want %q", got.UserID, session.UserID)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		if _, err := s.FindByToken(ctx, "never-issued"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("FindByToken() error = %v, want ErrSessionNotFound", err)
		}
	})

	t.Run("expired session treated as absent", func(t *testing.T) {
		if err := s.Create(ctx, testSession("token-stale", -time.Minute)); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if _, err := s.FindByToken(ctx, "token-stale"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("FindByToken() error = %v, want ErrSessionNotFound", err)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		if err := s.Create(ctx, testSession("token-beta", time.Hour)); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := s.DeleteByToken(ctx, "token-beta"); err != nil {
			t.Fatalf("DeleteByToken() error = %v", err)
		}
		if err := s.DeleteByToken(ctx, "token-beta"); err != nil {
			t.Errorf("DeleteByToken() second call error = %v, want nil", err)
		}
		if _, err := s.FindByToken(ctx, "token-beta"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("FindByToken() after delete error = %v, want ErrSessionNotFound", err)
		}
	})

	t.Run("delete expired", func(t *testing.T) {
		if err := s.Create(ctx, testSession("token-gamma", -time.Minute)); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := s.Create(ctx, testSession("token-delta", time.Hour)); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		if _, err := s.DeleteExpired(ctx); err != nil {
			t.Fatalf("DeleteExpired() error = %v", err)
		}
		if _, err := s.FindByToken(ctx, "token-delta"); err != nil {
			t.Errorf("live session removed by DeleteExpired: %v", err)
		}
	})

	t.Run("delete all", func(t *testing.T) {
		if err := s.Create(ctx, testSession("token-epsilon", time.Hour)); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		count, err := s.DeleteAll(ctx)
		if err != nil {
			t.Fatalf("DeleteAll() error = %v", err)
		}
		if count < 1 {
			t.Errorf("DeleteAll() count = %d, want at least 1", count)
		}
		if _, err := s.FindByToken(ctx, "token-epsilon"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("FindByToken() after DeleteAll error = %v, want ErrSessionNotFound", err)
		}
	})
}

func TestMemorySessionStore(t *testing.T) {
	s := NewMemorySessionStore()
	defer s.Close()
	sessionStoreContract(t, s)
}

func TestMemorySessionStoreDeleteExpiredCount(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore()
	defer s.Close()

	for i, ttl := range []time.Duration{-time.Hour, -time.Minute, time.Hour} {
		if err := s.Create(ctx, testSession(string(rune('a'+i)), ttl)); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	count, err := s.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}
	if count != 2 {
		t.Errorf("DeleteExpired() count = %d, want 2", count)
	}
}
