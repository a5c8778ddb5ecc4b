// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/lectern-lms/lectern/internal/models"
)

// MemoryUserStore is an in-memory UserStore for development and tests.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*models.User // keyed by id
}

// NewMemoryUserStore creates an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*models.User)}
}

// Put inserts or replaces a user. Test seeding helper.
func (s *MemoryUserStore) Put(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.users[u.ID] = &u
}

// FindByID loads a user by id.
func (s *MemoryUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *user
	return &u, nil
}

// FindByEmail loads a user by lowercased email.
func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(email)
	for _, user := range s.users {
		if user.Email == email {
			u := *user
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

// MemorySessionStore is an in-memory SessionStore. Suitable for development
// and testing; sessions do not survive restarts.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.SessionRecord // keyed by token hash
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*models.SessionRecord)}
}

// Create persists a new session record.
func (s *MemorySessionStore) Create(ctx context.Context, session *models.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *session
	s.sessions[session.TokenHash] = &stored
	return nil
}

// FindByToken returns the live session for a raw token.
func (s *MemorySessionStore) FindByToken(ctx context.Context, token string) (*models.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[models.HashToken(token)]
	if !ok || session.IsExpired() {
		return nil, ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

// DeleteByToken removes the session for a raw token. Idempotent.
func (s *MemorySessionStore) DeleteByToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, models.HashToken(token))
	return nil
}

// DeleteAll removes every session record.
func (s *MemorySessionStore) DeleteAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.sessions)
	s.sessions = make(map[string]*models.SessionRecord)
	return count, nil
}

// DeleteExpired removes expired records.
func (s *MemorySessionStore) DeleteExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	now := time.Now()
	for hash, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, hash)
			count++
		}
	}
	return count, nil
}

// Close is a no-op for the in-memory backend.
func (s *MemorySessionStore) Close() error {
	return nil
}
