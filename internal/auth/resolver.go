// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lectern-lms/lectern/internal/logging"
	"github.com/lectern-lms/lectern/internal/models"
	"github.com/lectern-lms/lectern/internal/store"
	"github.com/lectern-lms/lectern/internal/token"
)

// Resolution errors. The edge collapses all of them to "unauthenticated";
// they stay distinct for logging and tests.
var (
	// ErrSessionRevoked means the token verified but its session record is
	// gone: the user logged out, an operator wiped sessions, or the record
	// expired.
	ErrSessionRevoked = errors.New("session revoked")

	// ErrPrincipalGone means the token's subject no longer resolves to an
	// active user.
	ErrPrincipalGone = errors.New("principal not found or inactive")
)

type cacheEntry struct {
	principal *models.Principal
	expiresAt time.Time
}

// Resolver turns a raw token into a verified Principal.
//
// Resolution is token signature, then session directory, then user lookup.
// The session check makes logout effective immediately; the user lookup is
// cached for a short TTL, which bounds how long a role change or account
// deactivation can go unnoticed on already-issued tokens.
type Resolver struct {
	codec    *token.Codec
	sessions store.SessionStore
	users    store.UserStore
	cacheTTL time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry // keyed by user id
}

// NewResolver creates an identity resolver with the given principal cache
// TTL.
func NewResolver(codec *token.Codec, sessions store.SessionStore, users store.UserStore, cacheTTL time.Duration) *Resolver {
	return &Resolver{
		codec:    codec,
		sessions: sessions,
		users:    users,
		cacheTTL: cacheTTL,
		cache:    make(map[string]cacheEntry),
	}
}

// Resolve verifies the token, checks the session directory, and loads the
// principal. The returned principal's Role comes from the user record, not
// the token claim, so role changes take effect within the cache TTL.
func (r *Resolver) Resolve(ctx context.Context, rawToken string) (*models.Principal, error) {
	identity, err := r.codec.Verify(rawToken)
	if err != nil {
		var verr *token.VerifyError
		if errors.As(err, &verr) {
			TokenVerifyFailures.WithLabelValues(string(verr.Kind)).Inc()
		}
		return nil, err
	}

	if _, err := r.sessions.FindByToken(ctx, rawToken); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, ErrSessionRevoked
		}
		return nil, fmt.Errorf("failed to check session: %w", err)
	}

	return r.principal(ctx, identity.SubjectID)
}

// principal returns the cached principal for a user id, loading and
// caching it on miss.
func (r *Resolver) principal(ctx context.Context, userID string) (*models.Principal, error) {
	r.mu.RLock()
	entry, ok := r.cache[userID]
	r.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		ResolverCacheHits.WithLabelValues("hit").Inc()
		p := *entry.principal
		return &p, nil
	}
	ResolverCacheHits.WithLabelValues("miss").Inc()

	user, err := r.users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrUserNotFound) {
		r.Evict(userID)
		return nil, ErrPrincipalGone
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.Active {
		r.Evict(userID)
		logging.Debug().Str("user_id", userID).Msg("rejected token for deactivated account")
		return nil, ErrPrincipalGone
	}

	principal := user.ToPrincipal()
	r.mu.Lock()
	r.cache[userID] = cacheEntry{principal: principal, expiresAt: time.Now().Add(r.cacheTTL)}
	r.mu.Unlock()

	p := *principal
	return &p, nil
}

// Evict drops a user from the principal cache. Called on deactivation and
// by anything that mutates a user record and wants the change visible
// before the TTL lapses.
func (r *Resolver) Evict(userID string) {
	r.mu.Lock()
	delete(r.cache, userID)
	r.mu.Unlock()
}

// StartCacheCleanup evicts stale cache entries on the given interval until
// ctx is done. The cache is small (one entry per recently active user) but
// would otherwise grow without bound.
func (r *Resolver) StartCacheCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.evictExpired()
			}
		}
	}()
}

func (r *Resolver) evictExpired() {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, entry := range r.cache {
		if now.After(entry.expiresAt) {
			delete(r.cache, id)
		}
	}
}
