// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package auth

import (
	"context"
	"sync"
	"time"
)

// LoginLimiter is a fixed-window rate limiter keyed by client. Each key
// gets max attempts per window; the window resets wholesale rather than
// sliding, which matches the remaining-attempts number shown to users.
type LoginLimiter struct {
	max    int
	window time.Duration

	mu      sync.Mutex
	buckets map[string]*loginBucket
}

type loginBucket struct {
	count       int
	windowStart time.Time
}

// NewLoginLimiter creates a limiter allowing max attempts per window per
// key.
func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		max:     max,
		window:  window,
		buckets: make(map[string]*loginBucket),
	}
}

// Allow records an attempt for the key and reports whether it is within
// the limit, along with the attempts remaining in the current window.
func (l *LoginLimiter) Allow(key string) (allowed bool, remaining int) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.buckets[key]
	if !ok || now.Sub(bucket.windowStart) >= l.window {
		bucket = &loginBucket{windowStart: now}
		l.buckets[key] = bucket
	}

	if bucket.count >= l.max {
		return false, 0
	}
	bucket.count++
	return true, l.max - bucket.count
}

// Reset clears the window for a key. Called after a successful login so a
// user who mistyped their password a few times is not still near the
// limit.
func (l *LoginLimiter) Reset(key string) {
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()
}

// StartCleanup drops stale buckets on the given interval until ctx is
// done.
func (l *LoginLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.cleanup()
			}
		}
	}()
}

func (l *LoginLimiter) cleanup() {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, bucket := range l.buckets {
		if now.Sub(bucket.windowStart) >= l.window {
			delete(l.buckets, key)
		}
	}
}
