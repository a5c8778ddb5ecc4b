// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package auth

import (
	"testing"
	"time"
)

func TestLoginLimiterAllow(t *testing.T) {
	l := NewLoginLimiter(3, time.Minute)

	wantRemaining := []int{2, 1, 0}
	for i, want := range wantRemaining {
		allowed, remaining := l.Allow("203.0.113.7")
		if !allowed {
			t.Fatalf("attempt %d: Allow() = false, want true", i+1)
		}
		if remaining != want {
			t.Errorf("attempt %d: remaining = %d, want %d", i+1, remaining, want)
		}
	}

	// Fourth attempt in the window is refused with nothing remaining.
	allowed, remaining := l.Allow("203.0.113.7")
	if allowed {
		t.Error("Allow() = true past the limit")
	}
	if remaining != 0 {
		t.Errorf("remaining = %d, want 0", remaining)
	}
}

func TestLoginLimiterKeysAreIndependent(t *testing.T) {
	l := NewLoginLimiter(1, time.Minute)

	if allowed, _ := l.Allow("alice"); !allowed {
		t.Fatal("first attempt for alice refused")
	}
	if allowed, _ := l.Allow("alice"); allowed {
		t.Error("second attempt for alice allowed")
	}
	if allowed, _ := l.Allow("bob"); !allowed {
		t.Error("bob blocked by alice's attempts")
	}
}

func TestLoginLimiterWindowReset(t *testing.T) {
	l := NewLoginLimiter(1, 20*time.Millisecond)

	if allowed, _ := l.Allow("key"); !allowed {
		t.Fatal("first attempt refused")
	}
	if allowed, _ := l.Allow("key"); allowed {
		t.Fatal("second attempt in window allowed")
	}

	time.Sleep(30 * time.Millisecond)
	if allowed, _ := l.Allow("key"); !allowed {
		t.Error("attempt after window expiry refused")
	}
}

func TestLoginLimiterReset(t *testing.T) {
	l := NewLoginLimiter(2, time.Minute)

	l.Allow("key")
	l.Allow("key")
	if allowed, _ := l.Allow("key"); allowed {
		t.Fatal("attempt past limit allowed")
	}

	l.Reset("key")
	allowed, remaining := l.Allow("key")
	if !allowed {
		t.Error("attempt after Reset() refused")
	}
	if remaining != 1 {
		t.Errorf("remaining after Reset() = %d, want 1", remaining)
	}
}
