// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttempts counts credential verification attempts.
	// Labels:
	//   - outcome: "success", "invalid_credentials", "rate_limited", "error"
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lectern_login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"outcome"},
	)

	// LoginDuration measures end-to-end login latency including the bcrypt
	// comparison, which dominates.
	LoginDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lectern_login_duration_seconds",
			Help:    "Duration of login operations in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	// TokenVerifyFailures counts token verification failures by kind.
	// Labels:
	//   - kind: "malformed", "signature_invalid", "expired"
	TokenVerifyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lectern_token_verify_failures_total",
			Help: "Total number of token verification failures",
		},
		[]string{"kind"},
	)

	// ResolverCacheHits counts principal cache hits and misses.
	// Labels:
	//   - result: "hit", "miss"
	ResolverCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lectern_resolver_cache_total",
			Help: "Principal cache lookups by result",
		},
		[]string{"result"},
	)

	// SessionsRevoked counts session deletions.
	// Labels:
	//   - reason: "logout", "sweep", "wipe"
	SessionsRevoked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lectern_sessions_revoked_total",
			Help: "Total number of revoked sessions",
		},
		[]string{"reason"},
	)

	// CSRFRejections counts requests rejected by the CSRF guard.
	// Labels:
	//   - reason: "missing", "mismatch"
	CSRFRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lectern_csrf_rejections_total",
			Help: "Total number of CSRF-rejected requests",
		},
		[]string{"reason"},
	)
)
