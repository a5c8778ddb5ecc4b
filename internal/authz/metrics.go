// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package authz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Denials counts requests rejected by the authorization middleware.
// Labels:
//   - check: "role", "permission"
var Denials = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lectern_authz_denials_total",
		Help: "Total number of authorization denials",
	},
	[]string{"check"},
)
