// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

// Package authz implements role and permission checks over a Casbin
// policy. The permission table is data (policy.csv), not code: adding a
// permission touches only the table. There is no role inheritance; every
// grant is an explicit row.
package authz

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/lectern-lms/lectern/internal/models"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// ErrForbidden is returned when a principal lacks the required role or
// permission.
var ErrForbidden = errors.New("forbidden")

// Named permissions from the policy table.
const (
	PermManageStudents = "manage_students"
	PermManageBatches  = "manage_batches"
	PermCreateTests    = "create_tests"
	PermGradeTests     = "grade_tests"
	PermMarkAttendance = "mark_attendance"
	PermViewContent    = "view_content"
	PermSubmitHomework = "submit_homework"
	PermPostNotices    = "post_notices"
	PermViewReports    = "view_reports"
	PermSystemSettings = "system_settings"
)

// Gate answers role and permission questions for principals.
type Gate struct {
	enforcer *casbin.SyncedEnforcer
}

// NewGate builds the gate from the embedded model and policy. A non-empty
// policyPath overrides the embedded policy so operators can adjust grants
// without a rebuild.
func NewGate(policyPath string) (*Gate, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load authorization model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if policyPath != "" {
		if _, err := os.Stat(policyPath); err != nil {
			return nil, fmt.Errorf("policy file %s: %w", policyPath, err)
		}
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(policyPath))
		if err != nil {
			return nil, fmt.Errorf("failed to create enforcer: %w", err)
		}
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err != nil {
			return nil, fmt.Errorf("failed to create enforcer: %w", err)
		}
		if err := loadEmbeddedPolicy(enforcer, embeddedPolicy); err != nil {
			return nil, err
		}
	}

	return &Gate{enforcer: enforcer}, nil
}

// loadEmbeddedPolicy parses the embedded policy CSV into the enforcer.
func loadEmbeddedPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 3 || strings.TrimSpace(parts[0]) != "p" {
			continue
		}
		role := strings.TrimSpace(parts[1])
		perm := strings.TrimSpace(parts[2])
		if _, err := enforcer.AddPolicy(role, perm); err != nil {
			return fmt.Errorf("failed to add policy %s/%s: %w", role, perm, err)
		}
	}
	return nil
}

// HasPermission reports whether the principal's role grants the permission.
func (g *Gate) HasPermission(principal *models.Principal, permission string) (bool, error) {
	if principal == nil {
		return false, nil
	}
	allowed, err := g.enforcer.Enforce(principal.Role, permission)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	return allowed, nil
}

// RequireRole fails with ErrForbidden unless the principal holds exactly
// the given role.
func (g *Gate) RequireRole(principal *models.Principal, role string) error {
	if principal == nil || principal.Role != role {
		return fmt.Errorf("%w: role %s required", ErrForbidden, role)
	}
	return nil
}

// RequirePermission fails with ErrForbidden unless the principal's role
// grants the permission.
func (g *Gate) RequirePermission(principal *models.Principal, permission string) error {
	allowed, err := g.HasPermission(principal, permission)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%w: permission %s required", ErrForbidden, permission)
	}
	return nil
}

// PermissionsForRole returns the permissions granted to a role.
func (g *Gate) PermissionsForRole(role string) ([]string, error) {
	rows, err := g.enforcer.GetFilteredPolicy(0, role)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy: %w", err)
	}
	perms := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) >= 2 {
			perms = append(perms, row[1])
		}
	}
	return perms, nil
}

// Close releases enforcer resources.
func (g *Gate) Close() {
	g.enforcer.StopAutoLoadPolicy()
}
