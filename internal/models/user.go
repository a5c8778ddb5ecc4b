// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

// Package models defines the core identity types shared across Lectern.
package models

import (
	"strings"
	"time"
)

// Roles assigned to LMS accounts. Role is immutable except through an
// administrative role-change operation (owned by the domain modules).
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// WireRole converts an internal role to its API wire form (upper-case).
func WireRole(role string) string {
	return strings.ToUpper(role)
}

// User is a stored LMS account. The authenticated view of a User resolved
// for a request is its Principal: accounts are never deleted, only
// deactivated, and a deactivated account resolves to unauthenticated.
type User struct {
	// ID is an opaque stable identifier (UUID), never reused.
	ID string `json:"id"`

	// Email is the unique login identifier, stored lowercased.
	Email string `json:"email"`

	// DisplayName is the human-readable name shown in the UI.
	DisplayName string `json:"display_name"`

	// Role is one of RoleStudent, RoleTeacher, RoleAdmin.
	Role string `json:"role"`

	// Active gates authentication. Deactivation is the only removal path.
	Active bool `json:"active"`

	// AvatarURL optionally references an avatar in external object storage.
	AvatarURL string `json:"avatar_url,omitempty"`

	// PasswordHash is the bcrypt hash of the account password.
	// Never serialized.
	PasswordHash string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Principal is the authenticated view of a user attached to a request.
// Role keeps the internal lower-case form; API responses apply WireRole
// when serializing (STUDENT, TEACHER, ADMIN).
type Principal struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// ToPrincipal projects the user onto its authenticated view.
func (u *User) ToPrincipal() *Principal {
	return &Principal{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		AvatarURL:   u.AvatarURL,
	}
}
