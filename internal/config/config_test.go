// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package config

import (
	"strings"
	"testing"
	"time"
)

// validConfig returns a config that passes validation; tests mutate it.
func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = strings.Repeat("a", 32)
	cfg.Security.CSRFSecret = strings.Repeat("b", 32)
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults with secrets",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *Config) { c.Security.JWTSecret = "" },
			wantErr: true,
		},
		{
			name:    "jwt secret too short",
			mutate:  func(c *Config) { c.Security.JWTSecret = "short" },
			wantErr: true,
		},
		{
			name:    "jwt secret exactly 31 chars rejected",
			mutate:  func(c *Config) { c.Security.JWTSecret = strings.Repeat("x", 31) },
			wantErr: true,
		},
		{
			name:    "missing csrf secret",
			mutate:  func(c *Config) { c.Security.CSRFSecret = "" },
			wantErr: true,
		},
		{
			name:    "bcrypt cost below minimum",
			mutate:  func(c *Config) { c.Security.BcryptCost = 4 },
			wantErr: true,
		},
		{
			name:    "zero token ttl",
			mutate:  func(c *Config) { c.Security.TokenTTL = 0 },
			wantErr: true,
		},
		{
			name:    "resolver cache ttl above one minute",
			mutate:  func(c *Config) { c.Security.ResolverCacheTTL = 5 * time.Minute },
			wantErr: true,
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
		},
		{
			name:    "unknown session store",
			mutate:  func(c *Config) { c.Database.SessionStore = "redis" },
			wantErr: true,
		},
		{
			name: "postgres store without dsn",
			mutate: func(c *Config) {
				c.Database.SessionStore = "postgres"
				c.Database.PostgresDSN = ""
			},
			wantErr: true,
		},
		{
			name: "badger store without path",
			mutate: func(c *Config) {
				c.Database.SessionStore = "badger"
				c.Database.SessionStorePath = ""
			},
			wantErr: true,
		},
		{
			name: "postgres store with dsn",
			mutate: func(c *Config) {
				c.Database.SessionStore = "postgres"
				c.Database.PostgresDSN = "postgres://lectern@localhost/lectern"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want string
	}{
		{"section prefix", "SECURITY_JWT_SECRET", "security.jwt_secret"},
		{"nested key", "DATABASE_SESSION_STORE", "database.session_store"},
		{"server key", "SERVER_PORT", "server.port"},
		{"legacy alias", "JWT_SECRET", "security.jwt_secret"},
		{"database url alias", "DATABASE_URL", "database.postgres_dsn"},
		{"unknown ignored", "HOME", ""},
		{"unrelated ignored", "PATH", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := envTransform(tt.env); got != tt.want {
				t.Errorf("envTransform(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Security.TokenTTL != 7*24*time.Hour {
		t.Errorf("default token ttl = %s, want 168h", cfg.Security.TokenTTL)
	}
	if cfg.Security.ResolverCacheTTL != 10*time.Second {
		t.Errorf("default resolver cache ttl = %s, want 10s", cfg.Security.ResolverCacheTTL)
	}
	if cfg.Security.BcryptCost != 12 {
		t.Errorf("default bcrypt cost = %d, want 12", cfg.Security.BcryptCost)
	}
	if cfg.Database.SessionStore != "memory" {
		t.Errorf("default session store = %q, want memory", cfg.Database.SessionStore)
	}

	// Defaults alone must not validate: secrets are required.
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() on bare defaults expected error, got nil")
	}
}
