// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/lectern/config.yaml",
	"/etc/lectern/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// configSections are the recognized top-level config keys for the
// environment variable transform (SECURITY_JWT_SECRET -> security.jwt_secret).
var configSections = []string{"server", "security", "database", "logging"}

// envAliases maps bare legacy environment variables to config paths.
var envAliases = map[string]string{
	"JWT_SECRET":   "security.jwt_secret",
	"CSRF_SECRET":  "security.csrf_secret",
	"DATABASE_URL": "database.postgres_dsn",
	"LOG_LEVEL":    "logging.level",
	"LOG_FORMAT":   "logging.format",
	"PORT":         "server.port",
}

// defaultConfig returns a Config with all defaults applied.
// Defaults are overridden by the config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8873,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Security: SecurityConfig{
			JWTSecret:             "",
			CSRFSecret:            "",
			TokenTTL:              7 * 24 * time.Hour,
			ResolverCacheTTL:      10 * time.Second,
			BcryptCost:            12,
			LoginMaxAttempts:      5,
			LoginWindow:           time.Minute,
			RateLimitReqs:         100,
			RateLimitWindow:       time.Minute,
			RateLimitDisabled:     false,
			CORSOrigins:           []string{"*"},
			WebhookExemptPrefixes: []string{"/api/webhooks/"},
		},
		Database: DatabaseConfig{
			PostgresDSN:          "",
			SessionStore:         "memory",
			SessionStorePath:     "/data/lectern/sessions",
			SessionSweepInterval: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// envTransform maps environment variable names to koanf paths.
// SECURITY_JWT_SECRET -> security.jwt_secret. Variables outside the known
// sections and aliases are ignored so unrelated env noise cannot leak in.
func envTransform(name string) string {
	if path, ok := envAliases[name]; ok {
		return path
	}

	lower := strings.ToLower(name)
	for _, section := range configSections {
		prefix := section + "_"
		if strings.HasPrefix(lower, prefix) {
			return section + "." + strings.TrimPrefix(lower, prefix)
		}
	}
	return ""
}

// findConfigFile returns the first config file found, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
