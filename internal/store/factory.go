// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lectern-lms/lectern/internal/config"
	"github.com/lectern-lms/lectern/internal/logging"
)

// NewSessionStore selects and constructs the session directory backend from
// configuration. The pool argument may be nil unless the backend is
// "postgres"; config validation enforces that a DSN is present in that case.
func NewSessionStore(ctx context.Context, cfg *config.DatabaseConfig, pool *pgxpool.Pool) (SessionStore, error) {
	switch cfg.SessionStore {
	case config.SessionStoreMemory:
		logging.Info().Msg("using in-memory session store (sessions will not survive restarts)")
		return NewMemorySessionStore(), nil

	case config.SessionStoreBadger:
		logging.Info().Str("path", cfg.SessionStorePath).Msg("using badger session store")
		return NewBadgerSessionStore(cfg.SessionStorePath)

	case config.SessionStorePostgres:
		if pool == nil {
			return nil, fmt.Errorf("postgres session store requires a database pool")
		}
		logging.Info().Msg("using postgres session store")
		return NewPostgresSessionStore(ctx, pool)

	default:
		return nil, fmt.Errorf("unknown session store backend: %q", cfg.SessionStore)
	}
}
