// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/lectern-lms/lectern/internal/config"
	"github.com/lectern-lms/lectern/internal/logging"
	"github.com/lectern-lms/lectern/internal/store"
)

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage the session directory",
	}
	cmd.AddCommand(sessionsWipeCmd())
	return cmd
}

// sessionsWipeCmd is the operator bulk-invalidation command: it deletes
// every session record, forcing all users to log in again. Used after a
// suspected credential or token leak.
func sessionsWipeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wipe",
		Short: "Delete every session, logging out all users",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

			ctx := cmd.Context()

			var pool *pgxpool.Pool
			if cfg.Database.SessionStore == config.SessionStorePostgres {
				pool, err = store.NewPool(ctx, cfg.Database.PostgresDSN)
				if err != nil {
					return err
				}
				defer pool.Close()
			}

			sessions, err := store.NewSessionStore(ctx, &cfg.Database, pool)
			if err != nil {
				return err
			}
			defer sessions.Close()

			count, err := wipeSessions(ctx, sessions)
			if err != nil {
				return err
			}
			fmt.Printf("wiped %d session(s)\n", count)
			return nil
		},
	}
}

func wipeSessions(ctx context.Context, sessions store.SessionStore) (int, error) {
	count, err := sessions.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to wipe sessions: %w", err)
	}
	return count, nil
}
