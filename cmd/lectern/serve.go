// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/lectern-lms/lectern/internal/api"
	"github.com/lectern-lms/lectern/internal/auth"
	"github.com/lectern-lms/lectern/internal/authz"
	"github.com/lectern-lms/lectern/internal/config"
	"github.com/lectern-lms/lectern/internal/logging"
	"github.com/lectern-lms/lectern/internal/store"
	"github.com/lectern-lms/lectern/internal/token"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var policyPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Lectern HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(policyPath)
		},
	}
	cmd.Flags().StringVar(&policyPath, "policy", "", "override the embedded authorization policy file")
	return cmd
}

func runServe(policyPath string) error {
	// A bad or missing secret must stop the process here; there is no
	// fallback configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Msg("starting lectern")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	var users store.UserStore
	if cfg.Database.PostgresDSN != "" {
		pool, err = store.NewPool(ctx, cfg.Database.PostgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		users = store.NewPostgresUserStore(pool)
	} else {
		// No database configured: development mode with an empty user set.
		logging.Warn().Msg("no postgres DSN configured, using empty in-memory user store")
		users = store.NewMemoryUserStore()
	}

	sessions, err := store.NewSessionStore(ctx, &cfg.Database, pool)
	if err != nil {
		return err
	}
	defer sessions.Close()

	codec, err := token.NewCodec(cfg.Security.JWTSecret)
	if err != nil {
		return err
	}
	hasher, err := auth.NewHasher(cfg.Security.BcryptCost)
	if err != nil {
		return err
	}
	csrf, err := auth.NewCSRFGuard(cfg.Security.CSRFSecret, cfg.IsProduction(), cfg.Security.WebhookExemptPrefixes)
	if err != nil {
		return err
	}
	gate, err := authz.NewGate(policyPath)
	if err != nil {
		return err
	}
	defer gate.Close()

	cookies := auth.NewCookieWriter(cfg.IsProduction(), cfg.Security.TokenTTL)
	service := auth.NewService(users, sessions, codec, hasher, cfg.Security.TokenTTL)
	resolver := auth.NewResolver(codec, sessions, users, cfg.Security.ResolverCacheTTL)
	limiter := auth.NewLoginLimiter(cfg.Security.LoginMaxAttempts, cfg.Security.LoginWindow)
	edge := auth.NewEdge(resolver, cookies, cfg.Security.WebhookExemptPrefixes)
	handler := api.NewHandler(service, resolver, csrf, cookies, limiter)

	service.StartSweeper(ctx, cfg.Database.SessionSweepInterval)
	resolver.StartCacheCleanup(ctx, cfg.Security.ResolverCacheTTL)
	limiter.StartCleanup(ctx, cfg.Security.LoginWindow)

	router := api.NewRouter(cfg, api.RouterDeps{
		Handler: handler,
		Edge:    edge,
		CSRF:    csrf,
		Gate:    gate,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	logging.Info().Msg("stopped")
	return nil
}
