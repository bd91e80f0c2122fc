// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

// Package main is the entry point for the kuppi-admin server.
//
// Kuppi Admin is the moderation back office for a university tutorial
// ("kuppi") sharing platform. It exposes a gated REST API over the
// academic catalog (faculties, departments, semesters, modules and
// their curriculum assignments), the kuppi video library, user
// approvals, the faculty hierarchy document and the dashboard stats.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered Koanf v2 loading (defaults, YAML, env)
//  2. Logging: zerolog per the logging section
//  3. Store: DuckDB database with embedded schema
//  4. Gate: fixed-window rate limiter, admin token verification
//     against the identity provider's JWKS, payload validation
//  5. Audit pipeline: watermill bus plus a supervised writer
//  6. HTTP server: chi router under the supervisor tree
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the server stops
// accepting connections, in-flight requests get the configured drain
// timeout, then the supervisor tree winds down the audit writer and
// sweeper.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kuppihub/kuppi-admin/internal/api"
	"github.com/kuppihub/kuppi-admin/internal/audit"
	"github.com/kuppihub/kuppi-admin/internal/auth"
	"github.com/kuppihub/kuppi-admin/internal/config"
	"github.com/kuppihub/kuppi-admin/internal/gate"
	"github.com/kuppihub/kuppi-admin/internal/logging"
	"github.com/kuppihub/kuppi-admin/internal/ratelimit"
	"github.com/kuppihub/kuppi-admin/internal/store"
	"github.com/kuppihub/kuppi-admin/internal/supervisor"
	"github.com/kuppihub/kuppi-admin/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Int("admin_emails", len(cfg.Auth.AdminEmails)).
		Bool("audit", cfg.Audit.Enabled).
		Msg("Configuration loaded")

	db, err := store.New(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	// Audit pipeline: recorder publishes to the bus, the supervised
	// writer drains it into the audit_events table.
	var recorder audit.Recorder = audit.NopRecorder{}
	if cfg.Audit.Enabled {
		bus := audit.NewBus()
		defer func() {
			if err := bus.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing audit bus")
			}
		}()
		recorder = audit.NewBusRecorder(bus)
		tree.AddDataService(audit.NewWriter(bus, db))
		logging.Info().Msg("Audit pipeline enabled")
	} else {
		logging.Warn().Msg("Audit pipeline disabled (AUDIT_ENABLED=false)")
	}

	// Gate: limiter and authenticator.
	var limiter *ratelimit.Limiter
	if !cfg.RateLimit.Disabled {
		limiter = ratelimit.New(cfg.RateLimit.Window)
		tree.AddDataService(services.NewSweeperService(limiter, cfg.RateLimit.SweepInterval))
	} else {
		logging.Warn().Msg("Rate limiting disabled (RATE_LIMIT_DISABLED=true)")
	}

	var authenticator *auth.Authenticator
	if !cfg.Auth.Disabled {
		verifier := auth.NewIdentityVerifier(auth.IdentityConfig{
			ProjectID: cfg.Auth.ProjectID,
			JWKSURI:   cfg.Auth.JWKSURI,
			KeyTTL:    cfg.Auth.KeyTTL,
		})
		authenticator = auth.NewAuthenticator(verifier, auth.NewAllowList(cfg.Auth.AdminEmails))
		logging.Info().Str("project_id", cfg.Auth.ProjectID).Msg("Admin authentication enabled")
	} else {
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: Authentication is DISABLED")
		logging.Warn().Msg("  Every endpoint is open. Local development only.")
		logging.Warn().Msg("============================================================")
	}

	g := gate.New(gate.Config{
		Limiter:           limiter,
		Auth:              authenticator,
		Recorder:          recorder,
		MaxBodyBytes:      cfg.Gate.MaxBodyBytes,
		RateLimitDisabled: cfg.RateLimit.Disabled,
		AuthDisabled:      cfg.Auth.Disabled,
	})
	logging.Info().Str("protections", g.Describe()).Msg("Request gate ready")

	handler := api.NewHandler(db, g)
	router := handler.Routes(api.RouterConfig{
		CORSOrigins:     cfg.Server.CORSOrigins,
		GlobalRateLimit: cfg.Server.GlobalRateLimit,
		ReadQuota:       cfg.RateLimit.ReadQuota,
		WriteQuota:      cfg.RateLimit.WriteQuota,
		DeleteQuota:     cfg.RateLimit.DeleteQuota,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server added to supervisor tree")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	logging.Info().Msg("Server stopped gracefully")
}
