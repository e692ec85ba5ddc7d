// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

// Command server runs the TaskVault API: configuration load, store setup,
// HTTP surface and the supervised service tree.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/taskvault/taskvault/internal/api"
	"github.com/taskvault/taskvault/internal/audit"
	"github.com/taskvault/taskvault/internal/auth"
	"github.com/taskvault/taskvault/internal/config"
	"github.com/taskvault/taskvault/internal/database"
	"github.com/taskvault/taskvault/internal/logging"
	"github.com/taskvault/taskvault/internal/supervisor"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", api.Version).
		Str("environment", cfg.Server.Environment).
		Msg("starting taskvault")

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("close database")
		}
	}()

	users := database.NewUserStore(db)
	tasks := database.NewTaskStore(db)
	auditStore := audit.NewBadgerStore(db)
	recorder := audit.NewRecorder(auditStore)

	tokens := auth.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	hasher := auth.NewHasher(cfg.Security.BcryptCost)

	handler := api.New(cfg, users, tasks, auditStore, recorder, tokens, hasher)
	router := api.NewRouter(handler, tokens, users)

	tree := supervisor.New(cfg, router, auditStore)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logging.Info().Msg("shutdown complete")
	return nil
}
