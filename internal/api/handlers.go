// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

package api

import (
	"time"

	"github.com/taskvault/taskvault/internal/audit"
	"github.com/taskvault/taskvault/internal/auth"
	"github.com/taskvault/taskvault/internal/config"
	"github.com/taskvault/taskvault/internal/database"
)

// Handler bundles the collaborators every endpoint needs.
type Handler struct {
	cfg        *config.Config
	users      *database.UserStore
	tasks      *database.TaskStore
	auditStore audit.Store
	recorder   *audit.Recorder
	tokens     *auth.TokenManager
	hasher     *auth.Hasher
	startedAt  time.Time
}

// New creates the API handler set.
func New(
	cfg *config.Config,
	users *database.UserStore,
	tasks *database.TaskStore,
	auditStore audit.Store,
	recorder *audit.Recorder,
	tokens *auth.TokenManager,
	hasher *auth.Hasher,
) *Handler {
	return &Handler{
		cfg:        cfg,
		users:      users,
		tasks:      tasks,
		auditStore: auditStore,
		recorder:   recorder,
		tokens:     tokens,
		hasher:     hasher,
		startedAt:  time.Now(),
	}
}
