// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

// Package supervisor builds the suture service tree: an api layer holding
// the HTTP server and a maintenance layer holding background sweeps.
package supervisor

import (
	"context"
	"net/http"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/taskvault/taskvault/internal/audit"
	"github.com/taskvault/taskvault/internal/config"
	"github.com/taskvault/taskvault/internal/logging"
)

// Tree is the root supervisor plus its layers.
type Tree struct {
	root *suture.Supervisor
}

// New builds the service tree. The audit sweeper is only attached when
// retention is enabled.
func New(cfg *config.Config, handler http.Handler, auditStore audit.Store) *Tree {
	hook := (&sutureslog.Handler{Logger: logging.NewSlogLogger()}).MustHook()

	root := suture.New("taskvault", suture.Spec{
		EventHook: hook,
	})

	// Children inherit the root's event hook when added.
	apiLayer := suture.New("api", suture.Spec{})
	apiLayer.Add(NewHTTPService(cfg.Server, handler))
	root.Add(apiLayer)

	if cfg.Audit.RetentionDays > 0 {
		maintenance := suture.New("maintenance", suture.Spec{})
		maintenance.Add(NewAuditSweeper(auditStore, cfg.Audit))
		root.Add(maintenance)
	}

	return &Tree{root: root}
}

// Serve runs the tree until ctx is canceled or a service fails terminally.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}
