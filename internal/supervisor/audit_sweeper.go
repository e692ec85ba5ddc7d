// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

package supervisor

import (
	"context"
	"time"

	"github.com/taskvault/taskvault/internal/audit"
	"github.com/taskvault/taskvault/internal/config"
	"github.com/taskvault/taskvault/internal/logging"
)

// AuditSweeper periodically deletes audit entries older than the
// configured retention window. Only run when retention is enabled; the
// trail is append-only otherwise.
type AuditSweeper struct {
	store    audit.Store
	interval time.Duration
	maxAge   time.Duration
}

// NewAuditSweeper creates the sweeper for cfg.
func NewAuditSweeper(store audit.Store, cfg config.AuditConfig) *AuditSweeper {
	return &AuditSweeper{
		store:    store,
		interval: cfg.CleanupInterval,
		maxAge:   time.Duration(cfg.RetentionDays) * 24 * time.Hour,
	}
}

// Serve implements suture.Service.
func (s *AuditSweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			cutoff := time.Now().Add(-s.maxAge)
			deleted, err := s.store.DeleteOlderThan(cutoff)
			if err != nil {
				logging.Error().Err(err).Msg("audit retention sweep failed")
				continue
			}
			if deleted > 0 {
				logging.Info().
					Int("deleted", deleted).
					Time("cutoff", cutoff).
					Msg("audit retention sweep")
			}
		}
	}
}

func (s *AuditSweeper) String() string { return "audit-sweeper" }
