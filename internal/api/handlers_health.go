// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/taskvault/taskvault/internal/database"
)

type healthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Store   string `json:"store"`
	Version string `json:"version,omitempty"`
}

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Health handles GET /api/health. The store check performs a read of a
// known-missing key so it exercises the full transaction path.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		Uptime:  time.Since(h.startedAt).Round(time.Second).String(),
		Store:   "ok",
		Version: Version,
	}

	status := http.StatusOK
	if _, err := h.users.GetByID("healthcheck"); err != nil && !errors.Is(err, database.ErrNotFound) {
		resp.Status = "degraded"
		resp.Store = err.Error()
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, resp)
}
