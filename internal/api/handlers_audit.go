// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taskvault/taskvault/internal/audit"
	"github.com/taskvault/taskvault/internal/database"
)

// ListAuditLogs handles GET /api/audit (admin). Entries are newest first;
// an optional ?limit=N caps the result.
func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.auditStore.ListAll(limitParam(r))
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}
	h.respondAuditEntries(w, r, entries)
}

// ListAuditLogsByUser handles GET /api/audit/user/{userId} (admin).
func (h *Handler) ListAuditLogsByUser(w http.ResponseWriter, r *http.Request) {
	entries, err := h.auditStore.ListByActor(chi.URLParam(r, "userId"), limitParam(r))
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}
	h.respondAuditEntries(w, r, entries)
}

// ListAuditLogsByResource handles GET /api/audit/resource/{type}/{id} (admin).
func (h *Handler) ListAuditLogsByResource(w http.ResponseWriter, r *http.Request) {
	resourceType := audit.ResourceType(chi.URLParam(r, "type"))
	entries, err := h.auditStore.ListByResource(resourceType, chi.URLParam(r, "id"), limitParam(r))
	if err != nil {
		if errors.Is(err, audit.ErrInvalidResourceType) {
			respondError(w, http.StatusBadRequest, "Invalid resource type")
			return
		}
		h.respondInternal(w, r, err)
		return
	}
	h.respondAuditEntries(w, r, entries)
}

// respondAuditEntries expands each entry's actor reference into name and
// email. Actors deleted from the store are left as a bare id-only ref.
func (h *Handler) respondAuditEntries(w http.ResponseWriter, r *http.Request, entries []*audit.Entry) {
	actors := make(map[string]*audit.Actor)
	result := make([]audit.EntryWithActor, 0, len(entries))
	for _, e := range entries {
		actor, ok := actors[e.UserID]
		if !ok {
			user, err := h.users.GetByID(e.UserID)
			switch {
			case err == nil:
				actor = &audit.Actor{ID: user.ID, Name: user.Name, Email: user.Email}
			case errors.Is(err, database.ErrNotFound):
				actor = &audit.Actor{ID: e.UserID}
			default:
				h.respondInternal(w, r, err)
				return
			}
			actors[e.UserID] = actor
		}

		result = append(result, audit.EntryWithActor{
			ID:           e.ID,
			Actor:        actor,
			Action:       e.Action,
			ResourceType: e.ResourceType,
			ResourceID:   e.ResourceID,
			Details:      e.Details,
			IPAddress:    e.IPAddress,
			CreatedAt:    e.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, result)
}

// limitParam parses the optional ?limit query parameter. Absent or
// malformed values mean no limit.
func limitParam(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
