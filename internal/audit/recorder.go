// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

package audit

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/taskvault/taskvault/internal/logging"
	"github.com/taskvault/taskvault/internal/models"
)

// Recorder appends audit entries synchronously. A persistence failure is
// logged and swallowed so it never turns a successful mutation into a
// caller-visible error.
type Recorder struct {
	store Store
}

// NewRecorder creates a Recorder writing to store.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Record appends one entry for actor acting on the named resource. The
// action is taken from the details variant. Returns the entry that was
// written, or nil when persistence failed.
func (r *Recorder) Record(actor *models.User, resourceType ResourceType, resourceID string, details Details, ipAddress string) *Entry {
	payload, err := json.Marshal(details)
	if err != nil {
		logging.Error().Err(err).
			Str("action", string(details.AuditAction())).
			Msg("marshal audit details")
		payload = nil
	}

	entry := &Entry{
		ID:           uuid.NewString(),
		UserID:       actor.ID,
		Action:       details.AuditAction(),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      payload,
		IPAddress:    ipAddress,
		CreatedAt:    time.Now().UTC(),
	}

	if err := r.store.Insert(entry); err != nil {
		logging.Error().Err(err).
			Str("action", string(entry.Action)).
			Str("resource_type", string(resourceType)).
			Str("resource_id", resourceID).
			Msg("audit entry not persisted")
		return nil
	}
	return entry
}
