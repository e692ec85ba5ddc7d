// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

// Package audit provides the append-only trail of state-changing and
// authentication actions. Entries are immutable once written and are always
// listed newest first.
package audit

import (
	"errors"
	"time"

	"github.com/goccy/go-json"
)

// Action identifies what an entry records.
type Action string

// The closed set of auditable actions.
const (
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionLogin      Action = "login"
	ActionLogout     Action = "logout"
	ActionRegister   Action = "register"
	ActionDeactivate Action = "deactivate"
)

// ResourceType identifies what kind of record an entry refers to.
type ResourceType string

// The closed set of auditable resource types.
const (
	ResourceUser ResourceType = "user"
	ResourceTask ResourceType = "task"
)

// ErrInvalidResourceType is returned for lookups with an unknown type.
var ErrInvalidResourceType = errors.New("invalid resource type")

// Entry is one immutable audit record.
type Entry struct {
	ID           string          `json:"_id"`
	UserID       string          `json:"user"`
	Action       Action          `json:"action"`
	ResourceType ResourceType    `json:"resourceType"`
	ResourceID   string          `json:"resourceId"`
	Details      json.RawMessage `json:"details,omitempty"`
	IPAddress    string          `json:"ipAddress,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Actor is the denormalized identity attached to entries on read.
type Actor struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// EntryWithActor is the read representation, with the actor reference
// expanded to name and email.
type EntryWithActor struct {
	ID           string          `json:"_id"`
	Actor        *Actor          `json:"user"`
	Action       Action          `json:"action"`
	ResourceType ResourceType    `json:"resourceType"`
	ResourceID   string          `json:"resourceId"`
	Details      json.RawMessage `json:"details,omitempty"`
	IPAddress    string          `json:"ipAddress,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Details is the per-action payload attached to an entry. Each variant
// declares its own field set and names the action it belongs to, so a
// payload can never be recorded under the wrong action.
type Details interface {
	AuditAction() Action
}

// RegisterDetails accompanies a registration entry.
type RegisterDetails struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// AuditAction implements Details.
func (RegisterDetails) AuditAction() Action { return ActionRegister }

// LoginDetails accompanies a login entry.
type LoginDetails struct {
	Email string `json:"email"`
}

// AuditAction implements Details.
func (LoginDetails) AuditAction() Action { return ActionLogin }

// ProfileUpdateDetails accompanies a profile update entry.
type ProfileUpdateDetails struct {
	UpdatedFields []string `json:"updatedFields"`
}

// AuditAction implements Details.
func (ProfileUpdateDetails) AuditAction() Action { return ActionUpdate }

// TaskCreateDetails accompanies a task creation entry.
type TaskCreateDetails struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Status   string `json:"status"`
}

// AuditAction implements Details.
func (TaskCreateDetails) AuditAction() Action { return ActionCreate }

// TaskUpdateDetails accompanies a task update entry.
type TaskUpdateDetails struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// AuditAction implements Details.
func (TaskUpdateDetails) AuditAction() Action { return ActionUpdate }

// TaskDeleteDetails accompanies a task deletion entry.
type TaskDeleteDetails struct {
	Name string `json:"name"`
}

// AuditAction implements Details.
func (TaskDeleteDetails) AuditAction() Action { return ActionDelete }

// UserCreateDetails accompanies an admin-initiated user creation entry.
type UserCreateDetails struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// AuditAction implements Details.
func (UserCreateDetails) AuditAction() Action { return ActionCreate }

// DeactivateDetails accompanies an account deactivation entry.
type DeactivateDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuditAction implements Details.
func (DeactivateDetails) AuditAction() Action { return ActionDeactivate }

// ActivateDetails accompanies an account reactivation entry. Reactivation
// is recorded as an update with the new active flag.
type ActivateDetails struct {
	Email    string `json:"email"`
	IsActive bool   `json:"isActive"`
}

// AuditAction implements Details.
func (ActivateDetails) AuditAction() Action { return ActionUpdate }

// Store is the persistence contract for audit entries. All listings return
// entries sorted by creation time descending. A limit of zero means no limit.
type Store interface {
	Insert(entry *Entry) error
	ListAll(limit int) ([]*Entry, error)
	ListByActor(userID string, limit int) ([]*Entry, error)
	ListByResource(resourceType ResourceType, resourceID string, limit int) ([]*Entry, error)
	DeleteOlderThan(cutoff time.Time) (int, error)
}
