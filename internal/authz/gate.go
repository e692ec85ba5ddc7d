// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

// Package authz decides whether a caller may act on a resource owned by a
// given user. The decision is a pure function of the caller and the owner
// id so that every handler applies identical rules.
package authz

import "github.com/taskvault/taskvault/internal/models"

// Reason explains why a decision denied access.
type Reason int

const (
	// ReasonAllowed marks an allowing decision.
	ReasonAllowed Reason = iota
	// ReasonUnauthenticated denies because no caller identity is present.
	ReasonUnauthenticated
	// ReasonAccountDeactivated denies because the caller account is inactive.
	ReasonAccountDeactivated
	// ReasonNotOwner denies because the caller neither owns the resource
	// nor holds the admin role.
	ReasonNotOwner
)

// Decision is the outcome of an access check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Decide reports whether caller may act on a resource owned by ownerID.
// Admins may act on any resource; everyone else only on their own.
// Deactivated accounts are denied even for their own resources.
func Decide(caller *models.User, ownerID string) Decision {
	if caller == nil {
		return Decision{Allowed: false, Reason: ReasonUnauthenticated}
	}
	if !caller.IsActive {
		return Decision{Allowed: false, Reason: ReasonAccountDeactivated}
	}
	if caller.IsAdmin {
		return Decision{Allowed: true, Reason: ReasonAllowed}
	}
	if caller.ID == ownerID {
		return Decision{Allowed: true, Reason: ReasonAllowed}
	}
	return Decision{Allowed: false, Reason: ReasonNotOwner}
}
