// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskvault/taskvault/internal/audit"
	"github.com/taskvault/taskvault/internal/auth"
	"github.com/taskvault/taskvault/internal/database"
	"github.com/taskvault/taskvault/internal/models"
)

// ListUsers handles GET /api/users (admin).
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}
	summaries := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}
	respondJSON(w, http.StatusOK, summaries)
}

// CreateUser handles POST /api/users (admin).
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())

	var req models.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		IsAdmin:      req.IsAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.users.Create(user); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			respondError(w, http.StatusBadRequest, "User already exists")
			return
		}
		h.respondInternal(w, r, err)
		return
	}

	h.recorder.Record(caller, audit.ResourceUser, user.ID, audit.UserCreateDetails{
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	}, clientIP(r))

	respondJSON(w, http.StatusCreated, user.Summary())
}

// GetUser handles GET /api/admin/users/{userId} (admin).
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUserParam(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, user.Summary())
}

// DeactivateUser handles PUT /api/users/{userId}/deactivate (admin).
func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	user, ok := h.loadUserParam(w, r)
	if !ok {
		return
	}

	user.IsActive = false
	user.UpdatedAt = time.Now().UTC()
	if err := h.users.Update(user); err != nil {
		h.respondInternal(w, r, err)
		return
	}

	h.recorder.Record(caller, audit.ResourceUser, user.ID,
		audit.DeactivateDetails{Name: user.Name, Email: user.Email}, clientIP(r))

	respondJSON(w, http.StatusOK, user.Summary())
}

// ActivateUser handles PUT /api/users/{userId}/activate (admin).
func (h *Handler) ActivateUser(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	user, ok := h.loadUserParam(w, r)
	if !ok {
		return
	}

	user.IsActive = true
	user.UpdatedAt = time.Now().UTC()
	if err := h.users.Update(user); err != nil {
		h.respondInternal(w, r, err)
		return
	}

	h.recorder.Record(caller, audit.ResourceUser, user.ID, audit.ActivateDetails{
		Email:    user.Email,
		IsActive: true,
	}, clientIP(r))

	respondJSON(w, http.StatusOK, user.Summary())
}

func (h *Handler) loadUserParam(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, err := h.users.GetByID(chi.URLParam(r, "userId"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return nil, false
		}
		h.respondInternal(w, r, err)
		return nil, false
	}
	return user, true
}
