// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/taskvault/taskvault/internal/audit"
	"github.com/taskvault/taskvault/internal/auth"
	"github.com/taskvault/taskvault/internal/database"
	"github.com/taskvault/taskvault/internal/models"
)

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
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

	h.recorder.Record(user, audit.ResourceUser, user.ID,
		audit.RegisterDetails{Name: user.Name, Email: user.Email, IsAdmin: user.IsAdmin}, clientIP(r))

	h.respondWithToken(w, r, http.StatusCreated, user)
}

// Login handles POST /api/auth/login. The active flag is checked before
// the password so a deactivated account is rejected without leaking
// whether the credentials were right, and without a login audit entry.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.respondInternal(w, r, err)
		return
	}

	if !user.IsActive {
		respondError(w, http.StatusUnauthorized, "Account is deactivated")
		return
	}

	if !h.hasher.Match(user.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	h.recorder.Record(user, audit.ResourceUser, user.ID,
		audit.LoginDetails{Email: user.Email}, clientIP(r))

	h.respondWithToken(w, r, http.StatusOK, user)
}

// GetProfile handles GET /api/auth/profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	respondJSON(w, http.StatusOK, user.Summary())
}

// UpdateProfile handles PUT /api/auth/profile. Empty fields keep their
// current values. A fresh token is returned so a changed identity is
// reflected immediately.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req models.UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	var updated []string
	if req.Name != "" {
		user.Name = req.Name
		updated = append(updated, "name")
	}
	if req.Email != "" {
		user.Email = req.Email
		updated = append(updated, "email")
	}
	if req.Password != "" {
		hash, err := h.hasher.Hash(req.Password)
		if err != nil {
			h.respondInternal(w, r, err)
			return
		}
		user.PasswordHash = hash
		updated = append(updated, "password")
	}
	user.UpdatedAt = time.Now().UTC()

	if err := h.users.Update(user); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			respondError(w, http.StatusBadRequest, "Email already in use")
			return
		}
		h.respondInternal(w, r, err)
		return
	}

	h.recorder.Record(user, audit.ResourceUser, user.ID,
		audit.ProfileUpdateDetails{UpdatedFields: updated}, clientIP(r))

	h.respondWithToken(w, r, http.StatusOK, user)
}

func (h *Handler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	token, err := h.tokens.Generate(user.ID, user.IsAdmin)
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}
	respondJSON(w, status, models.AuthResponse{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
		IsActive: user.IsActive,
		Token:    token,
	})
}
