// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

// Package api implements the REST surface: request decoding, handler
// orchestration and response shaping. Handlers stay thin and delegate to
// the stores, the authorization gate and the audit recorder.
package api

import (
	"net"
	"net/http"
	"runtime/debug"

	"github.com/goccy/go-json"

	"github.com/taskvault/taskvault/internal/logging"
	"github.com/taskvault/taskvault/internal/validation"
)

const maxBodyBytes = 1 << 20 // 1 MiB request body cap

// errorResponse is the uniform error envelope.
type errorResponse struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Message: message})
}

// respondInternal logs err and returns a 500. Outside production the
// response carries the stack to ease debugging.
func (h *Handler) respondInternal(w http.ResponseWriter, r *http.Request, err error) {
	logging.Error().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("internal error")

	resp := errorResponse{Message: "Server Error"}
	if !h.cfg.IsProduction() {
		resp.Message = err.Error()
		resp.Stack = string(debug.Stack())
	}
	respondJSON(w, http.StatusInternalServerError, resp)
}

// decodeAndValidate decodes the JSON body into dst and validates it.
// On failure it writes the 400 response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		respondError(w, http.StatusBadRequest, verr.Error())
		return false
	}
	return true
}

// clientIP extracts the caller address for audit entries. RealIP middleware
// has already folded X-Forwarded-For into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
