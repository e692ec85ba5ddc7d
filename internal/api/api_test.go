// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/taskvault/taskvault/internal/audit"
	"github.com/taskvault/taskvault/internal/auth"
	"github.com/taskvault/taskvault/internal/config"
	"github.com/taskvault/taskvault/internal/database"
)

// testEnv is a fully wired API over in-memory stores.
type testEnv struct {
	router     http.Handler
	users      *database.UserStore
	tasks      *database.TaskStore
	auditStore *audit.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := testConfig()
	users := database.NewUserStore(db)
	tasks := database.NewTaskStore(db)
	auditStore := audit.NewMemoryStore()
	recorder := audit.NewRecorder(auditStore)
	tokens := auth.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	hasher := auth.NewHasher(4)

	h := New(cfg, users, tasks, auditStore, recorder, tokens, hasher)
	return &testEnv{
		router:     NewRouter(h, tokens, users),
		users:      users,
		tasks:      tasks,
		auditStore: auditStore,
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:        "127.0.0.1",
			Port:        0,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: config.DatabaseConfig{InMemory: true},
		Security: config.SecurityConfig{
			JWTSecret:            "0123456789abcdef0123456789abcdef",
			TokenTTL:             time.Hour,
			BcryptCost:           4,
			RateLimitReqs:        10000,
			RateLimitWindow:      time.Minute,
			LoginRateLimitReqs:   1000,
			LoginRateLimitWindow: time.Minute,
			CORSOrigins:          []string{"*"},
		},
		Logging: config.LoggingConfig{Level: "error", Format: "json"},
		Audit:   config.AuditConfig{CleanupInterval: time.Hour},
	}
}

// do issues a request against the router and decodes the JSON response
// into out when out is non-nil.
func (e *testEnv) do(t *testing.T, method, path, token string, body, out interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "198.51.100.7:4242"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	if out != nil && rr.Code < 300 {
		if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response %q: %v", rr.Body.String(), err)
		}
	}
	return rr
}

// authPayload mirrors the register/login response.
type authPayload struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
	IsActive bool   `json:"isActive"`
	Token    string `json:"token"`
}

// register creates an account through the public endpoint and returns the
// auth payload.
func (e *testEnv) register(t *testing.T, name, email string, isAdmin bool) authPayload {
	t.Helper()

	var resp authPayload
	rr := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name":     name,
		"email":    email,
		"password": "password123",
		"isAdmin":  isAdmin,
	}, &resp)
	if rr.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", email, rr.Code, rr.Body.String())
	}
	if resp.Token == "" {
		t.Fatalf("register %s: empty token", email)
	}
	return resp
}

// createTask creates a task as the given caller and returns its id.
func (e *testEnv) createTask(t *testing.T, token, name, category string, due time.Time) string {
	t.Helper()

	var task struct {
		ID string `json:"_id"`
	}
	rr := e.do(t, http.MethodPost, "/api/tasks", token, map[string]interface{}{
		"name":        name,
		"description": "description for " + name,
		"category":    category,
		"dueDate":     due.Format(time.RFC3339),
	}, &task)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create task %s: status %d, body %s", name, rr.Code, rr.Body.String())
	}
	return task.ID
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rr.Body.String(), err)
	}
	return resp.Message
}
