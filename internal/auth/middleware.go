// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

package auth

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/taskvault/taskvault/internal/logging"
	"github.com/taskvault/taskvault/internal/models"
)

type contextKey string

// userContextKey carries the authenticated *models.User through a request.
const userContextKey contextKey = "auth_user"

// UserLoader fetches a user account by id. Satisfied by database.UserStore.
type UserLoader interface {
	GetByID(id string) (*models.User, error)
}

// UserFromContext returns the authenticated user stored by Authenticate,
// or nil when the request carries no authenticated identity.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// ContextWithUser returns a child context carrying user. Used by tests and
// by the middleware itself.
func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// Authenticate validates the Authorization bearer token, loads the account
// it names, and rejects requests from deactivated or deleted accounts. The
// account state is checked on every request so that deactivation takes
// effect immediately, not at token expiry.
func Authenticate(tm *TokenManager, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "Not authorized, no token")
				return
			}

			claims, err := tm.Validate(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}

			user, err := users.GetByID(claims.UserID)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}
			if !user.IsActive {
				writeAuthError(w, http.StatusUnauthorized, "Account is deactivated")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

// RequireAdmin rejects requests whose authenticated user is not an admin.
// Must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil || !user.IsAdmin {
			writeAuthError(w, http.StatusForbidden, "Access denied: Admins only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"message": message}); err != nil {
		logging.Error().Err(err).Msg("write auth error response")
	}
}

// LoginLimiter throttles login attempts per client IP with token buckets.
// Stale per-IP buckets are evicted by a background sweep.
type LoginLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	window    time.Duration
	lastSweep time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginLimiter allows maxAttempts per window for each client IP.
func NewLoginLimiter(maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		visitors:  make(map[string]*visitor),
		limit:     rate.Every(window / time.Duration(maxAttempts)),
		burst:     maxAttempts,
		window:    window,
		lastSweep: time.Now(),
	}
}

// Middleware returns the HTTP middleware enforcing the limit.
func (ll *LoginLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ll.allow(clientIP(r)) {
			writeAuthError(w, http.StatusTooManyRequests, "Too many login attempts, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (ll *LoginLimiter) allow(ip string) bool {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	now := time.Now()
	if now.Sub(ll.lastSweep) > ll.window {
		ll.sweepLocked(now)
	}

	v, ok := ll.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(ll.limit, ll.burst)}
		ll.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.Allow()
}

// sweepLocked drops visitors idle for more than two windows.
// Called with ll.mu held.
func (ll *LoginLimiter) sweepLocked(now time.Time) {
	cutoff := now.Add(-2 * ll.window)
	for ip, v := range ll.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(ll.visitors, ip)
		}
	}
	ll.lastSweep = now
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
