// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taskvault/taskvault/internal/auth"
	"github.com/taskvault/taskvault/internal/logging"
	"github.com/taskvault/taskvault/internal/middleware"
)

// NewRouter assembles the full HTTP surface.
func NewRouter(h *Handler, tm *auth.TokenManager, users auth.UserLoader) http.Handler {
	cfg := h.cfg

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(registry)

	authenticate := auth.Authenticate(tm, users)
	loginLimiter := auth.NewLoginLimiter(
		cfg.Security.LoginRateLimitReqs,
		cfg.Security.LoginRateLimitWindow,
	)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Handler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(cfg.Security.RateLimitReqs, cfg.Security.RateLimitWindow))

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/api/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.With(loginLimiter.Middleware).Post("/login", h.Login)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/profile", h.GetProfile)
				r.Put("/profile", h.UpdateProfile)
			})
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/", h.ListTasks)
			r.Post("/", h.CreateTask)
			r.Get("/due-today", h.DueToday)
			r.Get("/upcoming", h.Upcoming)
			r.Get("/completed-last-week", h.CompletedLastWeek)
			r.Get("/popular-categories", h.PopularCategories)

			r.With(auth.RequireAdmin).Get("/admin/all", h.AdminAllTasks)

			r.Get("/{id}", h.GetTask)
			r.Put("/{id}", h.UpdateTask)
			r.Delete("/{id}", h.DeleteTask)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authenticate, auth.RequireAdmin)

			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Put("/{userId}/deactivate", h.DeactivateUser)
			r.Put("/{userId}/activate", h.ActivateUser)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticate, auth.RequireAdmin)

			r.Get("/user-task-stats", h.UserTaskStats)
			r.Get("/recent-users", h.RecentUsers)
			r.Get("/user-tasks/{userId}", h.UserTasks)
			r.Get("/users/{userId}", h.GetUser)
		})

		r.Route("/audit", func(r chi.Router) {
			r.Use(authenticate, auth.RequireAdmin)

			r.Get("/", h.ListAuditLogs)
			r.Get("/user/{userId}", h.ListAuditLogsByUser)
			r.Get("/resource/{type}/{id}", h.ListAuditLogsByResource)
		})
	})

	return r
}

// requestLogger emits one structured line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		logging.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("remote", r.RemoteAddr).
			Msg("request")
	})
}
