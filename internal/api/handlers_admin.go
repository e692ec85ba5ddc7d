// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

package api

import (
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskvault/taskvault/internal/models"
)

// UserTaskStats handles GET /api/admin/user-task-stats: per-user task
// totals, status breakdown and completion rate as a rounded percentage.
func (h *Handler) UserTaskStats(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}
	tasks, err := h.tasks.ListAll()
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	byOwner := make(map[string][]*models.Task)
	for _, t := range tasks {
		byOwner[t.UserID] = append(byOwner[t.UserID], t)
	}

	stats := make([]models.UserTaskStats, 0, len(users))
	for _, u := range users {
		s := models.UserTaskStats{
			UserID:   u.ID,
			UserName: u.Name,
			IsActive: u.IsActive,
		}
		for _, t := range byOwner[u.ID] {
			s.TotalTasks++
			switch t.Status {
			case models.StatusCompleted:
				s.CompletedTasks++
			case models.StatusInProgress:
				s.InProgressTasks++
			case models.StatusPending:
				s.PendingTasks++
			}
		}
		if s.TotalTasks > 0 {
			s.CompletionRate = int(math.Round(float64(s.CompletedTasks) / float64(s.TotalTasks) * 100))
		}
		stats = append(stats, s)
	}
	respondJSON(w, http.StatusOK, stats)
}

// RecentUsers handles GET /api/admin/recent-users: the five newest
// accounts, newest first.
func (h *Handler) RecentUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListRecent(5)
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

// UserTasks handles GET /api/admin/user-tasks/{userId}: every task owned
// by one user.
func (h *Handler) UserTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListByOwner(chi.URLParam(r, "userId"))
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, taskSlice(tasks))
}
