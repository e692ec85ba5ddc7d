// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

package api

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskvault/taskvault/internal/audit"
	"github.com/taskvault/taskvault/internal/auth"
	"github.com/taskvault/taskvault/internal/authz"
	"github.com/taskvault/taskvault/internal/database"
	"github.com/taskvault/taskvault/internal/models"
)

// CreateTask handles POST /api/tasks.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())

	var req models.CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	status := req.Status
	if status == "" {
		status = models.StatusPending
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:          uuid.NewString(),
		UserID:      caller.ID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		DueDate:     req.DueDate,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.tasks.Create(task); err != nil {
		h.respondInternal(w, r, err)
		return
	}

	h.recorder.Record(caller, audit.ResourceTask, task.ID, audit.TaskCreateDetails{
		Name:     task.Name,
		Category: task.Category,
		Status:   string(task.Status),
	}, clientIP(r))

	respondJSON(w, http.StatusCreated, task)
}

// ListTasks handles GET /api/tasks. Every caller, admins included, sees
// only their own tasks here; the admin view lives under /tasks/admin/all.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	tasks, err := h.tasks.ListByOwner(caller.ID)
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, taskSlice(tasks))
}

// GetTask handles GET /api/tasks/{id}.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadAuthorizedTask(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// UpdateTask handles PUT /api/tasks/{id}. Empty request fields keep the
// existing values. The owner is never changed.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	task, ok := h.loadAuthorizedTask(w, r)
	if !ok {
		return
	}

	var req models.UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if req.Name != "" {
		task.Name = req.Name
	}
	if req.Description != "" {
		task.Description = req.Description
	}
	if req.Category != "" {
		task.Category = req.Category
	}
	if !req.DueDate.IsZero() {
		task.DueDate = req.DueDate
	}
	if req.Status != "" {
		task.Status = req.Status
	}
	task.UpdatedAt = time.Now().UTC()

	if err := h.tasks.Update(task); err != nil {
		h.respondInternal(w, r, err)
		return
	}

	h.recorder.Record(caller, audit.ResourceTask, task.ID, audit.TaskUpdateDetails{
		Name:   task.Name,
		Status: string(task.Status),
	}, clientIP(r))

	respondJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	task, ok := h.loadAuthorizedTask(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(task.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Task not found")
			return
		}
		h.respondInternal(w, r, err)
		return
	}

	h.recorder.Record(caller, audit.ResourceTask, task.ID,
		audit.TaskDeleteDetails{Name: task.Name}, clientIP(r))

	respondJSON(w, http.StatusOK, map[string]string{"message": "Task removed"})
}

// loadAuthorizedTask resolves {id}, loads the task and runs the access
// decision. Writes the error response and returns ok=false on any failure.
func (h *Handler) loadAuthorizedTask(w http.ResponseWriter, r *http.Request) (*models.Task, bool) {
	caller := auth.UserFromContext(r.Context())

	task, err := h.tasks.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Task not found")
			return nil, false
		}
		h.respondInternal(w, r, err)
		return nil, false
	}

	if decision := authz.Decide(caller, task.UserID); !decision.Allowed {
		respondError(w, http.StatusUnauthorized, "Not authorized")
		return nil, false
	}
	return task, true
}

// DueToday handles GET /api/tasks/due-today: the caller's tasks due
// between today's midnight and tomorrow's.
func (h *Handler) DueToday(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	tasks, err := h.tasks.ListByOwner(caller.ID)
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	start := startOfDay(time.Now())
	end := start.AddDate(0, 0, 1)

	var due []*models.Task
	for _, t := range tasks {
		if !t.DueDate.Before(start) && t.DueDate.Before(end) {
			due = append(due, t)
		}
	}
	respondJSON(w, http.StatusOK, taskSlice(due))
}

// Upcoming handles GET /api/tasks/upcoming: not-yet-completed tasks due
// today or later, soonest first.
func (h *Handler) Upcoming(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	tasks, err := h.tasks.ListByOwner(caller.ID)
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	start := startOfDay(time.Now())
	var upcoming []*models.Task
	for _, t := range tasks {
		if t.Status != models.StatusCompleted && !t.DueDate.Before(start) {
			upcoming = append(upcoming, t)
		}
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].DueDate.Before(upcoming[j].DueDate)
	})
	respondJSON(w, http.StatusOK, taskSlice(upcoming))
}

// CompletedLastWeek handles GET /api/tasks/completed-last-week: per-day
// completion counts over the last seven days, oldest day first. Days with
// no completions are present with a zero count.
func (h *Handler) CompletedLastWeek(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	tasks, err := h.tasks.ListByOwner(caller.ID)
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	today := startOfDay(time.Now())
	weekAgo := today.AddDate(0, 0, -6)

	counts := make(map[string]int, 7)
	for i := 0; i < 7; i++ {
		counts[weekAgo.AddDate(0, 0, i).Format("2006-01-02")] = 0
	}
	for _, t := range tasks {
		if t.Status != models.StatusCompleted {
			continue
		}
		day := startOfDay(t.UpdatedAt.Local())
		if day.Before(weekAgo) || day.After(today) {
			continue
		}
		counts[day.Format("2006-01-02")]++
	}

	result := make([]models.DailyCount, 0, 7)
	for i := 0; i < 7; i++ {
		date := weekAgo.AddDate(0, 0, i).Format("2006-01-02")
		result = append(result, models.DailyCount{Date: date, Count: counts[date]})
	}
	respondJSON(w, http.StatusOK, result)
}

// PopularCategories handles GET /api/tasks/popular-categories: the
// caller's five most used categories, largest first.
func (h *Handler) PopularCategories(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	tasks, err := h.tasks.ListByOwner(caller.ID)
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	counts := make(map[string]int)
	for _, t := range tasks {
		if t.Category != "" {
			counts[t.Category]++
		}
	}

	result := make([]models.CategoryCount, 0, len(counts))
	for category, count := range counts {
		result = append(result, models.CategoryCount{Category: category, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Category < result[j].Category
	})
	if len(result) > 5 {
		result = result[:5]
	}
	respondJSON(w, http.StatusOK, result)
}

// AdminAllTasks handles GET /api/tasks/admin/all: every task in the
// system with its owner's name and email attached.
func (h *Handler) AdminAllTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListAll()
	if err != nil {
		h.respondInternal(w, r, err)
		return
	}

	owners := make(map[string]*models.User)
	result := make([]models.TaskWithOwner, 0, len(tasks))
	for _, t := range tasks {
		owner, ok := owners[t.UserID]
		if !ok {
			owner, err = h.users.GetByID(t.UserID)
			if err != nil {
				if errors.Is(err, database.ErrNotFound) {
					owner = nil
				} else {
					h.respondInternal(w, r, err)
					return
				}
			}
			owners[t.UserID] = owner
		}

		two := models.TaskWithOwner{Task: *t}
		if owner != nil {
			two.Owner = models.TaskOwner{ID: owner.ID, Name: owner.Name, Email: owner.Email}
		}
		result = append(result, two)
	}
	respondJSON(w, http.StatusOK, result)
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// taskSlice normalizes a nil slice to an empty one so list endpoints
// always return a JSON array.
func taskSlice(tasks []*models.Task) []*models.Task {
	if tasks == nil {
		return []*models.Task{}
	}
	return tasks
}
