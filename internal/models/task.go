// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

package models

import "time"

// TaskStatus is the closed lifecycle set for a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

// ValidStatus reports whether s is a member of the closed status set.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task is a work item owned by exactly one user. UserID is immutable after
// creation: updates never touch it regardless of payload contents.
type Task struct {
	ID          string     `json:"_id"`
	UserID      string     `json:"user"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	DueDate     time.Time  `json:"dueDate"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskWithOwner is a task joined with its owner's public identity,
// returned by the admin all-tasks view.
type TaskWithOwner struct {
	Task
	Owner TaskOwner `json:"owner"`
}

// TaskOwner is the slim owner reference embedded in admin task views.
type TaskOwner struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateTaskRequest is the task creation payload. Status defaults to
// pending when omitted.
type CreateTaskRequest struct {
	Name        string     `json:"name" validate:"required,max=200"`
	Description string     `json:"description" validate:"required,max=2000"`
	Category    string     `json:"category" validate:"required,max=100"`
	DueDate     time.Time  `json:"dueDate" validate:"required"`
	Status      TaskStatus `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
}

// UpdateTaskRequest is the partial task update payload. Zero-valued fields
// keep their current values; the owner can never be changed.
type UpdateTaskRequest struct {
	Name        string     `json:"name" validate:"omitempty,max=200"`
	Description string     `json:"description" validate:"omitempty,max=2000"`
	Category    string     `json:"category" validate:"omitempty,max=100"`
	DueDate     time.Time  `json:"dueDate"`
	Status      TaskStatus `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
}

// CategoryCount is one bucket of the popular-categories aggregate.
// The _id key mirrors the aggregation output shape clients consume.
type CategoryCount struct {
	Category string `json:"_id"`
	Count    int    `json:"count"`
}

// DailyCount is one day's bucket in the completed-last-week chart series.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// UserTaskStats is the per-user aggregate row of the admin dashboard.
type UserTaskStats struct {
	UserID          string `json:"userId"`
	UserName        string `json:"userName"`
	IsActive        bool   `json:"isActive"`
	TotalTasks      int    `json:"totalTasks"`
	CompletedTasks  int    `json:"completedTasks"`
	PendingTasks    int    `json:"pendingTasks"`
	InProgressTasks int    `json:"inProgressTasks"`
	CompletionRate  int    `json:"completionRate"`
}
