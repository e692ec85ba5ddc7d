// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

package database

import (
	"errors"
	"fmt"
	"sort"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/taskvault/taskvault/internal/models"
)

// TaskStore persists tasks in BadgerDB. A task_user index key written
// alongside each record makes per-owner listing a prefix scan.
type TaskStore struct {
	db *badger.DB
}

// NewTaskStore creates a TaskStore backed by db.
func NewTaskStore(db *badger.DB) *TaskStore {
	return &TaskStore{db: db}
}

func taskKey(id string) []byte {
	return []byte(prefixTask + id)
}

func taskUserKey(ownerID, taskID string) []byte {
	return []byte(prefixTaskUser + ownerID + ":" + taskID)
}

// Create stores a new task and its owner index entry.
func (s *TaskStore) Create(task *models.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(taskKey(task.ID), data); err != nil {
			return fmt.Errorf("set task: %w", err)
		}
		if err := txn.Set(taskUserKey(task.UserID, task.ID), []byte(task.ID)); err != nil {
			return fmt.Errorf("set owner index: %w", err)
		}
		return nil
	})
}

// GetByID returns the task with the given id, or ErrNotFound.
func (s *TaskStore) GetByID(id string) (*models.Task, error) {
	var task models.Task
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(taskKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &task)
		})
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Update overwrites an existing task record. The owner never changes so
// the index entry is left untouched.
func (s *TaskStore) Update(task *models.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(taskKey(task.ID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Set(taskKey(task.ID), data)
	})
}

// Delete removes a task and its owner index entry. Returns ErrNotFound
// when the task does not exist.
func (s *TaskStore) Delete(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(taskKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}

		var task models.Task
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &task)
		}); err != nil {
			return fmt.Errorf("decode task: %w", err)
		}

		if err := txn.Delete(taskKey(id)); err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		if err := txn.Delete(taskUserKey(task.UserID, id)); err != nil {
			return fmt.Errorf("delete owner index: %w", err)
		}
		return nil
	})
}

// ListByOwner returns all tasks owned by ownerID, newest first.
func (s *TaskStore) ListByOwner(ownerID string) ([]*models.Task, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   100,
			Prefix:         []byte(prefixTaskUser + ownerID + ":"),
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := it.Item().Value(func(val []byte) error {
				ids = append(ids, string(val))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tasks := make([]*models.Task, 0, len(ids))
	for _, id := range ids {
		task, err := s.GetByID(id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		tasks = append(tasks, task)
	}

	sortTasksNewestFirst(tasks)
	return tasks, nil
}

// ListAll returns every task in the store, newest first.
func (s *TaskStore) ListAll() ([]*models.Task, error) {
	var tasks []*models.Task
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   100,
			Prefix:         []byte(prefixTask),
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var task models.Task
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &task)
			}); err != nil {
				return err
			}
			tasks = append(tasks, &task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortTasksNewestFirst(tasks)
	return tasks, nil
}

func sortTasksNewestFirst(tasks []*models.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}
