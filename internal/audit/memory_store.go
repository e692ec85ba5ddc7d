// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

package audit

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry

	// FailInsert forces Insert to return this error when non-nil, for
	// exercising the recorder's failure path.
	FailInsert error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Insert appends an entry.
func (s *MemoryStore) Insert(entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailInsert != nil {
		return s.FailInsert
	}
	clone := *entry
	s.entries = append(s.entries, &clone)
	return nil
}

// ListAll returns entries newest first.
func (s *MemoryStore) ListAll(limit int) ([]*Entry, error) {
	return s.list(limit, func(*Entry) bool { return true })
}

// ListByActor returns entries for one actor, newest first.
func (s *MemoryStore) ListByActor(userID string, limit int) ([]*Entry, error) {
	return s.list(limit, func(e *Entry) bool { return e.UserID == userID })
}

// ListByResource returns entries for one resource, newest first.
func (s *MemoryStore) ListByResource(resourceType ResourceType, resourceID string, limit int) ([]*Entry, error) {
	if resourceType != ResourceUser && resourceType != ResourceTask {
		return nil, ErrInvalidResourceType
	}
	return s.list(limit, func(e *Entry) bool {
		return e.ResourceType == resourceType && e.ResourceID == resourceID
	})
}

func (s *MemoryStore) list(limit int, keep func(*Entry) bool) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Entry
	for _, e := range s.entries {
		if keep(e) {
			clone := *e
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeleteOlderThan removes entries created before cutoff.
func (s *MemoryStore) DeleteOlderThan(cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	deleted := 0
	for _, e := range s.entries {
		if e.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return deleted, nil
}
