// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

package audit

import (
	"fmt"
	"testing"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// storeFactory lets the same suite cover both Store implementations.
type storeFactory func(t *testing.T) Store

func openTestBadger(t *testing.T) *badger.DB {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func storeImplementations() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"badger": func(t *testing.T) Store { return NewBadgerStore(openTestBadger(t)) },
	}
}

func seedEntries(t *testing.T, s Store, n int) []*Entry {
	t.Helper()
	base := time.Now().UTC().Add(-time.Duration(n) * time.Minute)
	entries := make([]*Entry, n)
	for i := 0; i < n; i++ {
		e := &Entry{
			ID:           fmt.Sprintf("entry-%d", i),
			UserID:       fmt.Sprintf("user-%d", i%2),
			Action:       ActionCreate,
			ResourceType: ResourceTask,
			ResourceID:   fmt.Sprintf("task-%d", i%3),
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.Insert(e); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		entries[i] = e
	}
	return entries
}

func assertDescending(t *testing.T, entries []*Entry) {
	t.Helper()
	for i := 1; i < len(entries); i++ {
		if entries[i-1].CreatedAt.Before(entries[i].CreatedAt) {
			t.Errorf("entries not newest first at %d: %v before %v",
				i, entries[i-1].CreatedAt, entries[i].CreatedAt)
		}
	}
}

func TestStoreListAllNewestFirst(t *testing.T) {
	t.Parallel()
	for name, factory := range storeImplementations() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s := factory(t)
			seedEntries(t, s, 6)

			entries, err := s.ListAll(0)
			if err != nil {
				t.Fatalf("ListAll: %v", err)
			}
			if len(entries) != 6 {
				t.Fatalf("len = %d, want 6", len(entries))
			}
			assertDescending(t, entries)
			if entries[0].ID != "entry-5" {
				t.Errorf("first entry = %s, want entry-5 (newest)", entries[0].ID)
			}
		})
	}
}

func TestStoreListAllLimit(t *testing.T) {
	t.Parallel()
	for name, factory := range storeImplementations() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s := factory(t)
			seedEntries(t, s, 6)

			entries, err := s.ListAll(2)
			if err != nil {
				t.Fatalf("ListAll: %v", err)
			}
			if len(entries) != 2 {
				t.Fatalf("len = %d, want 2", len(entries))
			}
			if entries[0].ID != "entry-5" || entries[1].ID != "entry-4" {
				t.Errorf("limit returned %s, %s, want entry-5, entry-4",
					entries[0].ID, entries[1].ID)
			}
		})
	}
}

func TestStoreListByActor(t *testing.T) {
	t.Parallel()
	for name, factory := range storeImplementations() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s := factory(t)
			seedEntries(t, s, 6)

			entries, err := s.ListByActor("user-0", 0)
			if err != nil {
				t.Fatalf("ListByActor: %v", err)
			}
			if len(entries) != 3 {
				t.Fatalf("len = %d, want 3", len(entries))
			}
			assertDescending(t, entries)
			for _, e := range entries {
				if e.UserID != "user-0" {
					t.Errorf("entry %s has actor %s, want user-0", e.ID, e.UserID)
				}
			}
		})
	}
}

func TestStoreListByResource(t *testing.T) {
	t.Parallel()
	for name, factory := range storeImplementations() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s := factory(t)
			seedEntries(t, s, 6)

			entries, err := s.ListByResource(ResourceTask, "task-1", 0)
			if err != nil {
				t.Fatalf("ListByResource: %v", err)
			}
			if len(entries) != 2 {
				t.Fatalf("len = %d, want 2", len(entries))
			}
			assertDescending(t, entries)
			for _, e := range entries {
				if e.ResourceID != "task-1" {
					t.Errorf("entry %s has resource %s, want task-1", e.ID, e.ResourceID)
				}
			}

			if _, err := s.ListByResource("widget", "task-1", 0); err != ErrInvalidResourceType {
				t.Errorf("invalid type error = %v, want ErrInvalidResourceType", err)
			}
		})
	}
}

func TestStoreDeleteOlderThan(t *testing.T) {
	t.Parallel()
	for name, factory := range storeImplementations() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s := factory(t)
			entries := seedEntries(t, s, 6)

			// Cutoff between entry-2 and entry-3.
			cutoff := entries[3].CreatedAt
			deleted, err := s.DeleteOlderThan(cutoff)
			if err != nil {
				t.Fatalf("DeleteOlderThan: %v", err)
			}
			if deleted != 3 {
				t.Errorf("deleted = %d, want 3", deleted)
			}

			remaining, err := s.ListAll(0)
			if err != nil {
				t.Fatalf("ListAll: %v", err)
			}
			if len(remaining) != 3 {
				t.Fatalf("remaining = %d, want 3", len(remaining))
			}
			for _, e := range remaining {
				if e.CreatedAt.Before(cutoff) {
					t.Errorf("entry %s older than cutoff survived", e.ID)
				}
			}

			// Actor index must not resurrect deleted entries.
			byActor, err := s.ListByActor("user-1", 0)
			if err != nil {
				t.Fatalf("ListByActor: %v", err)
			}
			for _, e := range byActor {
				if e.CreatedAt.Before(cutoff) {
					t.Errorf("actor index returned deleted entry %s", e.ID)
				}
			}
		})
	}
}
