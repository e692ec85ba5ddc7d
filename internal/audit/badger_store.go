// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

package audit

import (
	"fmt"
	"math"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Key layout. Primary keys embed an inverse timestamp so a plain forward
// prefix scan yields entries newest first. Index keys store the primary key
// as their value.
const (
	prefixEntry    = "audit:"      // audit:<inv-ts>:<id> -> Entry JSON
	prefixActor    = "audit_user:" // audit_user:<user id>:<inv-ts>:<id> -> primary key
	prefixResource = "audit_res:"  // audit_res:<type>:<res id>:<inv-ts>:<id> -> primary key
)

// BadgerStore is the production Store implementation on BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore creates a BadgerStore backed by db.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// inverseTimestamp orders keys newest first under lexicographic iteration.
func inverseTimestamp(t time.Time) string {
	return fmt.Sprintf("%020d", uint64(math.MaxInt64)-uint64(t.UnixNano()))
}

func entryKey(entry *Entry) []byte {
	return []byte(prefixEntry + inverseTimestamp(entry.CreatedAt) + ":" + entry.ID)
}

func actorKey(entry *Entry) []byte {
	return []byte(prefixActor + entry.UserID + ":" + inverseTimestamp(entry.CreatedAt) + ":" + entry.ID)
}

func resourceKey(entry *Entry) []byte {
	return []byte(prefixResource + string(entry.ResourceType) + ":" + entry.ResourceID + ":" +
		inverseTimestamp(entry.CreatedAt) + ":" + entry.ID)
}

// Insert appends one entry together with its actor and resource index keys.
func (s *BadgerStore) Insert(entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	primary := entryKey(entry)
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(primary, data); err != nil {
			return fmt.Errorf("set audit entry: %w", err)
		}
		if err := txn.Set(actorKey(entry), primary); err != nil {
			return fmt.Errorf("set actor index: %w", err)
		}
		if err := txn.Set(resourceKey(entry), primary); err != nil {
			return fmt.Errorf("set resource index: %w", err)
		}
		return nil
	})
}

// ListAll returns entries newest first, up to limit (0 = all).
func (s *BadgerStore) ListAll(limit int) ([]*Entry, error) {
	var entries []*Entry
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   100,
			Prefix:         []byte(prefixEntry),
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if limit > 0 && len(entries) >= limit {
				break
			}
			var entry Entry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				return err
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByActor returns entries recorded for userID, newest first.
func (s *BadgerStore) ListByActor(userID string, limit int) ([]*Entry, error) {
	return s.listByIndex([]byte(prefixActor+userID+":"), limit)
}

// ListByResource returns entries touching one resource, newest first.
func (s *BadgerStore) ListByResource(resourceType ResourceType, resourceID string, limit int) ([]*Entry, error) {
	if resourceType != ResourceUser && resourceType != ResourceTask {
		return nil, ErrInvalidResourceType
	}
	return s.listByIndex([]byte(prefixResource+string(resourceType)+":"+resourceID+":"), limit)
}

func (s *BadgerStore) listByIndex(prefix []byte, limit int) ([]*Entry, error) {
	var entries []*Entry
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   100,
			Prefix:         prefix,
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if limit > 0 && len(entries) >= limit {
				break
			}

			var primary []byte
			if err := it.Item().Value(func(val []byte) error {
				primary = append([]byte(nil), val...)
				return nil
			}); err != nil {
				return err
			}

			item, err := txn.Get(primary)
			if err != nil {
				// Index key outlived its entry, likely a retention sweep
				// racing this read. Skip it.
				continue
			}

			var entry Entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				return err
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteOlderThan removes entries created before cutoff and their index
// keys, returning how many entries were deleted. Used by the optional
// retention sweeper.
func (s *BadgerStore) DeleteOlderThan(cutoff time.Time) (int, error) {
	var victims []*Entry
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   100,
			Prefix:         []byte(prefixEntry),
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var entry Entry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				return err
			}
			if entry.CreatedAt.Before(cutoff) {
				victims = append(victims, &entry)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, entry := range victims {
		err := s.db.Update(func(txn *badger.Txn) error {
			if err := txn.Delete(entryKey(entry)); err != nil {
				return err
			}
			if err := txn.Delete(actorKey(entry)); err != nil {
				return err
			}
			return txn.Delete(resourceKey(entry))
		})
		if err != nil {
			return deleted, fmt.Errorf("delete audit entry %s: %w", entry.ID, err)
		}
		deleted++
	}
	return deleted, nil
}
