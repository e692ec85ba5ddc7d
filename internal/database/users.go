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

// UserStore persists user accounts in BadgerDB. Email uniqueness is
// enforced with a user_email index key written in the same transaction
// as the primary record.
type UserStore struct {
	db *badger.DB
}

// NewUserStore creates a UserStore backed by db.
func NewUserStore(db *badger.DB) *UserStore {
	return &UserStore{db: db}
}

func userKey(id string) []byte {
	return []byte(prefixUser + id)
}

// userEmailKey indexes the email exactly as stored. Lookups are
// case-sensitive, matching the uniqueness rule in Create.
func userEmailKey(email string) []byte {
	return []byte(prefixUserEmail + email)
}

// Create stores a new user. Returns ErrEmailTaken when the email address
// is already registered.
func (s *UserStore) Create(user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(userEmailKey(user.Email))
		if err == nil {
			return ErrEmailTaken
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check email index: %w", err)
		}

		if err := txn.Set(userKey(user.ID), data); err != nil {
			return fmt.Errorf("set user: %w", err)
		}
		if err := txn.Set(userEmailKey(user.Email), []byte(user.ID)); err != nil {
			return fmt.Errorf("set email index: %w", err)
		}
		return nil
	})
}

// GetByID returns the user with the given id, or ErrNotFound.
func (s *UserStore) GetByID(id string) (*models.User, error) {
	var user models.User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns the user registered under email, or ErrNotFound.
// Lookup is case-insensitive.
func (s *UserStore) GetByEmail(email string) (*models.User, error) {
	var id string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userEmailKey(email))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Update overwrites an existing user record. The email index is moved when
// the address changed; ErrEmailTaken is returned when the new address
// belongs to another account.
func (s *UserStore) Update(user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(user.ID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}

		var prev models.User
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &prev)
		}); err != nil {
			return fmt.Errorf("decode previous user: %w", err)
		}

		if prev.Email != user.Email {
			existing, err := txn.Get(userEmailKey(user.Email))
			if err == nil {
				var ownerID string
				_ = existing.Value(func(val []byte) error {
					ownerID = string(val)
					return nil
				})
				if ownerID != user.ID {
					return ErrEmailTaken
				}
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("check email index: %w", err)
			}

			if err := txn.Delete(userEmailKey(prev.Email)); err != nil {
				return fmt.Errorf("delete old email index: %w", err)
			}
			if err := txn.Set(userEmailKey(user.Email), []byte(user.ID)); err != nil {
				return fmt.Errorf("set email index: %w", err)
			}
		}

		return txn.Set(userKey(user.ID), data)
	})
}

// List returns all users sorted by creation time ascending.
func (s *UserStore) List() ([]*models.User, error) {
	var users []*models.User
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   100,
			Prefix:         []byte(prefixUser),
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var user models.User
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &user)
			}); err != nil {
				return err
			}
			users = append(users, &user)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// ListRecent returns the n most recently created users, newest first.
func (s *UserStore) ListRecent(n int) ([]*models.User, error) {
	users, err := s.List()
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	if n > 0 && len(users) > n {
		users = users[:n]
	}
	return users, nil
}
