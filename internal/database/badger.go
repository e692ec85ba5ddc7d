// TaskVault - Multi-Tenant Task Management API
// Copyright 2026 TaskVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/taskvault/taskvault

// Package database provides persistent storage for users and tasks backed by
// BadgerDB. Records are stored as JSON documents under typed key prefixes
// with secondary index keys for lookups that BadgerDB cannot serve directly.
package database

import (
	"errors"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/taskvault/taskvault/internal/config"
	"github.com/taskvault/taskvault/internal/logging"
)

// Key prefixes. Primary records hold the JSON document; index keys hold
// the primary key (or nothing) and exist only for prefix iteration.
const (
	prefixUser      = "user:"       // user:<id> -> User JSON
	prefixUserEmail = "user_email:" // user_email:<email> -> user id
	prefixTask      = "task:"       // task:<id> -> Task JSON
	prefixTaskUser  = "task_user:"  // task_user:<owner id>:<task id> -> task id
)

// Sentinel errors returned by the stores.
var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Open opens the BadgerDB instance described by cfg. The caller owns the
// returned handle and must Close it.
func Open(cfg config.DatabaseConfig) (*badger.DB, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithLogger(newBadgerLogger())

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// badgerLogger adapts BadgerDB's internal logging to zerolog.
type badgerLogger struct{}

func newBadgerLogger() *badgerLogger { return &badgerLogger{} }

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	logging.Error().Msgf("badger: "+format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	logging.Warn().Msgf("badger: "+format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	logging.Debug().Msgf("badger: "+format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	logging.Debug().Msgf("badger: "+format, args...)
}
