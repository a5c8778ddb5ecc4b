// Lectern - Authentication and Access Control Core for Coaching-Center LMS
// Copyright 2026 The Lectern Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-lms/lectern

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/lectern-lms/lectern/internal/logging"
	"github.com/lectern-lms/lectern/internal/models"
)

// Key prefix for session records in BadgerDB.
const sessionKeyPrefix = "session:"

// BadgerSessionStore is a BadgerDB-backed session directory. Sessions
// survive restarts without requiring Postgres; useful for single-node
// deployments.
type BadgerSessionStore struct {
	db *badger.DB
}

// NewBadgerSessionStore opens the BadgerDB at path and wraps it as a
// session store. The store owns the DB handle and closes it in Close.
func NewBadgerSessionStore(path string) (*BadgerSessionStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // badger's default logger is too chatty
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger session store at %s: %w", path, err)
	}
	return &BadgerSessionStore{db: db}, nil
}

func sessionKey(tokenHash string) []byte {
	return []byte(sessionKeyPrefix + tokenHash)
}

// Create persists a new session record keyed by token hash. Badger's
// native TTL handles natural expiry alongside the explicit sweep.
func (s *BadgerSessionStore) Create(ctx context.Context, session *models.SessionRecord) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(sessionKey(session.TokenHash), data)
		if ttl := session.ExpiresAt.Sub(session.CreatedAt); ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		if err := txn.SetEntry(entry); err != nil {
			return fmt.Errorf("failed to set session: %w", err)
		}
		return nil
	})
}

// FindByToken returns the live session for a raw token.
func (s *BadgerSessionStore) FindByToken(ctx context.Context, token string) (*models.SessionRecord, error) {
	var session models.SessionRecord

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(models.HashToken(token)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		})
	})
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// DeleteByToken removes the session for a raw token. Idempotent.
func (s *BadgerSessionStore) DeleteByToken(ctx context.Context, token string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(sessionKey(models.HashToken(token)))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		return nil
	})
}

// DeleteAll removes every session record.
func (s *BadgerSessionStore) DeleteAll(ctx context.Context) (int, error) {
	hashes, err := s.collectHashes(func(*models.SessionRecord) bool { return true })
	if err != nil {
		return 0, err
	}
	return s.deleteHashes(hashes)
}

// DeleteExpired removes expired records. Badger TTL already drops most of
// them; this catches records written without a TTL.
func (s *BadgerSessionStore) DeleteExpired(ctx context.Context) (int, error) {
	hashes, err := s.collectHashes(func(rec *models.SessionRecord) bool { return rec.IsExpired() })
	if err != nil {
		return 0, err
	}
	return s.deleteHashes(hashes)
}

// collectHashes scans the session prefix and returns token hashes whose
// records match the predicate.
func (s *BadgerSessionStore) collectHashes(match func(*models.SessionRecord) bool) ([]string, error) {
	var hashes []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(sessionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var session models.SessionRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &session)
			})
			if err != nil {
				logging.Warn().Err(err).Msg("skipping unreadable session record")
				continue
			}
			if match(&session) {
				hashes = append(hashes, session.TokenHash)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return hashes, nil
}

func (s *BadgerSessionStore) deleteHashes(hashes []string) (int, error) {
	count := 0
	for _, hash := range hashes {
		err := s.db.Update(func(txn *badger.Txn) error {
			err := txn.Delete(sessionKey(hash))
			if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			return nil
		})
		if err != nil {
			logging.Warn().Err(err).Msg("failed to delete session record")
			continue
		}
		count++
	}
	return count, nil
}

// Close closes the underlying BadgerDB.
func (s *BadgerSessionStore) Close() error {
	return s.db.Close()
}
