// Package storage provides durable client-side state: the access token,
// the chosen playback rate, the device identity, and a local progress cache.
// Values are JSON-encoded into a Badger database under the state directory.
package storage

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"github.com/Cossomoj/booksmood/internal/domain"
	domainerrors "github.com/Cossomoj/booksmood/internal/errors"
)

// Key prefixes. Everything the client persists lives under one of these.
const (
	keyToken      = "session:token"
	keyDeviceID   = "session:device"
	keyRate       = "player:rate"
	prefixHistory = "progress:"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) the state database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil      // Disable Badger's internal logging
	opts.SyncWrites = true // Token loss on crash would force a re-auth cycle

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Debug("state database opened", "path", path)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close gracefully closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// get retrieves and decodes a value by key.
func (s *Store) get(key string, dest any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domainerrors.ErrNotFound
	}
	return err
}

// set encodes and stores a value under key.
func (s *Store) set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// delete removes a key. Missing keys are not an error.
func (s *Store) delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Token returns the persisted access token.
// Returns errors.ErrNotFound when no token is held.
func (s *Store) Token() (string, error) {
	var token string
	if err := s.get(keyToken, &token); err != nil {
		return "", err
	}
	return token, nil
}

// SetToken persists the access token.
func (s *Store) SetToken(token string) error {
	return s.set(keyToken, token)
}

// ClearToken drops the persisted access token.
func (s *Store) ClearToken() error {
	return s.delete(keyToken)
}

// DeviceID returns the stable device identity, or ErrNotFound.
func (s *Store) DeviceID() (string, error) {
	var id string
	if err := s.get(keyDeviceID, &id); err != nil {
		return "", err
	}
	return id, nil
}

// SetDeviceID persists the device identity.
func (s *Store) SetDeviceID(id string) error {
	return s.set(keyDeviceID, id)
}

// PlaybackRate returns the last-chosen playback rate.
// Returns errors.ErrNotFound when none was ever chosen.
func (s *Store) PlaybackRate() (float64, error) {
	var rate float64
	if err := s.get(keyRate, &rate); err != nil {
		return 0, err
	}
	return rate, nil
}

// SetPlaybackRate persists the chosen playback rate.
func (s *Store) SetPlaybackRate(rate float64) error {
	return s.set(keyRate, rate)
}

// CachedProgress returns the locally cached progress for a book.
// The cache is a read-only fallback for when the backend history fetch
// fails; the backend stays the source of truth.
func (s *Store) CachedProgress(bookID int64) (*domain.UserProgress, error) {
	var p domain.UserProgress
	if err := s.get(historyKey(bookID), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CacheProgress stores a local copy of the progress record.
func (s *Store) CacheProgress(p *domain.UserProgress) error {
	return s.set(historyKey(p.BookID), p)
}

func historyKey(bookID int64) string {
	return prefixHistory + strconv.FormatInt(bookID, 10)
}
