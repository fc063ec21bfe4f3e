// Package store keeps each logical collection under a primary key with a
// shadow backup copy, and restores primaries from their backups at startup.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/scorepad/internal/dependencies/clock"
	"github.com/mcoot/scorepad/internal/model"
	"github.com/mcoot/scorepad/internal/storage"
)

// Collection names a logical collection and is also its primary key
type Collection string

const (
	CustomGames     Collection = "customGames"         // User-defined games
	GenericSessions Collection = "gameSessions"        // Sessions recorded with the score pad
	UnifiedSessions Collection = "unifiedGameSessions" // Sessions written by built-in game scorers
)

// Collections lists every collection in recovery order
var Collections = []Collection{CustomGames, GenericSessions, UnifiedSessions}

// metaVersion is the layout version recorded in each _meta key
const metaVersion = "1.0"

// BackupKey returns the key of the collection's shadow copy
func (c Collection) BackupKey() string {
	return string(c) + "_backup"
}

// MetaKey returns the key of the collection's metadata record
func (c Collection) MetaKey() string {
	return string(c) + "_meta"
}

// HasMeta reports whether writes maintain a _meta record. Unified sessions
// are owned by the built-in scorers, which never wrote one.
func (c Collection) HasMeta() bool {
	return c != UnifiedSessions
}

// Meta describes the last write of a collection
type Meta struct {
	LastUpdated time.Time `json:"lastUpdated"`
	Version     string    `json:"version"`
	Count       int       `json:"count"`
}

// Store reads and writes collections on a key/value backend.
//
// Every write replaces a whole collection, so callers that read a
// collection, change it and write it back must do so inside Update.
type Store struct {
	kv     storage.Storage
	clock  clock.Clock
	logger *slog.Logger

	mu sync.Mutex
}

// New creates a Store on top of the given backend
func New(kv storage.Storage, clk clock.Clock, logger *slog.Logger) *Store {
	return &Store{
		kv:     kv,
		clock:  clk,
		logger: logger,
	}
}

// Update runs fn while holding the store's write lock. Reads and writes
// made by fn see no interleaved writes from other Update calls.
func (s *Store) Update(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// Write stores value as the collection's primary, refreshes its meta record
// and mirrors it to the backup key. Only the primary decides the outcome:
// if it could not be saved the failure is logged and returned wrapped in
// model.ErrStorageFailure. Meta and backup failures are logged and left
// for the backup worker to repair.
func (s *Store) Write(ctx context.Context, c Collection, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return s.fail(c, "encode", err)
	}

	if err := s.kv.Set(ctx, string(c), data); err != nil {
		return s.fail(c, "write", err)
	}

	if c.HasMeta() {
		count, _ := countItems(data)
		meta, _ := json.Marshal(Meta{
			LastUpdated: s.clock.Now(),
			Version:     metaVersion,
			Count:       count,
		})
		if err := s.kv.Set(ctx, c.MetaKey(), meta); err != nil {
			_ = s.fail(c, "write meta", err)
		}
	}

	if err := s.kv.Set(ctx, c.BackupKey(), data); err != nil {
		_ = s.fail(c, "write backup", err)
	}
	return nil
}

// WriteBackup replaces only the collection's shadow copy
func (s *Store) WriteBackup(ctx context.Context, c Collection, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return s.fail(c, "encode backup", err)
	}
	if err := s.kv.Set(ctx, c.BackupKey(), data); err != nil {
		return s.fail(c, "write backup", err)
	}
	return nil
}

// ReadRaw returns the primary value's bytes. Missing keys report found=false.
func (s *Store) ReadRaw(ctx context.Context, c Collection) ([]byte, bool, error) {
	data, err := s.kv.Get(ctx, string(c))
	if err != nil {
		if errors.Is(err, model.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", c, err)
	}
	return data, true, nil
}

// ReadMeta returns the collection's last write metadata, if any
func (s *Store) ReadMeta(ctx context.Context, c Collection) (*Meta, bool) {
	data, err := s.kv.Get(ctx, c.MetaKey())
	if err != nil {
		return nil, false
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, false
	}
	return &meta, true
}

// Status summarizes one collection's primary and backup
type Status struct {
	Collection  Collection `json:"collection"`
	Count       int        `json:"count"`
	Valid       bool       `json:"valid"`
	BackupCount int        `json:"backupCount"`
	Meta        *Meta      `json:"meta,omitempty"`
}

// Status reports every collection's item counts and last write metadata.
// Missing or malformed values count as zero items.
func (s *Store) Status(ctx context.Context) []Status {
	statuses := make([]Status, 0, len(Collections))
	for _, c := range Collections {
		st := Status{Collection: c}
		if data, found, err := s.ReadRaw(ctx, c); err == nil && found {
			st.Count, st.Valid = countItems(data)
		}
		if backup, err := s.kv.Get(ctx, c.BackupKey()); err == nil {
			st.BackupCount, _ = countItems(backup)
		}
		if meta, ok := s.ReadMeta(ctx, c); ok {
			st.Meta = meta
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// Read decodes the collection's primary as a list of T. Absent or malformed
// data reports found=false with no error; only backend failures are errors.
func Read[T any](ctx context.Context, s *Store, c Collection) ([]T, bool, error) {
	data, found, err := s.ReadRaw(ctx, c)
	if err != nil || !found {
		return nil, false, err
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn("ignoring malformed collection data",
			slog.String("collection", string(c)),
			slog.String("error", err.Error()),
		)
		return nil, false, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, true, nil
}

// Recover promotes each backup to primary when the primary is absent,
// malformed or empty and the backup holds a non-empty list. It reports
// whether anything was promoted. Problems with one collection are logged
// and do not stop the others.
func (s *Store) Recover(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recovered := false
	var errs []error

	for _, c := range Collections {
		promoted, err := s.recoverCollection(ctx, c)
		if err != nil {
			s.logger.Warn("backup recovery failed",
				slog.String("collection", string(c)),
				slog.String("error", err.Error()),
			)
			errs = append(errs, err)
			continue
		}
		if promoted {
			recovered = true
			s.logger.Info("collection recovered from backup", slog.String("collection", string(c)))
		}
	}

	return recovered, errors.Join(errs...)
}

func (s *Store) recoverCollection(ctx context.Context, c Collection) (bool, error) {
	backup, err := s.kv.Get(ctx, c.BackupKey())
	if err != nil {
		if errors.Is(err, model.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", c.BackupKey(), err)
	}
	if n, ok := countItems(backup); !ok || n == 0 {
		return false, nil
	}

	primary, found, err := s.ReadRaw(ctx, c)
	if err != nil {
		return false, err
	}
	if found {
		if n, ok := countItems(primary); ok && n > 0 {
			return false, nil
		}
	}

	if err := s.kv.Set(ctx, string(c), backup); err != nil {
		return false, fmt.Errorf("%w: restore %s: %w", model.ErrStorageFailure, c, err)
	}
	return true, nil
}

// RefreshBackup copies the current primary over the backup. It skips a
// primary that is missing or not a valid list, and an empty primary while
// the backup still holds items, leaving Recover a backup to restore.
func (s *Store) RefreshBackup(ctx context.Context, c Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, found, err := s.ReadRaw(ctx, c)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	n, ok := countItems(data)
	if !ok {
		return nil
	}
	if n == 0 {
		backup, err := s.kv.Get(ctx, c.BackupKey())
		if err == nil {
			if held, ok := countItems(backup); ok && held > 0 {
				s.logger.Warn("empty collection left unmirrored; backup kept",
					slog.String("collection", string(c)),
					slog.Int("backup_count", held),
				)
				return nil
			}
		}
	}
	return s.WriteBackup(ctx, c, json.RawMessage(data))
}

func (s *Store) fail(c Collection, op string, err error) error {
	s.logger.Warn("unable to save data",
		slog.String("collection", string(c)),
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%w: %s %s: %w", model.ErrStorageFailure, op, c, err)
}

// countItems reports the length of a JSON array, or ok=false if data is not one
func countItems(data []byte) (int, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return 0, false
	}
	return len(items), true
}
