package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mcoot/scorepad/internal/storage"
	"github.com/mcoot/scorepad/internal/storage/memory"
)

// ErrQuotaExceeded is the error returned by FailingStorage for blocked writes
var ErrQuotaExceeded = errors.New("quota exceeded")

// FailingStorage wraps an in-memory store and rejects writes to chosen keys.
// Use it to simulate a full or broken backend.
type FailingStorage struct {
	*memory.Storage

	mu       sync.Mutex
	failKeys  map[string]bool
	failAll   bool
	readDelay time.Duration
}

// Ensure FailingStorage implements the interface
var _ storage.Storage = (*FailingStorage)(nil)

// NewFailingStorage creates a FailingStorage that accepts every write
func NewFailingStorage() *FailingStorage {
	return &FailingStorage{
		Storage:  memory.New(),
		failKeys: make(map[string]bool),
	}
}

// FailKey makes every later Set of key fail
func (f *FailingStorage) FailKey(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failKeys[key] = true
}

// FailAll makes every later Set fail
func (f *FailingStorage) FailAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAll = true
}

// Heal lets writes succeed again
func (f *FailingStorage) Heal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAll = false
	f.failKeys = make(map[string]bool)
}

// SlowReads makes every later Get wait d before answering, which widens the
// gap between a caller's read and its write
func (f *FailingStorage) SlowReads(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readDelay = d
}

// Get delegates to the memory store after any configured delay
func (f *FailingStorage) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	delay := f.readDelay
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	return f.Storage.Get(ctx, key)
}

// Set fails for blocked keys and otherwise delegates to the memory store
func (f *FailingStorage) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	fail := f.failAll || f.failKeys[key]
	f.mu.Unlock()
	if fail {
		return ErrQuotaExceeded
	}
	return f.Storage.Set(ctx, key, value)
}
