package storage

import (
	"context"
)

// Storage is a durable key/value store. Each Set replaces the whole value
// under one key; there are no partial writes.
type Storage interface {
	// Get returns the value under key, or model.ErrKeyNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources
	Close() error
}
