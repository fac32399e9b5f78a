// Package kv provides the key/value store adapter the engagement engine
// persists through, with SQLite, Redis and in-memory backends.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("kv: key not found")

// ErrConflict is returned when an atomic update kept losing to other writers.
var ErrConflict = errors.New("kv: conflicting concurrent writes")

// Store defines the key/value storage interface.
type Store interface {
	// Get returns the latest value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Close closes the store.
	Close() error
}

// Atomic is implemented by stores that can run a read-modify-write of one
// key as a unit, also against other processes sharing the same storage.
// Failures are reported as *OpError so callers can tell a failed read from
// a failed write. fn may be called more than once.
type Atomic interface {
	Update(ctx context.Context, key string, fn UpdateFunc) error
}
