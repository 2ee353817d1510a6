// Package storage defines the key-value persistence port used by the record
// store, plus the embedded implementations (in-memory and BadgerDB).
//
// Network-backed implementations live next to the rest of their driver code:
// Redis in internal/cache, MongoDB in internal/repository.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("storage: key not found")

// KV is a string key-value store. Implementations must make a single Set or
// Remove atomic: a reader sees either the previous value or the new one.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
