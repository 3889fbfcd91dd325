// Package kvstore is the device key/value storage behind every persisted
// collection and setting. Values are opaque byte strings, normally JSON.
package kvstore

import (
	"context"
	"fmt"
)

// Drivers accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
)

// Store is a flat string-keyed blob store.
type Store interface {
	// Get returns the value under key, or apperr.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the value under key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists every stored key in lexical order.
	Keys(ctx context.Context) ([]string, error)
	// Clear removes every key.
	Clear(ctx context.Context) error
	Close() error
}

// Open opens the store for driver at path, creating it if needed.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		return OpenSQLite(path)
	case DriverBolt:
		return OpenBolt(path)
	default:
		return nil, fmt.Errorf("kvstore: unknown driver %q", driver)
	}
}
