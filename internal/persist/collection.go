// Package persist stores whole collections as one JSON blob per key.
//
// Every mutation rewrites the full snapshot. Blobs are wrapped in an envelope
// carrying a schema version; older versions are upgraded by registered
// migrations on load. A bare JSON array (the format written before the
// envelope existed) is read as version 0.
package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/craftfolder/internal/apperr"
	"github.com/starford/craftfolder/internal/kvstore"
)

// CurrentVersion is the schema version written by Save.
const CurrentVersion = 1

// ErrFutureVersion is returned when a blob was written by a newer build.
var ErrFutureVersion = errors.New("persist: blob written by a newer schema version")

// ErrMalformed is returned when a blob is neither a JSON array nor an
// envelope holding one.
var ErrMalformed = errors.New("persist: blob is not a list")

// Migration upgrades the raw data array from one version to the next.
type Migration func(data json.RawMessage) (json.RawMessage, error)

// Option configures a Collection.
type Option func(*options)

type options struct {
	migrations map[int]Migration
	logger     *slog.Logger
}

// WithMigration registers m to upgrade data stored at version from to from+1.
func WithMigration(from int, m Migration) Option {
	return func(o *options) {
		o.migrations[from] = m
	}
}

// WithLogger sets the logger used for load/save diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// envelope carries no timestamp so unchanged data encodes to identical bytes.
type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Collection loads and saves a []T under one key.
type Collection[T any] struct {
	kv  kvstore.Store
	key string
	opt options
}

// NewCollection binds a collection of T to key in kv.
func NewCollection[T any](kv kvstore.Store, key string, opts ...Option) *Collection[T] {
	o := options{migrations: map[int]Migration{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Collection[T]{kv: kv, key: key, opt: o}
}

// Key returns the storage key.
func (c *Collection[T]) Key() string {
	return c.key
}

// Load reads the collection. A missing key yields an empty, non-nil slice
// and no error.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	raw, err := c.kv.Get(ctx, c.key)
	if errors.Is(err, apperr.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("persist: load %s: %w", c.key, err)
	}

	items, err := c.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("persist: load %s: %w", c.key, err)
	}
	return items, nil
}

// Decode parses a stored or exported blob, migrating it to CurrentVersion.
func (c *Collection[T]) Decode(raw []byte) ([]T, error) {
	version, data, err := unwrap(raw)
	if err != nil {
		return nil, err
	}
	if version > CurrentVersion {
		return nil, fmt.Errorf("%w: %d > %d", ErrFutureVersion, version, CurrentVersion)
	}

	for v := version; v < CurrentVersion; v++ {
		m, ok := c.opt.migrations[v]
		if !ok {
			continue
		}
		if data, err = m(data); err != nil {
			return nil, fmt.Errorf("migrate v%d: %w", v, err)
		}
		c.opt.logger.Info("persist: migrated collection",
			slog.String("key", c.key),
			slog.Int("from", v),
			slog.Int("to", v+1))
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Save overwrites the stored collection with items.
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("persist: encode %s: %w", c.key, err)
	}
	blob, err := json.Marshal(envelope{Version: CurrentVersion, Data: data})
	if err != nil {
		return fmt.Errorf("persist: encode %s: %w", c.key, err)
	}
	if err := c.kv.Set(ctx, c.key, blob); err != nil {
		return fmt.Errorf("persist: save %s: %w", c.key, err)
	}
	return nil
}

func unwrap(raw []byte) (int, json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0, nil, fmt.Errorf("%w: empty input", ErrMalformed)
	}
	if trimmed[0] == '[' {
		return 0, trimmed, nil
	}
	if trimmed[0] != '{' {
		return 0, nil, fmt.Errorf("%w: unexpected %q", ErrMalformed, firstToken(trimmed))
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return 0, nil, fmt.Errorf("decode envelope: %w", err)
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || data[0] != '[' {
		return 0, nil, fmt.Errorf("%w: envelope has no data array", ErrMalformed)
	}
	return env.Version, data, nil
}

func firstToken(b []byte) string {
	if len(b) > 16 {
		b = b[:16]
	}
	return string(b)
}
