// Package cache provides pluggable byte caches for rendered tables.
//
// The pipeline caches two kinds of values: the layout of a resolved table,
// keyed by the hash of its span map and logical table, and rendered
// artifacts, keyed by the table hash plus every option that affects the
// output. Keys are built by a [Keyer] so that callers sharing a backend
// (the CLI and the HTTP API, for example) can keep separate namespaces.
//
// Three backends are provided:
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP API
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// Default time-to-live for each kind of cached value.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache stores opaque byte values by key.
//
// Implementations must be safe for concurrent use. A miss is reported as
// (nil, false, nil); errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NullCache disables caching: every Get misses and every write is dropped.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Clear(context.Context) error                              { return nil }
func (NullCache) Close() error                                             { return nil }
