// Package cache stores sampled series and rendered plot artifacts between
// runs.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache] for
// a shared deployment of the HTTP server, and [NullCache] when caching is off.
// Keys come from a [Keyer] so that callers never build key strings by hand.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
//
// Get reports a miss as (nil, false, nil); an error means the backend itself
// failed. A ttl of zero stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Default lifetimes per entry kind.
const (
	TTLSeries   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
