// Package cache stores computed layouts and rendered artifacts.
//
// Layouts are deterministic for a given tree, canvas size and engine
// configuration, so the pipeline keys them by content hash and reuses them
// across CLI runs ([FileCache]) or across server replicas ([RedisCache]).
// [NullCache] disables caching.
//
// Keys are built by a [Keyer]; [ScopedKeyer] adds a namespace prefix so
// several tenants can share one backend. [Observed] wraps any Cache and
// reports hits, misses and writes to the registered observability hooks.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry owned by the cache.
	Clear(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Default entry lifetimes.
const (
	LayoutTTL = 7 * 24 * time.Hour
	RenderTTL = 24 * time.Hour
)
