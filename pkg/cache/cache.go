// Package cache stores rendered artifacts keyed by a hash of their inputs.
//
// Two backends exist: [FileCache] for the CLI, which persists across runs
// under the user cache directory, and [NullCache] when caching is disabled.
// Keys come from a [Keyer] so callers never build them by hand.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// DefaultTTL is the lifetime of rendered artifacts.
const DefaultTTL = 7 * 24 * time.Hour
