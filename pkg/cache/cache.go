// Package cache stores fetched bookmark previews and other small payloads
// behind a backend-neutral interface.
//
// Three backends are provided: [FileCache] for the CLI, [RedisCache] for
// shared server deployments, and [NullCache] when caching is disabled.
// Keys come from a [Keyer] so that tenants can be isolated with
// [NewScopedKeyer].
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry TTL.
//
// Get reports a miss with ok == false and a nil error. Expired entries are
// treated as misses. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey keys a raw HTTP response body.
	HTTPKey(namespace, key string) string

	// PreviewKey keys the extracted preview for a bookmark URL.
	PreviewKey(url string) string
}

// DefaultKeyer hashes URLs so keys stay short and filesystem-safe.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

func (DefaultKeyer) PreviewKey(url string) string {
	return hashKey("preview", url)
}

var _ Keyer = DefaultKeyer{}
