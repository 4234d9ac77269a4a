package cache

import (
	"context"
	"time"
)

// ScopedCache prefixes every key of an inner cache. This isolates entries
// for different servers sharing one backend, so results probed against one
// host are never served for another.
//
// Example usage:
//
//	backend, _ := cache.NewFileCache(dir)
//	scoped := cache.NewScoped(backend, cache.Hash([]byte(serverURL))[:12]+":")
type ScopedCache struct {
	inner  Cache
	prefix string
}

// NewScoped wraps inner so that all keys carry the given prefix.
func NewScoped(inner Cache, prefix string) Cache {
	if inner == nil {
		inner = NewNullCache()
	}
	return &ScopedCache{inner: inner, prefix: prefix}
}

// Get retrieves the prefixed key from the inner cache.
func (c *ScopedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.inner.Get(ctx, c.prefix+key)
}

// Set stores the prefixed key in the inner cache.
func (c *ScopedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, c.prefix+key, data, ttl)
}

// Delete removes the prefixed key from the inner cache.
func (c *ScopedCache) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, c.prefix+key)
}

// Close closes the inner cache.
func (c *ScopedCache) Close() error {
	return c.inner.Close()
}

// Ensure ScopedCache implements Cache.
var _ Cache = (*ScopedCache)(nil)
