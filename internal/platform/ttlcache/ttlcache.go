// Package ttlcache provides a small in-memory cache with per-cache TTL and
// an injectable clock so expiry is testable without sleeping.
package ttlcache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// Cache holds fetched values for a fixed TTL. The zero value is not usable;
// construct with New.
//
// Concurrent misses for the same key may fetch more than once; the last
// write wins. Fetch errors are returned to the caller and never cached.
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	ttl     time.Duration
	now     func() time.Time
}

// New creates a cache whose entries expire ttl after they are stored.
// A nil now falls back to time.Now.
func New[K comparable, V any](ttl time.Duration, now func() time.Time) *Cache[K, V] {
	if now == nil {
		now = time.Now
	}
	return &Cache[K, V]{
		entries: make(map[K]entry[V]),
		ttl:     ttl,
		now:     now,
	}
}

// GetOrFetch returns the cached value for key, fetching and storing it when
// the key is absent or expired.
func (c *Cache[K, V]) GetOrFetch(key K, fetch func() (V, error)) (V, error) {
	if value, ok := c.lookup(key); ok {
		return value, nil
	}

	value, err := fetch()
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return value, nil
}

// InvalidateFor removes one key.
func (c *Cache[K, V]) InvalidateFor(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Invalidate removes every entry.
func (c *Cache[K, V]) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[K]entry[V])
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included until
// they are swept by a lookup.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache[K, V]) lookup(key K) (V, bool) {
	c.mu.RLock()
	stored, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(stored.expires) {
		c.InvalidateFor(key)
		var zero V
		return zero, false
	}
	return stored.value, true
}
