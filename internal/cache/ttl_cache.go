// Package cache provides thread-safe caching utilities with time-based expiration.
package cache

import (
	"sync"
	"time"
)

// TTLCache is a thread-safe cache with time-based expiration.
// A single timestamp covers the whole cache: once the TTL passes every entry is stale.
// Entries also belong to a generation (for example a corpus digest); switching
// generation drops them.
type TTLCache[K comparable, V any] struct {
	mu         sync.RWMutex
	data       map[K]V
	timestamp  time.Time
	ttl        time.Duration
	generation string
	maxEntries int
}

// New creates an unbounded TTLCache. The cache starts empty and expired.
func New[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return NewBounded[K, V](ttl, 0)
}

// NewBounded creates a TTLCache holding at most maxEntries keys.
// Inserting a new key into a full cache clears it first. maxEntries <= 0 means unbounded.
func NewBounded[K comparable, V any](ttl time.Duration, maxEntries int) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		data:       make(map[K]V),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// Get returns the value for key if present and the cache has not expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.isExpiredLocked() {
		var zero V
		return zero, false
	}
	value, ok := c.data[key]
	return value, ok
}

// Set stores a value and resets the TTL timer for the entire cache.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.data == nil || c.isExpiredLocked() {
		c.data = make(map[K]V)
	}
	if _, exists := c.data[key]; !exists && c.maxEntries > 0 && len(c.data) >= c.maxEntries {
		c.data = make(map[K]V)
	}
	c.data[key] = value
	c.timestamp = time.Now()
}

// Rebase switches the cache to generation gen. Entries from another generation
// are dropped; the return value reports whether that happened.
func (c *TTLCache[K, V]) Rebase(gen string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen == c.generation {
		return false
	}
	c.generation = gen
	c.data = make(map[K]V)
	c.timestamp = time.Time{}
	return true
}

// Generation returns the current generation.
func (c *TTLCache[K, V]) Generation() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// IsExpired reports whether the TTL has passed. A cache never Set is expired.
func (c *TTLCache[K, V]) IsExpired() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isExpiredLocked()
}

// must hold at least a read lock
func (c *TTLCache[K, V]) isExpiredLocked() bool {
	return c.timestamp.IsZero() || time.Since(c.timestamp) >= c.ttl
}

// Invalidate clears all entries and marks the cache expired.
func (c *TTLCache[K, V]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[K]V)
	c.timestamp = time.Time{}
}

// Len returns the number of stored entries, expired or not.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
