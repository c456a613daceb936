// Package cache provides a small TTL cache used in front of the store
// to avoid duplicate generation-service calls. The clock is injectable
// so tests control expiry.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is how long entries stay fresh.
const DefaultTTL = 5 * time.Minute

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type entry struct {
	value   any
	expires time.Time
}

// Cache is a mutex-guarded map with per-entry expiry. Entries are
// replaced wholesale; there is no partial mutation.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	clock   Clock
	entries map[string]entry
}

// Option configures the cache.
type Option func(*Cache)

// WithClock injects a clock, used by tests to control expiry.
func WithClock(clock Clock) Option {
	return func(c *Cache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// New creates a cache with the given TTL. A non-positive TTL falls
// back to DefaultTTL.
func New(ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c := &Cache{
		ttl:     ttl,
		clock:   systemClock{},
		entries: make(map[string]entry),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get returns the cached value for key, or false if absent or expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.clock.Now().After(e.expires) {
		c.mu.Lock()
		// Re-check under the write lock; a fresh Set may have raced.
		if cur, ok := c.entries[key]; ok && c.clock.Now().After(cur.expires) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores or replaces the value for key, restarting its TTL.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		value:   value,
		expires: c.clock.Now().Add(c.ttl),
	}
}

// Len returns the number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
