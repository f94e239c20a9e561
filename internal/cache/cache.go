package cache

import (
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

type entry[V any] struct {
	value      V
	expiresAt  time.Time
	lastAccess time.Time
}

// Cache is a size-bounded, time-expiring cache. Entries past their TTL are
// treated as absent on lookup so callers transparently refetch; when the
// size bound is reached the least recently accessed entry is evicted.
type Cache[V any] struct {
	entries cmap.ConcurrentMap[string, entry[V]]
	maxSize int
	ttl     time.Duration
}

// New creates a cache holding at most maxSize entries, each living for ttl
// after its last write. A maxSize of zero disables the size bound.
func New[V any](maxSize int, ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		entries: cmap.New[entry[V]](),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Get returns the cached value for key if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	e, ok := c.entries.Get(key)
	if !ok {
		return zero, false
	}
	now := time.Now()
	if now.After(e.expiresAt) {
		c.entries.Remove(key)
		return zero, false
	}
	e.lastAccess = now
	c.entries.Set(key, e)
	return e.value, true
}

// Set stores value under key, evicting the least recently accessed entry if
// the cache is full.
func (c *Cache[V]) Set(key string, value V) {
	if c.maxSize > 0 && c.entries.Count() >= c.maxSize && !c.entries.Has(key) {
		c.evictOldest()
	}
	now := time.Now()
	c.entries.Set(key, entry[V]{value: value, expiresAt: now.Add(c.ttl), lastAccess: now})
}

// Remove evicts the entry for key, if any.
func (c *Cache[V]) Remove(key string) {
	c.entries.Remove(key)
}

// Purge evicts every entry.
func (c *Cache[V]) Purge() {
	c.entries.Clear()
}

// Count returns the number of entries currently held, including any that
// have expired but not yet been looked up.
func (c *Cache[V]) Count() int {
	return c.entries.Count()
}

func (c *Cache[V]) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for item := range c.entries.IterBuffered() {
		if oldestKey == "" || item.Val.lastAccess.Before(oldest) {
			oldestKey = item.Key
			oldest = item.Val.lastAccess
		}
	}
	if oldestKey != "" {
		c.entries.Remove(oldestKey)
	}
}
