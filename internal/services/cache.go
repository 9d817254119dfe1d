package services

import (
	"sync"
	"time"
)

// resultCache is the engine's optional in-memory result cache. Entries expire
// after the configured TTL; a zero TTL disables caching entirely. Nothing is
// ever written on error, so a failed store read is retried on the next call.
type resultCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value   any
	expires time.Time
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *resultCache) get(key string) (any, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.value, true
}

func (c *resultCache) put(key string, value any) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *resultCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cached runs loader through the cache. The loader result is stored only on
// success.
func cached[T any](c *resultCache, key string, loader func() (T, error)) (T, error) {
	if hit, ok := c.get(key); ok {
		if value, ok := hit.(T); ok {
			return value, nil
		}
	}
	value, err := loader()
	if err != nil {
		return value, err
	}
	c.put(key, value)
	return value, nil
}
