// internal/config/cache.go
package config

import (
	"sync"
	"time"
)

// Cache memoizes loaded site configurations with a staleness window. It
// replaces the process-global configuration variable of older deployments:
// callers hold an explicit Cache and inject it where needed, and
// invalidation is a method call instead of ambient state.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     *Config
	fetchedAt time.Time
}

// NewCache creates a cache whose entries go stale after ttl. A zero ttl
// means entries never expire on their own and must be invalidated.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached configuration for a site, or nil when missing or
// stale.
func (c *Cache) Get(site string) *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[site]
	if !ok {
		return nil
	}
	if c.ttl > 0 && c.now().Sub(entry.fetchedAt) > c.ttl {
		return nil
	}
	return entry.value
}

// Put stores a configuration keyed by site name.
func (c *Cache) Put(site string, cfg *Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[site] = cacheEntry{value: cfg, fetchedAt: c.now()}
}

// Invalidate drops one site's entry. Used on forced refresh.
func (c *Cache) Invalidate(site string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, site)
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// GetOrLoad returns the cached configuration or loads a fresh one with
// load, caching the result.
func (c *Cache) GetOrLoad(site string, load func() (*Config, error)) (*Config, error) {
	if cfg := c.Get(site); cfg != nil {
		return cfg, nil
	}

	cfg, err := load()
	if err != nil {
		return nil, err
	}
	c.Put(site, cfg)
	return cfg, nil
}
