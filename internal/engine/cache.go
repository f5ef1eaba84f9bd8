package engine

import (
	"sync"
	"time"
)

// CacheStats reports profile cache effectiveness
type CacheStats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// cacheEntry holds one table's profiles with its expiry
type cacheEntry struct {
	profiles  []ColumnProfile
	expiresAt time.Time
}

// ProfileCache is an explicit, injectable in-memory cache of column profiles
// keyed by table name. Entries are independent per table; a single RWMutex
// guards the map since entries are small and swaps are cheap. A TTL of zero
// disables caching entirely.
type ProfileCache struct {
	ttl    time.Duration
	mu     sync.RWMutex
	hits   uint64
	misses uint64

	entries map[string]cacheEntry
}

// NewProfileCache creates a profile cache with the given TTL
func NewProfileCache(ttl time.Duration) *ProfileCache {
	return &ProfileCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached profiles for a table, if present and fresh
func (c *ProfileCache) Get(table string) ([]ColumnProfile, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.RLock()
	entry, ok := c.entries[table]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		if ok {
			delete(c.entries, table)
		}
		c.misses++
		c.mu.Unlock()

		return nil, false
	}

	c.mu.Lock()
	c.hits++
	c.mu.Unlock()

	return entry.profiles, true
}

// Set stores profiles for a table
func (c *ProfileCache) Set(table string, profiles []ColumnProfile) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[table] = cacheEntry{
		profiles:  profiles,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Invalidate drops one table's cached profiles
func (c *ProfileCache) Invalidate(table string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, table)
}

// Clear drops every cached profile
func (c *ProfileCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
}

// Stats returns hit/miss counters and the live entry count
func (c *ProfileCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return CacheStats{
		Entries: len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
	}
}
