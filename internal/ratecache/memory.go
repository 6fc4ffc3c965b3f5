package ratecache

import (
	"context"
	"sort"
	"sync"
	"time"
)

var _ Cache = (*MemoryCache)(nil)

type entry struct {
	rate     float64
	storedAt time.Time
}

// MemoryCache is an in-process Cache guarded by a single RWMutex.
// Only map access happens under the lock.
type MemoryCache struct {
	mu  sync.RWMutex
	m   map[string]entry
	ttl time.Duration
	now func() time.Time
}

// Option configures a MemoryCache.
type Option func(*MemoryCache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *MemoryCache) { c.now = now }
}

// NewMemoryCache creates an empty cache with the given TTL.
func NewMemoryCache(ttl time.Duration, opts ...Option) *MemoryCache {
	c := &MemoryCache{
		m:   make(map[string]entry),
		ttl: ttl,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the rate stored under key if it is younger than the TTL.
func (c *MemoryCache) Get(_ context.Context, key string) (float64, bool) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok || c.now().Sub(e.storedAt) >= c.ttl {
		return 0, false
	}
	return e.rate, true
}

// Set stores rate under key, stamped with the current time.
func (c *MemoryCache) Set(_ context.Context, key string, rate float64) {
	now := c.now()
	c.mu.Lock()
	c.m[key] = entry{rate: rate, storedAt: now}
	c.mu.Unlock()
}

// Clear drops all entries.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.m = make(map[string]entry)
	c.mu.Unlock()
	return nil
}

// Stats reports every stored entry, expired ones included, sorted by key.
func (c *MemoryCache) Stats(_ context.Context) (Stats, error) {
	now := c.now()
	c.mu.RLock()
	entries := make([]EntryStats, 0, len(c.m))
	for k, e := range c.m {
		entries = append(entries, entryStats(k, e.rate, e.storedAt, now, c.ttl))
	}
	c.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return Stats{TotalEntries: len(entries), TTL: c.ttl, Entries: entries}, nil
}

// Sweep deletes expired entries and returns how many were removed.
// The lock is taken once per key so readers are never held up for a full pass.
func (c *MemoryCache) Sweep() int {
	c.mu.RLock()
	keys := make([]string, 0, len(c.m))
	for k := range c.m {
		keys = append(keys, k)
	}
	c.mu.RUnlock()

	removed := 0
	for _, k := range keys {
		c.mu.Lock()
		if e, ok := c.m[k]; ok && c.now().Sub(e.storedAt) >= c.ttl {
			delete(c.m, k)
			removed++
		}
		c.mu.Unlock()
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (c *MemoryCache) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}
