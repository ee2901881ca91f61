package classification

import (
	"sync"
	"time"
)

// DefaultRequestRetry is how long an unanswered enrichment request blocks a new one
const DefaultRequestRetry = time.Hour

type cachedEntry struct {
	entry    Entry
	storedAt time.Time
}

// SectorCache holds enrichment results and the set of symbols with a lookup in flight.
// A zero TTL keeps entries until explicitly invalidated.
type SectorCache struct {
	mu           sync.RWMutex
	entries      map[string]cachedEntry
	requested    map[string]time.Time
	ttl          time.Duration
	requestRetry time.Duration
	now          func() time.Time
}

// NewSectorCache creates an empty cache
func NewSectorCache(ttl time.Duration) *SectorCache {
	return &SectorCache{
		entries:      make(map[string]cachedEntry),
		requested:    make(map[string]time.Time),
		ttl:          ttl,
		requestRetry: DefaultRequestRetry,
		now:          time.Now,
	}
}

// WithClock replaces the time source; used by tests
func (c *SectorCache) WithClock(now func() time.Time) *SectorCache {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// WithRequestRetry sets how long a pending request marker is honoured
func (c *SectorCache) WithRequestRetry(d time.Duration) *SectorCache {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestRetry = d
	return c
}

// Get returns a live entry for the symbol
func (c *SectorCache) Get(symbol string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, ok := c.entries[symbol]
	if !ok || c.expired(cached) {
		return Entry{}, false
	}
	return cached.entry, true
}

// Put stores an entry and clears any pending request for the symbol
func (c *SectorCache) Put(symbol string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[symbol] = cachedEntry{entry: entry, storedAt: c.now()}
	delete(c.requested, symbol)
}

// MarkRequested records that a lookup for symbol is starting.
// It returns false when the symbol is already cached or a lookup is still pending.
func (c *SectorCache) MarkRequested(symbol string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.entries[symbol]; ok && !c.expired(cached) {
		return false
	}
	if at, ok := c.requested[symbol]; ok && c.now().Sub(at) < c.requestRetry {
		return false
	}
	c.requested[symbol] = c.now()
	return true
}

// Pending reports whether a lookup for symbol is marked in flight
func (c *SectorCache) Pending(symbol string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.requested[symbol]
	return ok
}

// Invalidate drops the entry and pending marker for one symbol
func (c *SectorCache) Invalidate(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, symbol)
	delete(c.requested, symbol)
}

// InvalidateAll empties the cache
func (c *SectorCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cachedEntry)
	c.requested = make(map[string]time.Time)
}

// Sweep removes expired entries and stale request markers, returning how many were removed
func (c *SectorCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for symbol, cached := range c.entries {
		if c.expired(cached) {
			delete(c.entries, symbol)
			removed++
		}
	}
	now := c.now()
	for symbol, at := range c.requested {
		if now.Sub(at) >= c.requestRetry {
			delete(c.requested, symbol)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not
func (c *SectorCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *SectorCache) expired(cached cachedEntry) bool {
	return c.ttl > 0 && c.now().Sub(cached.storedAt) >= c.ttl
}
