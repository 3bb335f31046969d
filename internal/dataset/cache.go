package dataset

import "sync"

// CacheStats tracks read-through cache performance.
type CacheStats struct {
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Entries  int   `json:"entries"`
	Evicted  int64 `json:"evicted"`
	Reloaded int64 `json:"reloaded"`
}

// Cache is the process-wide read-through cache of prepared tables, keyed by
// source path. It is explicit state passed by reference, never an implicit
// global, and is invalidated only by process restart or Invalidate.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]*Prepared
	hits     int64
	misses   int64
	evicted  int64
	reloaded int64
}

// NewCache creates an empty prepared-table cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Prepared)}
}

// Get returns the cached prepared table for a source path, if any.
func (c *Cache) Get(path string) (*Prepared, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[path]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return p, ok
}

// Set stores a prepared table for a source path.
func (c *Cache) Set(path string, p *Prepared) {
	c.mu.Lock()
	if _, existed := c.entries[path]; existed {
		c.reloaded++
	}
	c.entries[path] = p
	c.mu.Unlock()
}

// Invalidate removes one entry. The next request for the path reloads from
// the source table.
func (c *Cache) Invalidate(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[path]; !ok {
		return false
	}
	delete(c.entries, path)
	c.evicted++
	return true
}

// InvalidateAll clears the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evicted += int64(len(c.entries))
	c.entries = make(map[string]*Prepared)
}

// Stats returns a snapshot of cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Hits:     c.hits,
		Misses:   c.misses,
		Entries:  len(c.entries),
		Evicted:  c.evicted,
		Reloaded: c.reloaded,
	}
}
