package search

import (
	"sync"

	"github.com/tair/ministore/internal/catalog/domain"
)

const defaultCacheEntries = 256

// Cache memoizes Run by (catalog version, params). A new catalog version drops
// every entry.
type Cache struct {
	engine     *Engine
	maxEntries int

	mu      sync.Mutex
	version uint64
	entries map[Params]Result
}

// NewCache creates a cache in front of engine.
func NewCache(engine *Engine) *Cache {
	return &Cache{
		engine:     engine,
		maxEntries: defaultCacheEntries,
		entries:    make(map[Params]Result),
	}
}

// Run returns the cached result for params, computing it on a miss.
func (c *Cache) Run(products []domain.Product, version uint64, params Params) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if version != c.version {
		c.version = version
		clear(c.entries)
	}

	if r, ok := c.entries[params]; ok {
		return copyResult(r)
	}

	r := c.engine.Run(products, params)
	if len(c.entries) >= c.maxEntries {
		clear(c.entries)
	}
	c.entries[params] = r
	return copyResult(r)
}

// Len reports the number of memoized results.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func copyResult(r Result) Result {
	r.Items = domain.CloneAll(r.Items)
	return r
}
