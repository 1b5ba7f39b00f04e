package analysis

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of sources a cache remembers by default
const DefaultCacheSize = 16

// LoadFunc produces a fresh analysis, typically by running an extraction
type LoadFunc func(ctx context.Context) (*Analysis, error)

// Cache memoizes analyses per source. Loads of one source are serialized so
// concurrent callers trigger a single extraction; other sources are neither
// blocked by that load nor block it.
type Cache struct {
	mu      sync.Mutex
	loading map[string]*sync.Mutex
	entries *lru.Cache[string, *Analysis]
}

// NewCache creates a cache holding at most size analyses
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, *Analysis](size)
	if err != nil {
		return nil, err
	}
	return &Cache{
		loading: make(map[string]*sync.Mutex),
		entries: entries,
	}, nil
}

// sourceLock returns the mutex serializing loads of source
func (c *Cache) sourceLock(source string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.loading[source]
	if !ok {
		lock = &sync.Mutex{}
		c.loading[source] = lock
	}
	return lock
}

// Get returns the cached analysis for source, calling load when there is
// none or when refresh is set. Failed loads are not cached.
func (c *Cache) Get(ctx context.Context, source string, refresh bool, load LoadFunc) (*Analysis, error) {
	if !refresh {
		if a, ok := c.entries.Get(source); ok {
			return a, nil
		}
	}

	lock := c.sourceLock(source)
	lock.Lock()
	defer lock.Unlock()

	// another caller may have finished loading while this one waited
	if !refresh {
		if a, ok := c.entries.Get(source); ok {
			return a, nil
		}
	}

	a, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.entries.Add(source, a)
	return a, nil
}

// Invalidate forgets the analysis for source
func (c *Cache) Invalidate(source string) {
	c.entries.Remove(source)
}

// Len returns the number of cached analyses
func (c *Cache) Len() int {
	return c.entries.Len()
}
