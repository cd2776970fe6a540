package datasource

import (
	"sync"
	"time"
)

// QueryCache caches instant-query results to avoid refetching the same
// series during one invocation
type QueryCache struct {
	data  map[string]*cacheEntry
	ttl   time.Duration
	mutex sync.RWMutex
}

type cacheEntry struct {
	value     float64
	expiresAt time.Time
}

func NewQueryCache(ttl time.Duration) *QueryCache {
	return &QueryCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
	}
}

func (c *QueryCache) Get(key string) (float64, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.data[key]
	if !exists {
		return 0, false
	}

	if time.Now().After(entry.expiresAt) {
		// Expired; the next Set overwrites it
		return 0, false
	}

	return entry.value, true
}

func (c *QueryCache) Set(key string, value float64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = &cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *QueryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data = make(map[string]*cacheEntry)
}
