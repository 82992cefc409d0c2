package cache

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache is a generic TTL cache. Three things live in one of these: generated
// AI responses keyed by prompt hash, scraped result pages keyed by URL, and
// browser session state keyed by session ID.
type Cache[T any] struct {
	impl      *ristretto.Cache[string, T]
	cacheType string
}

// New creates a new cache with the given cost function and cache type
func New[T any](costFunc func(T) int64, cacheType string) (*Cache[T], error) {
	impl, err := ristretto.NewCache(&ristretto.Config[string, T]{
		NumCounters: 1e5,     // number of keys to track frequency of
		MaxCost:     1 << 24, // maximum cost of cache (16MB)
		BufferItems: 64,      // number of keys per Get buffer
		Metrics:     true,
		Cost:        costFunc,
	})
	if err != nil {
		return nil, err
	}

	return &Cache[T]{
		impl:      impl,
		cacheType: cacheType,
	}, nil
}

// Get retrieves a value from the cache
func (c *Cache[T]) Get(key string) (T, bool) {
	return c.impl.Get(key)
}

// SetWithTTL stores a value in the cache with a specific TTL
func (c *Cache[T]) SetWithTTL(key string, value T, cost int64, ttl time.Duration) bool {
	return c.impl.SetWithTTL(key, value, cost, ttl)
}

// Delete removes a single key from the cache
func (c *Cache[T]) Delete(key string) {
	c.impl.Del(key)
}

// Clear removes all items from the cache
func (c *Cache[T]) Clear() {
	c.impl.Clear()
}

// Wait waits for the cache to finish processing pending sets
func (c *Cache[T]) Wait() {
	c.impl.Wait()
}

// Stats returns hit/miss counters for the health endpoint
func (c *Cache[T]) Stats() map[string]interface{} {
	metrics := c.impl.Metrics

	hitRate := 0.0
	totalRequests := metrics.Hits() + metrics.Misses()
	if totalRequests > 0 {
		hitRate = float64(metrics.Hits()) / float64(totalRequests) * 100
	}

	return map[string]interface{}{
		"cache_type": c.cacheType,
		"hits":       metrics.Hits(),
		"misses":     metrics.Misses(),
		"sets":       metrics.KeysAdded(),
		"hit_rate":   hitRate,
	}
}
