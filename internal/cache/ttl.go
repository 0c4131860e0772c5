// Package cache provides a size-bounded, time-bounded memoization cache
// for upstream API responses. Entries expire after a fixed TTL and the
// least recently used entry is evicted once the size cap is hit, so the
// cache cannot grow without bound across distinct query keys. Concurrent
// requests for the same uncached key are collapsed into a single upstream
// call.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/cardpulse/cardpulse/internal/metrics"
)

// TTL memoizes values of type V per string key for a fixed duration.
type TTL[V any] struct {
	name    string
	entries *expirable.LRU[string, V]
	group   singleflight.Group
}

// NewTTL creates a cache named for metrics, holding at most size entries,
// each valid for ttl after insertion.
func NewTTL[V any](name string, size int, ttl time.Duration) *TTL[V] {
	return &TTL[V]{
		name:    name,
		entries: expirable.NewLRU[string, V](size, nil, ttl),
	}
}

// GetOrFetch returns the cached value for key, or calls fetch to compute
// it. While one fetch for a key is in flight, other callers for the same
// key wait for its result instead of issuing duplicate upstream calls.
// Failed fetches are not cached.
func (c *TTL[V]) GetOrFetch(ctx context.Context, key string, fetch func(ctx context.Context) (V, error)) (V, error) {
	if v, ok := c.entries.Get(key); ok {
		metrics.CacheHits.WithLabelValues(c.name).Inc()
		return v, nil
	}
	metrics.CacheMisses.WithLabelValues(c.name).Inc()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: another caller may have just filled it.
		if v, ok := c.entries.Get(key); ok {
			return v, nil
		}
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.entries.Add(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Remove drops a single key.
func (c *TTL[V]) Remove(key string) {
	c.entries.Remove(key)
}

// Len returns the number of live entries.
func (c *TTL[V]) Len() int {
	return c.entries.Len()
}
