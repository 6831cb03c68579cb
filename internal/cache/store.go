// Package cache provides a read-through cache in front of a notes.Store.
package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"notes-go/internal/notes"
)

// CachedStore caches serialized records returned by GetEntry in an LRU with
// a TTL. Writes and deletes go straight to the wrapped store and update the
// cache only after they succeed. Listing is never cached.
//
// A read that misses only fills the cache if no write or delete started
// while it was reading, so a slow read cannot put stale bytes back after a
// concurrent write.
type CachedStore struct {
	notes.Store

	cache   *expirable.LRU[string, []byte]
	metrics notes.Metrics

	mu  sync.Mutex
	gen uint64 // bumped at the start and end of every write or delete
}

// NewCachedStore wraps inner with a cache of at most size entries, each
// living for ttl. A zero ttl keeps entries until they are evicted.
func NewCachedStore(inner notes.Store, size int, ttl time.Duration, metrics notes.Metrics) *CachedStore {
	if metrics == nil {
		metrics = notes.NopMetrics{}
	}
	return &CachedStore{
		Store:   inner,
		cache:   expirable.NewLRU[string, []byte](size, nil, ttl),
		metrics: metrics,
	}
}

func cacheKey(scope, id string) string {
	return scope + "\x00" + id
}

// Kind reports the wrapped backend's kind.
func (c *CachedStore) Kind() string {
	return c.Store.Kind()
}

func (c *CachedStore) GetEntry(ctx context.Context, scope, id string) ([]byte, error) {
	key := cacheKey(scope, id)
	if data, ok := c.cache.Get(key); ok {
		c.metrics.CacheHit()
		return slices.Clone(data), nil
	}
	c.metrics.CacheMiss()

	c.mu.Lock()
	start := c.gen
	c.mu.Unlock()

	data, err := c.Store.GetEntry(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.gen == start {
		c.cache.Add(key, slices.Clone(data))
	}
	c.mu.Unlock()
	return data, nil
}

// beginWrite invalidates key and returns the generation the write started at.
func (c *CachedStore) beginWrite(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.cache.Remove(key)
	return c.gen
}

// endWrite caches data for key when it is non-nil and no other write
// overlapped this one; otherwise it leaves key uncached.
func (c *CachedStore) endWrite(key string, start uint64, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if data != nil && c.gen == start+1 {
		c.cache.Add(key, slices.Clone(data))
		return
	}
	c.cache.Remove(key)
}

func (c *CachedStore) PutEntry(ctx context.Context, scope, id string, data []byte) error {
	key := cacheKey(scope, id)
	start := c.beginWrite(key)

	if err := c.Store.PutEntry(ctx, scope, id, data); err != nil {
		c.endWrite(key, start, nil)
		return err
	}
	c.endWrite(key, start, data)
	return nil
}

func (c *CachedStore) DeleteEntry(ctx context.Context, scope, id string) error {
	key := cacheKey(scope, id)
	start := c.beginWrite(key)
	err := c.Store.DeleteEntry(ctx, scope, id)
	c.endWrite(key, start, nil)
	return err
}

// Len returns the number of cached entries.
func (c *CachedStore) Len() int {
	return c.cache.Len()
}

// Purge drops every cached entry.
func (c *CachedStore) Purge() {
	c.cache.Purge()
}

func (c *CachedStore) Close() error {
	c.cache.Purge()
	return c.Store.Close()
}

var _ notes.Store = (*CachedStore)(nil)
