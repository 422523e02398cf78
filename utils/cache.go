package utils

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheItem[V any] struct {
	data      V
	expiresAt time.Time
}

// TTLCache is a bounded LRU whose entries also expire after a fixed TTL.
type TTLCache[V any] struct {
	lruCache *lru.Cache[string, cacheItem[V]]
	ttl      time.Duration

	mu  sync.RWMutex
	now func() time.Time
}

func NewTTLCache[V any](size int, ttl time.Duration) (*TTLCache[V], error) {
	l, err := lru.New[string, cacheItem[V]](size)
	if err != nil {
		return nil, err
	}
	return &TTLCache[V]{lruCache: l, ttl: ttl, now: time.Now}, nil
}

// SetClock replaces the time source, for tests.
func (c *TTLCache[V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

func (c *TTLCache[V]) clock() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now()
}

func (c *TTLCache[V]) Set(key string, data V) {
	c.lruCache.Add(key, cacheItem[V]{data: data, expiresAt: c.clock().Add(c.ttl)})
}

// Get returns the cached value, dropping it if it has expired.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	var zero V
	item, ok := c.lruCache.Get(key)
	if !ok {
		return zero, false
	}
	if c.clock().After(item.expiresAt) {
		c.lruCache.Remove(key)
		return zero, false
	}
	return item.data, true
}

func (c *TTLCache[V]) Delete(key string) {
	c.lruCache.Remove(key)
}

func (c *TTLCache[V]) Purge() {
	c.lruCache.Purge()
}
