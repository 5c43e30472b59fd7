// Package cache provides a small TTL cache used to keep repeated status-API
// polls from hammering the metrics collectors.
package cache

import (
	"sync"
	"time"
)

type item struct {
	value      interface{}
	expiration int64
}

// Cache is a thread-safe in-memory cache with a fixed TTL.
type Cache struct {
	items     map[string]item
	mu        sync.RWMutex
	ttl       time.Duration
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a cache. A background sweep removes expired entries until
// Close is called.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		items: make(map[string]item),
		ttl:   ttl,
		done:  make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// Close stops the background sweep. Safe to call more than once; the cache
// itself stays usable, entries just expire lazily on Get.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Set stores a value under key for the cache's TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item{
		value:      value,
		expiration: time.Now().Add(c.ttl).UnixNano(),
	}
}

// Get retrieves a value; expired entries read as missing.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, found := c.items[key]
	if !found || time.Now().UnixNano() > it.expiration {
		return nil, false
	}
	return it.value, true
}

// GetOrSet returns the cached value or computes and stores a fresh one.
func (c *Cache) GetOrSet(key string, fn func() (interface{}, error)) (interface{}, error) {
	if value, found := c.Get(key); found {
		return value, nil
	}

	value, err := fn()
	if err != nil {
		return nil, err
	}

	c.Set(key, value)
	return value, nil
}

func (c *Cache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now().UnixNano()
			for key, it := range c.items {
				if now > it.expiration {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
