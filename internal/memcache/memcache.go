// Package memcache implements a simple typed in-memory cache.
package memcache

import (
	"log/slog"
	"sync"
)

// Cache is an in-memory cache for values of type V which are keyed by K.
//
// The zero value is an empty cache ready to use.
type Cache[K comparable, V any] struct {
	mu    sync.Mutex
	items map[K]V
}

// New returns a new cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{}
}

// Clear removes all items.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.items)
	c.items = nil
	slog.Debug("cache cleared", "removed", n)
}

// Delete deletes an item. Deleting an item that does not exist is not an error.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Exists reports whether an item exists.
func (c *Cache[K, V]) Exists(key K) bool {
	_, ok := c.Get(key)
	return ok
}

// Get returns an item and reports whether it was found.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

// GetOrCreate returns an item. When it does not exist yet it is created with create and stored.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	if ok {
		return v
	}
	v = create()
	c.set(key, v)
	return v
}

// Len returns the number of items.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Set stores an item in the cache.
//
// If an item with the same key already exists it will be overwritten.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value)
}

func (c *Cache[K, V]) set(key K, value V) {
	if c.items == nil {
		c.items = make(map[K]V)
	}
	c.items[key] = value
}
