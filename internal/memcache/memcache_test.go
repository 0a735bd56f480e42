package memcache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ErikKalkoken/mountroulette/internal/memcache"
)

func TestCache(t *testing.T) {
	t.Run("can set and get an item", func(t *testing.T) {
		c := memcache.New[int, string]()
		c.Set(1, "alpha")
		got, ok := c.Get(1)
		if assert.True(t, ok) {
			assert.Equal(t, "alpha", got)
		}
	})
	t.Run("reports missing items", func(t *testing.T) {
		c := memcache.New[int, string]()
		_, ok := c.Get(1)
		assert.False(t, ok)
		assert.False(t, c.Exists(1))
	})
	t.Run("can delete an item", func(t *testing.T) {
		c := memcache.New[int, string]()
		c.Set(1, "alpha")
		c.Delete(1)
		assert.False(t, c.Exists(1))
		c.Delete(2)
	})
	t.Run("can clear all items", func(t *testing.T) {
		c := memcache.New[int, string]()
		c.Set(1, "alpha")
		c.Set(2, "bravo")
		c.Clear()
		assert.Equal(t, 0, c.Len())
	})
	t.Run("zero value is usable", func(t *testing.T) {
		var c memcache.Cache[string, int]
		c.Set("a", 1)
		assert.Equal(t, 1, c.Len())
	})
}

func TestCacheGetOrCreate(t *testing.T) {
	t.Run("creates missing items once", func(t *testing.T) {
		c := memcache.New[int, string]()
		var calls int
		create := func() string {
			calls++
			return "alpha"
		}
		x1 := c.GetOrCreate(1, create)
		x2 := c.GetOrCreate(1, create)
		assert.Equal(t, "alpha", x1)
		assert.Equal(t, "alpha", x2)
		assert.Equal(t, 1, calls)
	})
}
