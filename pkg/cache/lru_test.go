package cache_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/athletereach/outreach/pkg/cache"
)

func TestLRUCache(t *testing.T) {
	t.Parallel()

	t.Run("get and put", func(t *testing.T) {
		t.Parallel()

		c := cache.NewLRUCache[string, int](2)
		c.Put("a", 1)

		got, ok := c.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 1, got)

		_, ok = c.Get("missing")
		assert.False(t, ok)
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		t.Parallel()

		c := cache.NewLRUCache[string, int](2)
		c.Put("a", 1)
		c.Put("b", 2)

		// Touch "a" so "b" is the eviction candidate.
		_, _ = c.Get("a")
		c.Put("c", 3)

		_, ok := c.Get("b")
		assert.False(t, ok)
		_, ok = c.Get("a")
		assert.True(t, ok)
		assert.Equal(t, 2, c.Len())
	})

	t.Run("put updates in place", func(t *testing.T) {
		t.Parallel()

		c := cache.NewLRUCache[string, int](1)
		c.Put("a", 1)
		c.Put("a", 2)

		got, _ := c.Get("a")
		assert.Equal(t, 2, got)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("remove", func(t *testing.T) {
		t.Parallel()

		c := cache.NewLRUCache[string, int](2)
		c.Put("a", 1)

		assert.True(t, c.Remove("a"))
		assert.False(t, c.Remove("a"))
		_, ok := c.Get("a")
		assert.False(t, ok)
	})

	t.Run("zero capacity panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() { cache.NewLRUCache[string, int](0) })
	})

	t.Run("concurrent access", func(t *testing.T) {
		t.Parallel()

		c := cache.NewLRUCache[string, int](64)
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					key := fmt.Sprintf("k%d", j%32)
					c.Put(key, n)
					_, _ = c.Get(key)
					if j%10 == 0 {
						c.Remove(key)
					}
				}
			}(i)
		}
		wg.Wait()
		assert.LessOrEqual(t, c.Len(), 64)
	})
}
