package lru

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCache_Eviction(t *testing.T) {
	cache := New[string, int](2)
	cache.Set("a", 1)
	cache.Set("b", 2)
	_, _ = cache.Get("a")
	cache.Set("c", 3)

	_, ok := cache.Get("b")
	assert.False(t, ok)
	value, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, value)
	assert.Equal(t, 2, cache.Len())

	cache.Purge()
	assert.Equal(t, 0, cache.Len())
}

func TestCache_GetOrLoad(t *testing.T) {
	cache := New[string, int](0)
	calls := 0
	load := func() (int, error) {
		calls++
		return 7, nil
	}
	for i := 0; i < 3; i++ {
		value, err := cache.GetOrLoad("x", load)
		assert.Nil(t, err)
		assert.Equal(t, 7, value)
	}
	assert.Equal(t, 1, calls)

	_, err := cache.GetOrLoad("y", func() (int, error) { return 0, errors.New("boom") })
	assert.NotNil(t, err)
	_, ok := cache.Get("y")
	assert.False(t, ok)
}
