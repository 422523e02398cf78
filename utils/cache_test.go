package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpiry(t *testing.T) {
	cache, err := NewTTLCache[string](10, time.Minute)
	require.NoError(t, err)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.SetClock(func() time.Time { return now })

	cache.Set("user-1", "Ada")

	got, ok := cache.Get("user-1")
	assert.True(t, ok)
	assert.Equal(t, "Ada", got)

	now = now.Add(59 * time.Second)
	_, ok = cache.Get("user-1")
	assert.True(t, ok, "entry should still be fresh before the TTL")

	now = now.Add(2 * time.Second)
	_, ok = cache.Get("user-1")
	assert.False(t, ok, "entry should expire after the TTL")
}

func TestTTLCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache, err := NewTTLCache[int](2, time.Hour)
	require.NoError(t, err)

	cache.Set("a", 1)
	cache.Set("b", 2)
	_, _ = cache.Get("a")
	cache.Set("c", 3)

	_, ok := cache.Get("b")
	assert.False(t, ok)
	v, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestTTLCacheDelete(t *testing.T) {
	cache, err := NewTTLCache[int](2, time.Hour)
	require.NoError(t, err)

	cache.Set("a", 1)
	cache.Delete("a")

	_, ok := cache.Get("a")
	assert.False(t, ok)
}
