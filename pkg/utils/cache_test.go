package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

func TestInMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	c := NewInMemoryCache(0)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "enrichment:paused", "1", 0))

	v, err := c.Get(ctx, "enrichment:paused")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	ttl, err := c.TTL(ctx, "enrichment:paused")
	require.NoError(t, err)
	assert.Zero(t, ttl)
}

func TestInMemoryCache_Expiry(t *testing.T) {
	c := NewInMemoryCache(0)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 1, 10*time.Millisecond))
	ok, _ := c.Exists(ctx, "k")
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
	ok, _ = c.Exists(ctx, "k")
	assert.False(t, ok)
}

func TestInMemoryCache_DeleteAndClear(t *testing.T) {
	c := NewInMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", 1, 0))
	require.NoError(t, c.Set(ctx, "b", 2, 0))

	require.NoError(t, c.Delete(ctx, "a"))
	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)

	require.NoError(t, c.Clear(ctx))
	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
}
