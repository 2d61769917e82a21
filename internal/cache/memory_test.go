package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Close()
	ctx := context.Background()

	_, err := c.Get(ctx, "all_toys")
	assert.ErrorIs(t, err, ErrCacheMiss)

	value := []byte(`[{"toyName":"Red Racer"}]`)
	require.NoError(t, c.Set(ctx, "all_toys", value, time.Minute))
	value[0] = 'x'

	got, err := c.Get(ctx, "all_toys")
	require.NoError(t, err)
	assert.Equal(t, `[{"toyName":"Red Racer"}]`, string(got))
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), -time.Second))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Minute))

	require.NoError(t, c.Delete(ctx, "a"))
	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_Capacity(t *testing.T) {
	c := NewMemoryCache(2)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "stale", []byte("2"), -time.Second))

	// Full: the expired entry makes room.
	require.NoError(t, c.Set(ctx, "b", []byte("3"), time.Minute))
	assert.Equal(t, 2, c.Len())

	// Full with live entries: the write is skipped.
	require.NoError(t, c.Set(ctx, "c", []byte("4"), time.Minute))
	_, err := c.Get(ctx, "c")
	assert.ErrorIs(t, err, ErrCacheMiss)

	// Existing keys can still be overwritten.
	require.NoError(t, c.Set(ctx, "a", []byte("5"), time.Minute))
	got, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "5", string(got))
}

func TestMemoryCache_CloseTwice(t *testing.T) {
	c := NewMemoryCache(1)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
