package lru_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/doxindex"
	"github.com/fwojciec/doxindex/lru"
	"github.com/fwojciec/doxindex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingService(calls *atomic.Int32) *mock.LookupService {
	return &mock.LookupService{
		LookupFn: func(_ context.Context, projectID, query string, _ int) ([]*doxindex.Entry, error) {
			calls.Add(1)
			return []*doxindex.Entry{{Key: projectID + ":" + query}}, nil
		},
	}
}

func TestLookupCache_Lookup(t *testing.T) {
	t.Parallel()

	t.Run("serves repeated queries from the cache", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		cache := lru.NewLookupCache(countingService(&calls), 0, 0)
		ctx := context.Background()

		first, err := cache.Lookup(ctx, "p1", "fetch", 10)
		require.NoError(t, err)
		second, err := cache.Lookup(ctx, "p1", "fetch", 10)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("shares a slot between queries with the same key prefixes", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		cache := lru.NewLookupCache(countingService(&calls), 0, 0)
		ctx := context.Background()

		_, err := cache.Lookup(ctx, "p1", "Fetch", 0)
		require.NoError(t, err)
		_, err = cache.Lookup(ctx, "p1", "fetch", 0)
		require.NoError(t, err)

		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("keys by project and limit", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		cache := lru.NewLookupCache(countingService(&calls), 0, 0)
		ctx := context.Background()

		_, err := cache.Lookup(ctx, "p1", "fetch", 0)
		require.NoError(t, err)
		_, err = cache.Lookup(ctx, "p2", "fetch", 0)
		require.NoError(t, err)
		_, err = cache.Lookup(ctx, "p1", "fetch", 5)
		require.NoError(t, err)

		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("does not cache errors", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		svc := &mock.LookupService{
			LookupFn: func(context.Context, string, string, int) ([]*doxindex.Entry, error) {
				calls.Add(1)
				return nil, errors.New("boom")
			},
		}
		cache := lru.NewLookupCache(svc, 0, 0)
		ctx := context.Background()

		_, err := cache.Lookup(ctx, "p1", "fetch", 0)
		require.Error(t, err)
		_, err = cache.Lookup(ctx, "p1", "fetch", 0)
		require.Error(t, err)

		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("evicts the least recently used result", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		cache := lru.NewLookupCache(countingService(&calls), 1, 0)
		ctx := context.Background()

		_, err := cache.Lookup(ctx, "p1", "a", 0)
		require.NoError(t, err)
		_, err = cache.Lookup(ctx, "p1", "b", 0)
		require.NoError(t, err)
		_, err = cache.Lookup(ctx, "p1", "a", 0)
		require.NoError(t, err)

		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("expires results after the TTL", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		cache := lru.NewLookupCache(countingService(&calls), 0, 20*time.Millisecond)
		ctx := context.Background()

		_, err := cache.Lookup(ctx, "p1", "fetch", 0)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			_, err := cache.Lookup(ctx, "p1", "fetch", 0)
			return err == nil && calls.Load() == 2
		}, time.Second, 10*time.Millisecond)
	})
}

func TestLookupCache_Invalidate(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	cache := lru.NewLookupCache(countingService(&calls), 0, 0)
	ctx := context.Background()

	_, err := cache.Lookup(ctx, "p1", "fetch", 0)
	require.NoError(t, err)
	_, err = cache.Lookup(ctx, "p2", "fetch", 0)
	require.NoError(t, err)

	cache.Invalidate("p1")

	_, err = cache.Lookup(ctx, "p1", "fetch", 0)
	require.NoError(t, err)
	_, err = cache.Lookup(ctx, "p2", "fetch", 0)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}
