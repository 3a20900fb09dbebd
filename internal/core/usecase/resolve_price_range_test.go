package usecase

import (
	"context"
	"errors"
	"math"
	"product-filter-service/internal/core/domain"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_ReusesCachedRange(t *testing.T) {
	aggregate := &fakeAggregate{bounds: domain.PriceRange{Min: 3, Max: 250}, found: true}
	cache := &fakeCache{}
	resolver := NewPriceRangeResolver(aggregate, cache, 0)
	ctx := context.Background()

	first, err := resolver.Resolve(ctx)
	require.NoError(t, err)
	second, err := resolver.Resolve(ctx)
	require.NoError(t, err)

	assert.Equal(t, domain.PriceRange{Min: 3, Max: 250}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, aggregate.Calls())
	assert.Equal(t, PriceRangeCacheTTL, cache.ttl)
}

func TestResolve_InvalidateForcesRecompute(t *testing.T) {
	aggregate := &fakeAggregate{bounds: domain.PriceRange{Min: 1, Max: 10}, found: true}
	cache := &fakeCache{}
	resolver := NewPriceRangeResolver(aggregate, cache, time.Hour)
	ctx := context.Background()

	_, err := resolver.Resolve(ctx)
	require.NoError(t, err)
	require.NoError(t, resolver.Invalidate(ctx))

	aggregate.bounds = domain.PriceRange{Min: 2, Max: 20}
	got, err := resolver.Resolve(ctx)
	require.NoError(t, err)

	assert.Equal(t, domain.PriceRange{Min: 2, Max: 20}, got)
	assert.Equal(t, 2, aggregate.Calls())
	assert.Equal(t, 1, cache.deleted)
}

func TestResolve_EmptyCatalogIsZeroRange(t *testing.T) {
	resolver := NewPriceRangeResolver(&fakeAggregate{found: false}, &fakeCache{}, 0)

	got, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PriceRange{}, got)
}

func TestResolve_HooksRunBeforeCaching(t *testing.T) {
	wholeUnits := func(r domain.PriceRange) domain.PriceRange {
		return domain.PriceRange{Min: math.Floor(r.Min), Max: math.Ceil(r.Max)}
	}
	cache := &fakeCache{}
	resolver := NewPriceRangeResolver(&fakeAggregate{bounds: domain.PriceRange{Min: 4.99, Max: 120.1}, found: true}, cache, 0, wholeUnits)

	got, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PriceRange{Min: 4, Max: 121}, got)
	require.NotNil(t, cache.value)
	assert.Equal(t, got, *cache.value)
}

func TestResolve_CatalogFailure(t *testing.T) {
	resolver := NewPriceRangeResolver(&fakeAggregate{err: errors.New("connection refused")}, &fakeCache{}, 0)

	_, err := resolver.Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}

func TestResolve_CacheFailuresDegrade(t *testing.T) {
	aggregate := &fakeAggregate{bounds: domain.PriceRange{Min: 1, Max: 2}, found: true}
	cache := &fakeCache{getErr: errors.New("redis down"), setErr: errors.New("redis down")}
	resolver := NewPriceRangeResolver(aggregate, cache, 0)

	got, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PriceRange{Min: 1, Max: 2}, got)
}

func TestResolve_ConcurrentMissesShareOneQuery(t *testing.T) {
	aggregate := &fakeAggregate{bounds: domain.PriceRange{Min: 1, Max: 9}, found: true, delay: 50 * time.Millisecond}
	resolver := NewPriceRangeResolver(aggregate, &fakeCache{}, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := resolver.Resolve(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, domain.PriceRange{Min: 1, Max: 9}, got)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, aggregate.Calls(), 2)
}

func TestResolve_CancelledCallerDoesNotFailSharedRefresh(t *testing.T) {
	t.Run("already cancelled caller", func(t *testing.T) {
		aggregate := &fakeAggregate{bounds: domain.PriceRange{Min: 2, Max: 40}, found: true}
		cache := &fakeCache{}
		resolver := NewPriceRangeResolver(aggregate, cache, 0)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		got, err := resolver.Resolve(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.PriceRange{Min: 2, Max: 40}, got)
		require.NotNil(t, cache.value)
		assert.Equal(t, got, *cache.value)
	})

	t.Run("leader cancelled while waiters share its query", func(t *testing.T) {
		aggregate := &fakeAggregate{bounds: domain.PriceRange{Min: 1, Max: 9}, found: true, delay: 100 * time.Millisecond}
		resolver := NewPriceRangeResolver(aggregate, &fakeCache{}, 0)

		leaderCtx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = resolver.Resolve(leaderCtx)
		}()
		go func() {
			defer wg.Done()
			time.Sleep(10 * time.Millisecond)
			got, err := resolver.Resolve(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, domain.PriceRange{Min: 1, Max: 9}, got)
		}()

		time.Sleep(30 * time.Millisecond)
		cancel()
		wg.Wait()

		assert.Equal(t, 1, aggregate.Calls())
	})
}
