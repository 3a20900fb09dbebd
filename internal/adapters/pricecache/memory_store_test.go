package pricecache

import (
	"context"
	"product-filter-service/internal/core/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return clock }

	_, found, err := store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, domain.PriceRange{Min: 2, Max: 40}, 12*time.Hour))

	clock = clock.Add(11 * time.Hour)
	got, found, err := store.Get(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, domain.PriceRange{Min: 2, Max: 40}, got)

	clock = clock.Add(time.Hour)
	_, found, _ = store.Get(ctx)
	assert.False(t, found, "entry must expire exactly at its TTL")

	require.NoError(t, store.Set(ctx, domain.PriceRange{Min: 1, Max: 3}, time.Hour))
	require.NoError(t, store.Delete(ctx))
	_, found, _ = store.Get(ctx)
	assert.False(t, found)
}
