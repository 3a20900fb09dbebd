package usecase

import (
	"context"
	"fmt"
	"product-filter-service/internal/contextkeys"
	"product-filter-service/internal/core/domain"
	"product-filter-service/internal/core/port"
	"time"

	"golang.org/x/sync/singleflight"
)

// PriceRangeCacheTTL is how long a computed catalog price range is reused.
const PriceRangeCacheTTL = 12 * time.Hour

// priceRangeRefreshTimeout bounds a shared recompute, which no longer follows
// the cancellation of the caller that started it.
const priceRangeRefreshTimeout = 30 * time.Second

const priceRangeFlightKey = "price_range"

// PriceRangeResolver serves the catalog-wide price range out of a cache and
// recomputes it from the catalog on a miss.
type PriceRangeResolver struct {
	aggregate port.PriceAggregatePort
	cache     port.PriceRangeCachePort
	hooks     []port.PriceRangeHook
	ttl       time.Duration

	group singleflight.Group
}

func NewPriceRangeResolver(aggregate port.PriceAggregatePort,
	cache port.PriceRangeCachePort,
	ttl time.Duration,
	hooks ...port.PriceRangeHook) *PriceRangeResolver {
	if ttl <= 0 {
		ttl = PriceRangeCacheTTL
	}
	return &PriceRangeResolver{
		aggregate: aggregate,
		cache:     cache,
		hooks:     hooks,
		ttl:       ttl,
	}
}

// Resolve returns the cached range or computes, stores and returns a fresh one.
func (r *PriceRangeResolver) Resolve(ctx context.Context) (domain.PriceRange, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "ResolvePriceRange",
	})

	cached, found, err := r.cache.Get(ctx)
	if err != nil {
		logger.Warn("Price range cache read failed, recomputing", port.Fields{"error": err.Error()})
	} else if found {
		logger.Debug("Price range served from cache", nil)
		return cached, nil
	}

	// concurrent misses share one aggregate query; it runs detached from the
	// leader's cancellation so waiters are not failed by it
	value, err, shared := r.group.Do(priceRangeFlightKey, func() (interface{}, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), priceRangeRefreshTimeout)
		defer cancel()
		return r.refresh(refreshCtx, logger)
	})
	if err != nil {
		return domain.PriceRange{}, err
	}
	if shared {
		logger.Debug("Price range computed by a concurrent caller", nil)
	}
	return value.(domain.PriceRange), nil
}

func (r *PriceRangeResolver) refresh(ctx context.Context, logger port.LoggerPort) (domain.PriceRange, error) {
	bounds, found, err := r.aggregate.PriceBounds(ctx)
	if err != nil {
		logger.Error("Failed to compute catalog price bounds", err, nil)
		return domain.PriceRange{}, &domain.CatalogUnavailableError{Op: "price_bounds", Err: err}
	}
	if !found {
		bounds = domain.PriceRange{}
	}

	for _, hook := range r.hooks {
		if hook != nil {
			bounds = hook(bounds)
		}
	}

	if err := r.cache.Set(ctx, bounds, r.ttl); err != nil {
		logger.Warn("Failed to store price range in cache", port.Fields{"error": err.Error()})
	}

	logger.Info("Price range recomputed", port.Fields{"min": bounds.Min, "max": bounds.Max, "found": found})
	return bounds, nil
}

// Invalidate drops the cached range; the next Resolve recomputes it.
func (r *PriceRangeResolver) Invalidate(ctx context.Context) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "InvalidatePriceRange",
	})

	if err := r.cache.Delete(ctx); err != nil {
		logger.Error("Failed to invalidate price range cache", err, nil)
		return fmt.Errorf("could not invalidate price range: %w", err)
	}

	logger.Info("Price range cache invalidated", nil)
	return nil
}
