package port

import (
	"context"
	"product-filter-service/internal/core/domain"
	"time"
)

// PriceRangeCachePort stores the single cached catalog price range.
type PriceRangeCachePort interface {
	Get(ctx context.Context) (domain.PriceRange, bool, error)
	Set(ctx context.Context, value domain.PriceRange, ttl time.Duration) error
	Delete(ctx context.Context) error
}
