package usecases_port

import (
	"context"
	"product-filter-service/internal/core/domain"
)

type ResolvePriceRangeUseCase interface {
	Resolve(ctx context.Context) (domain.PriceRange, error)
}

type InvalidatePriceRangeUseCase interface {
	Invalidate(ctx context.Context) error
}
