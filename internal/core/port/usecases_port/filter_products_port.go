package usecases_port

import (
	"context"
	"product-filter-service/internal/core/domain"
)

type FilterProductsUseCase interface {
	Handle(ctx context.Context, raw domain.RawFilterInput) (*domain.FilterResponse, error)
	HandleReset(ctx context.Context, raw domain.RawFilterInput) (*domain.FilterResponse, error)
	HandlePriceRangeQuery(ctx context.Context) (domain.PriceRange, error)
}
