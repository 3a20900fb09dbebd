package port

import (
	"context"
	"product-filter-service/internal/core/domain"
)

// CatalogQueryPort executes a query spec against the product catalog.
type CatalogQueryPort interface {
	Query(ctx context.Context, spec domain.CatalogQuerySpec) (*domain.CatalogPage, error)
}

// PriceAggregatePort computes min/max price over published, priced products.
// found is false when the catalog holds no priced product.
type PriceAggregatePort interface {
	PriceBounds(ctx context.Context) (bounds domain.PriceRange, found bool, err error)
}

// ProductCardSourcePort loads the data one product card is rendered from.
type ProductCardSourcePort interface {
	FindCard(ctx context.Context, id domain.ProductID) (*domain.ProductCard, error)
}
