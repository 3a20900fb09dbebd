package port

import "product-filter-service/internal/core/domain"

// QuerySpecHook may add or override predicates of a finished query spec.
type QuerySpecHook func(spec domain.CatalogQuerySpec, req domain.FilterRequest) domain.CatalogQuerySpec

// PriceRangeHook post-processes a freshly computed price range before it is cached.
type PriceRangeHook func(value domain.PriceRange) domain.PriceRange
