package usecase

import (
	"math"
	"product-filter-service/internal/core/domain"
)

// WholeUnitPriceRange widens the range to whole currency units so slider
// bounds never cut off the cheapest or the most expensive product.
func WholeUnitPriceRange(value domain.PriceRange) domain.PriceRange {
	return domain.PriceRange{
		Min: math.Floor(value.Min),
		Max: math.Ceil(value.Max),
	}
}
