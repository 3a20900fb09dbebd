package domain

import "math"

// UnboundedPrice marks a missing upper price bound.
const UnboundedPrice = float64(math.MaxInt64)

// Taxonomy names the normalizer routes dedicated request keys to.
const (
	CategoryTaxonomy  = "product_cat"
	IntentionTaxonomy = "intention"
)

// RawFilterInput is the untyped request payload handed over by the transport layer.
type RawFilterInput map[string]any

type StockStatus string

const (
	StockInStock    StockStatus = "instock"
	StockOutOfStock StockStatus = "outofstock"
)

// FilterRequest - the normalized shopper selection, one per incoming call.
type FilterRequest struct {
	Categories  []string
	Attributes  map[string][]string // taxonomy -> term slugs
	MinPrice    float64
	MaxPrice    float64
	Search      string
	RatingFloor *int
	StockStatus *StockStatus
	SortKey     SortKey
	Page        int
	PerPage     int
}

// HasPriceBounds reports whether the shopper narrowed the full price range.
func (r FilterRequest) HasPriceBounds() bool {
	return r.MinPrice > 0 || r.MaxPrice < UnboundedPrice
}

// Cleared drops every filter dimension and keeps only the pagination window.
func (r FilterRequest) Cleared() FilterRequest {
	return FilterRequest{
		Attributes: map[string][]string{},
		MinPrice:   0,
		MaxPrice:   UnboundedPrice,
		SortKey:    SortDefault,
		Page:       r.Page,
		PerPage:    r.PerPage,
	}
}
