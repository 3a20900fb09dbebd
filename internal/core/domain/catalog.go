package domain

import "time"

type ProductID int64

// CatalogPage - one page of matching products as returned by the catalog executor.
type CatalogPage struct {
	IDs        []ProductID
	TotalCount int
	TotalPages int
}

// PriceRange - catalog-wide price bounds over published, priced products.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ProductCard holds what a single product card needs to render.
type ProductCard struct {
	ID            ProductID
	Title         string
	Permalink     string
	ImageURL      string
	Price         float64
	RegularPrice  *float64
	AverageRating float64
	StockStatus   StockStatus
}

func (c ProductCard) OnSale() bool {
	return c.RegularPrice != nil && *c.RegularPrice > c.Price
}

// PriceChangedEvent is published by inventory/pricing collaborators when prices move.
type PriceChangedEvent struct {
	ProductIDs []ProductID
	Reason     string
	OccurredAt time.Time
}
