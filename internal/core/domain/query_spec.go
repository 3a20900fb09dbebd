package domain

type MatchMode string

const (
	MatchAny MatchMode = "ANY"
	MatchAll MatchMode = "ALL"
)

type TaxonomyPredicate struct {
	Taxonomy string    `json:"taxonomy"`
	Terms    []string  `json:"terms"`
	Match    MatchMode `json:"match"`
}

// PriceRangePredicate is an inclusive [Min, Max] range.
type PriceRangePredicate struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// CatalogQuerySpec - the normalized query handed to the catalog executor.
// Taxonomy predicates are combined with TaxonomyMatch, terms inside one predicate with its Match.
type CatalogQuerySpec struct {
	Taxonomies    []TaxonomyPredicate  `json:"taxonomies"`
	TaxonomyMatch MatchMode            `json:"taxonomy_match"`
	Price         *PriceRangePredicate `json:"price,omitempty"`
	Search        *string              `json:"search,omitempty"`
	RatingFloor   *int                 `json:"rating_floor,omitempty"`
	StockStatus   *StockStatus         `json:"stock_status,omitempty"`
	Sort          SortDescriptor       `json:"sort"`
	Offset        int                  `json:"offset"`
	Limit         int                  `json:"limit"`
}
