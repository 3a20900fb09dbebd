package domain

type SortKey string

const (
	SortDefault      SortKey = "default"
	SortPriceAsc     SortKey = "price_asc"
	SortPriceDesc    SortKey = "price_desc"
	SortNewest       SortKey = "newest"
	SortOldest       SortKey = "oldest"
	SortBestSelling  SortKey = "best_selling"
	SortRating       SortKey = "rating"
	SortAlphabetical SortKey = "alphabetical"
)

type SortField string

const (
	SortFieldPrice         SortField = "price"
	SortFieldCreatedAt     SortField = "created_at"
	SortFieldTotalSales    SortField = "total_sales"
	SortFieldAverageRating SortField = "average_rating"
	SortFieldTitle         SortField = "title"
)

type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

type SortDescriptor struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// sortTable is the one mapping from sort key to catalog ordering.
// Keys missing here fall back to title ascending.
var sortTable = map[SortKey]SortDescriptor{
	SortPriceAsc:    {Field: SortFieldPrice, Direction: Ascending},
	SortPriceDesc:   {Field: SortFieldPrice, Direction: Descending},
	SortNewest:      {Field: SortFieldCreatedAt, Direction: Descending},
	SortOldest:      {Field: SortFieldCreatedAt, Direction: Ascending},
	SortBestSelling: {Field: SortFieldTotalSales, Direction: Descending},
	SortRating:      {Field: SortFieldAverageRating, Direction: Descending},
}

var titleAscending = SortDescriptor{Field: SortFieldTitle, Direction: Ascending}

// SortFor resolves a sort key into the catalog ordering.
func SortFor(key SortKey) SortDescriptor {
	if d, ok := sortTable[key]; ok {
		return d
	}
	return titleAscending
}

// ParseSortKey maps a request token onto a known key. Unknown tokens become alphabetical.
func ParseSortKey(token string) SortKey {
	key := SortKey(token)
	switch key {
	case SortDefault, SortAlphabetical:
		return key
	}
	if _, ok := sortTable[key]; ok {
		return key
	}
	return SortAlphabetical
}
