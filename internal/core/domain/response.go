package domain

// EchoedFilters reflects the selections that produced a response back to the client.
type EchoedFilters struct {
	Categories  []string            `json:"categories"`
	Attributes  map[string][]string `json:"attributes"`
	MinPrice    float64             `json:"min_price"`
	MaxPrice    *float64            `json:"max_price,omitempty"` // nil when unbounded
	Search      string              `json:"search"`
	Rating      *int                `json:"rating,omitempty"`
	StockStatus *StockStatus        `json:"stock_status,omitempty"`
	SortBy      SortKey             `json:"sort_by"`
	PerPage     int                 `json:"per_page"`
}

type FilterResponse struct {
	HTML          string
	Count         int
	TotalPages    int
	CurrentPage   int
	EchoedFilters EchoedFilters
}

// EchoFilters copies the request selections as they were normalized.
func EchoFilters(req FilterRequest) EchoedFilters {
	echo := EchoedFilters{
		Categories:  req.Categories,
		Attributes:  req.Attributes,
		MinPrice:    req.MinPrice,
		Search:      req.Search,
		Rating:      req.RatingFloor,
		StockStatus: req.StockStatus,
		SortBy:      req.SortKey,
		PerPage:     req.PerPage,
	}
	if echo.Categories == nil {
		echo.Categories = []string{}
	}
	if echo.Attributes == nil {
		echo.Attributes = map[string][]string{}
	}
	if req.MaxPrice < UnboundedPrice {
		maxPrice := req.MaxPrice
		echo.MaxPrice = &maxPrice
	}
	return echo
}
