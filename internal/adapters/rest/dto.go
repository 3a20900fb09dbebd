package rest

import "product-filter-service/internal/core/domain"

// FilterResponse is the success body of the filter endpoints. The echoed
// selections are flattened next to the pagination fields.
type FilterResponse struct {
	Success     bool   `json:"success"`
	HTML        string `json:"html"`
	Count       int    `json:"count"`
	MaxPages    int    `json:"maxPages"`
	CurrentPage int    `json:"currentPage"`
	domain.EchoedFilters
}

type PriceRangeResponse struct {
	Success bool    `json:"success"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type StatusResponse struct {
	Success bool `json:"success"`
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func toFilterResponse(res *domain.FilterResponse) FilterResponse {
	return FilterResponse{
		Success:       true,
		HTML:          res.HTML,
		Count:         res.Count,
		MaxPages:      res.TotalPages,
		CurrentPage:   res.CurrentPage,
		EchoedFilters: res.EchoedFilters,
	}
}
