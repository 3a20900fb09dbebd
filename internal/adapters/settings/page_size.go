package settings

import "fmt"

// StaticPageSize serves the storefront page size from configuration.
type StaticPageSize struct {
	perPage int
}

func NewStaticPageSize(perPage int) (*StaticPageSize, error) {
	if perPage < 1 {
		return nil, fmt.Errorf("default page size must be positive, got %d", perPage)
	}
	return &StaticPageSize{perPage: perPage}, nil
}

func (s *StaticPageSize) DefaultPerPage() int {
	return s.perPage
}
