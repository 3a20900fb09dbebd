package usecase

import (
	"math"
	"product-filter-service/internal/core/domain"
	"product-filter-service/internal/core/port"
	"sort"
)

// QueryBuilder translates a normalized FilterRequest into a catalog query spec.
// Build is pure: equal requests produce equal specs.
type QueryBuilder struct {
	hooks []port.QuerySpecHook
}

func NewQueryBuilder(hooks ...port.QuerySpecHook) *QueryBuilder {
	return &QueryBuilder{hooks: hooks}
}

func (b *QueryBuilder) Build(req domain.FilterRequest) domain.CatalogQuerySpec {
	spec := domain.CatalogQuerySpec{
		Taxonomies:    make([]domain.TaxonomyPredicate, 0, len(req.Attributes)+1),
		TaxonomyMatch: domain.MatchAll,
		RatingFloor:   req.RatingFloor,
		StockStatus:   req.StockStatus,
		Sort:          domain.SortFor(req.SortKey),
	}

	if len(req.Categories) > 0 {
		spec.Taxonomies = append(spec.Taxonomies, domain.TaxonomyPredicate{
			Taxonomy: domain.CategoryTaxonomy,
			Terms:    append([]string(nil), req.Categories...),
			Match:    domain.MatchAny,
		})
	}

	names := make([]string, 0, len(req.Attributes))
	for name, terms := range req.Attributes {
		if len(terms) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		spec.Taxonomies = append(spec.Taxonomies, domain.TaxonomyPredicate{
			Taxonomy: name,
			Terms:    append([]string(nil), req.Attributes[name]...),
			Match:    domain.MatchAny,
		})
	}

	// inverted ranges are passed through as given and simply match nothing
	if req.HasPriceBounds() {
		spec.Price = &domain.PriceRangePredicate{Min: req.MinPrice, Max: req.MaxPrice}
	}

	if req.Search != "" {
		search := req.Search
		spec.Search = &search
	}

	page, perPage := req.Page, req.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	if maxPage := (math.MaxInt-perPage)/perPage + 1; page > maxPage {
		page = maxPage
	}
	spec.Offset = (page - 1) * perPage
	spec.Limit = perPage

	for _, hook := range b.hooks {
		if hook != nil {
			spec = hook(spec, req)
		}
	}
	return spec
}
