package postgres

import (
	"product-filter-service/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplySpec_DefaultSpec(t *testing.T) {
	where, args := applySpec(domain.CatalogQuerySpec{TaxonomyMatch: domain.MatchAll})

	assert.Equal(t, "WHERE p.status = 'publish'", where)
	assert.Empty(t, args)
}

func TestApplySpec_AllPredicates(t *testing.T) {
	search := "50%_off"
	rating := 4
	stock := domain.StockInStock
	spec := domain.CatalogQuerySpec{
		Taxonomies: []domain.TaxonomyPredicate{
			{Taxonomy: domain.CategoryTaxonomy, Terms: []string{"shoes", "bags"}, Match: domain.MatchAny},
			{Taxonomy: "pa_color", Terms: []string{"red"}, Match: domain.MatchAny},
		},
		TaxonomyMatch: domain.MatchAll,
		Price:         &domain.PriceRangePredicate{Min: 10, Max: 50},
		Search:        &search,
		RatingFloor:   &rating,
		StockStatus:   &stock,
	}

	where, args := applySpec(spec)

	want := "WHERE p.status = 'publish'" +
		" AND (EXISTS (SELECT 1 FROM product_terms pt WHERE pt.product_id = p.id AND pt.taxonomy = $1 AND pt.term_slug = ANY($2))" +
		" AND EXISTS (SELECT 1 FROM product_terms pt WHERE pt.product_id = p.id AND pt.taxonomy = $3 AND pt.term_slug = ANY($4)))" +
		" AND p.price >= $5 AND p.price <= $6" +
		" AND (p.title ILIKE $7 OR p.description ILIKE $7)" +
		" AND p.average_rating >= $8" +
		" AND p.stock_status = $9"
	assert.Equal(t, want, where)
	assert.Equal(t, []interface{}{
		domain.CategoryTaxonomy, []string{"shoes", "bags"},
		"pa_color", []string{"red"},
		10.0, 50.0,
		`%50\%\_off%`,
		4,
		"instock",
	}, args)
}

func TestApplySpec_TaxonomiesAnyJoinsWithOr(t *testing.T) {
	where, _ := applySpec(domain.CatalogQuerySpec{
		Taxonomies: []domain.TaxonomyPredicate{
			{Taxonomy: "a", Terms: []string{"x"}, Match: domain.MatchAny},
			{Taxonomy: "b", Terms: []string{"y"}, Match: domain.MatchAny},
		},
		TaxonomyMatch: domain.MatchAny,
	})
	assert.Contains(t, where, "ANY($2)) OR EXISTS")
}

func TestApplySpec_PriceBoundsSkippedWhenOpen(t *testing.T) {
	where, args := applySpec(domain.CatalogQuerySpec{
		Price: &domain.PriceRangePredicate{Min: 0, Max: domain.UnboundedPrice},
	})
	assert.Equal(t, "WHERE p.status = 'publish'", where)
	assert.Empty(t, args)

	where, args = applySpec(domain.CatalogQuerySpec{
		Price: &domain.PriceRangePredicate{Min: 0, Max: 30},
	})
	assert.Equal(t, "WHERE p.status = 'publish' AND p.price <= $1", where)
	assert.Equal(t, []interface{}{30.0}, args)
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "ORDER BY p.price DESC, p.id ASC",
		orderClause(domain.SortDescriptor{Field: domain.SortFieldPrice, Direction: domain.Descending}))
	assert.Equal(t, "ORDER BY p.title ASC, p.id ASC",
		orderClause(domain.SortDescriptor{Field: "p.id; DROP TABLE products", Direction: "sideways"}))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 12))
	assert.Equal(t, 1, totalPages(12, 12))
	assert.Equal(t, 2, totalPages(13, 12))
	assert.Equal(t, 0, totalPages(5, 0))
}
