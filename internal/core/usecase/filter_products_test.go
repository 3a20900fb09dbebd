package usecase

import (
	"context"
	"errors"
	"product-filter-service/internal/core/domain"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orchestratorFixture struct {
	catalog   *fakeCatalog
	renderer  *fakeRenderer
	aggregate *fakeAggregate
	uc        *FilterProductsUseCase
}

func newOrchestratorFixture(page *domain.CatalogPage) *orchestratorFixture {
	f := &orchestratorFixture{
		catalog:   &fakeCatalog{page: page},
		renderer:  &fakeRenderer{},
		aggregate: &fakeAggregate{bounds: domain.PriceRange{Min: 5, Max: 500}, found: true},
	}
	resolver := NewPriceRangeResolver(f.aggregate, &fakeCache{}, 0)
	f.uc = NewFilterProductsUseCase(
		newTestNormalizer(),
		NewQueryBuilder(),
		f.catalog,
		NewResponseAssembler(f.renderer, ""),
		resolver,
	)
	return f
}

func TestHandle_CategoryAndPriceWindow(t *testing.T) {
	f := newOrchestratorFixture(&domain.CatalogPage{IDs: []domain.ProductID{41, 42}, TotalCount: 14, TotalPages: 2})

	resp, err := f.uc.Handle(context.Background(), domain.RawFilterInput{
		KeyCategories: []any{"shoes"},
		KeyMinPrice:   "10",
		KeyMaxPrice:   "50",
		KeySortBy:     "price_asc",
		KeyPage:       "2",
		KeyPerPage:    "12",
	})
	require.NoError(t, err)

	require.Len(t, f.catalog.specs, 1)
	spec := f.catalog.specs[0]
	assert.Equal(t, []domain.TaxonomyPredicate{
		{Taxonomy: domain.CategoryTaxonomy, Terms: []string{"shoes"}, Match: domain.MatchAny},
	}, spec.Taxonomies)
	assert.Equal(t, &domain.PriceRangePredicate{Min: 10, Max: 50}, spec.Price)
	assert.Equal(t, 12, spec.Offset)
	assert.Equal(t, 12, spec.Limit)

	assert.Equal(t, 14, resp.Count)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Equal(t, 2, resp.CurrentPage)
	assert.Equal(t, []domain.ProductID{41, 42}, f.renderer.rendered)
}

func TestHandle_SearchWithNoMatches(t *testing.T) {
	f := newOrchestratorFixture(&domain.CatalogPage{})

	resp, err := f.uc.Handle(context.Background(), domain.RawFilterInput{
		KeySearch: "zzzz-nonexistent",
		KeyPage:   "1",
	})
	require.NoError(t, err)

	require.NotNil(t, f.catalog.specs[0].Search)
	assert.Equal(t, "zzzz-nonexistent", *f.catalog.specs[0].Search)
	assert.Equal(t, DefaultNoProductsMessage, resp.HTML)
	assert.Equal(t, 0, resp.Count)
	assert.Equal(t, 0, resp.TotalPages)
	assert.Equal(t, 1, resp.CurrentPage)
}

func TestHandleReset_EquivalentToEmptyFilters(t *testing.T) {
	page := &domain.CatalogPage{IDs: []domain.ProductID{1, 2, 3}, TotalCount: 30, TotalPages: 3}
	f := newOrchestratorFixture(page)
	ctx := context.Background()

	_, err := f.uc.HandleReset(ctx, domain.RawFilterInput{
		KeyCategories: []any{"shoes", "bags"},
		KeyAttributes: map[string]any{"pa_color": []any{"red"}},
		KeyMinPrice:   "10",
		KeyMaxPrice:   "20",
		KeySearch:     "boots",
		KeyRating:     "4",
		KeySortBy:     "newest",
		KeyPage:       "2",
		KeyPerPage:    "10",
	})
	require.NoError(t, err)

	_, err = f.uc.Handle(ctx, domain.RawFilterInput{KeyPage: "2", KeyPerPage: "10"})
	require.NoError(t, err)

	require.Len(t, f.catalog.specs, 2)
	if diff := cmp.Diff(f.catalog.specs[1], f.catalog.specs[0]); diff != "" {
		t.Errorf("reset spec differs from empty filter spec (-empty +reset):\n%s", diff)
	}
	assert.Nil(t, f.catalog.specs[0].Price)
	assert.Equal(t, 10, f.catalog.specs[0].Offset)
}

func TestHandleReset_NoProductsAvailable(t *testing.T) {
	f := newOrchestratorFixture(&domain.CatalogPage{})

	resp, err := f.uc.HandleReset(context.Background(), domain.RawFilterInput{})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrNoProductsAvailable)
}

func TestHandle_StageFailures(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		f := newOrchestratorFixture(&domain.CatalogPage{})
		_, err := f.uc.Handle(context.Background(), domain.RawFilterInput{KeyAttributes: []any{"x"}})

		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Empty(t, f.catalog.specs)
	})

	t.Run("catalog", func(t *testing.T) {
		f := newOrchestratorFixture(nil)
		f.catalog.err = errors.New("timeout")

		_, err := f.uc.Handle(context.Background(), domain.RawFilterInput{})
		assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
		assert.Empty(t, f.renderer.rendered)
	})

	t.Run("render", func(t *testing.T) {
		f := newOrchestratorFixture(&domain.CatalogPage{IDs: []domain.ProductID{9}, TotalCount: 1, TotalPages: 1})
		f.renderer.failOn = 9

		resp, err := f.uc.Handle(context.Background(), domain.RawFilterInput{})
		assert.Error(t, err)
		assert.Nil(t, resp)
	})
}

func TestHandlePriceRangeQuery(t *testing.T) {
	f := newOrchestratorFixture(&domain.CatalogPage{})

	got, err := f.uc.HandlePriceRangeQuery(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PriceRange{Min: 5, Max: 500}, got)

	_, err = f.uc.HandlePriceRangeQuery(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.aggregate.Calls())
}
