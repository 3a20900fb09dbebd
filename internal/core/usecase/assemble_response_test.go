package usecase

import (
	"context"
	"product-filter-service/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble_EmptyPage(t *testing.T) {
	renderer := &fakeRenderer{}
	assembler := NewResponseAssembler(renderer, "")

	req := domain.FilterRequest{Categories: []string{"shoes"}, MaxPrice: domain.UnboundedPrice, Page: 1, PerPage: 12}
	resp, err := assembler.Assemble(context.Background(), domain.CatalogPage{}, req)
	require.NoError(t, err)

	assert.Equal(t, DefaultNoProductsMessage, resp.HTML)
	assert.Equal(t, 0, resp.Count)
	assert.Equal(t, 0, resp.TotalPages)
	assert.Equal(t, 1, resp.CurrentPage)
	assert.Equal(t, []string{"shoes"}, resp.EchoedFilters.Categories)
	assert.Nil(t, resp.EchoedFilters.MaxPrice)
	assert.Empty(t, renderer.rendered)
}

func TestAssemble_RendersInExecutorOrder(t *testing.T) {
	renderer := &fakeRenderer{}
	assembler := NewResponseAssembler(renderer, "Nothing here")

	page := domain.CatalogPage{IDs: []domain.ProductID{7, 3, 9}, TotalCount: 27, TotalPages: 3}
	req := domain.FilterRequest{MinPrice: 10, MaxPrice: 50, Page: 2, PerPage: 12, SortKey: domain.SortPriceAsc}
	resp, err := assembler.Assemble(context.Background(), page, req)
	require.NoError(t, err)

	assert.Equal(t, `<li data-id="7"></li><li data-id="3"></li><li data-id="9"></li>`, resp.HTML)
	assert.Equal(t, []domain.ProductID{7, 3, 9}, renderer.rendered)
	assert.Equal(t, 27, resp.Count)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, 2, resp.CurrentPage)
	require.NotNil(t, resp.EchoedFilters.MaxPrice)
	assert.Equal(t, 50.0, *resp.EchoedFilters.MaxPrice)
	assert.Equal(t, domain.SortPriceAsc, resp.EchoedFilters.SortBy)
}

func TestAssemble_RenderFailureShortCircuits(t *testing.T) {
	renderer := &fakeRenderer{failOn: 3}
	assembler := NewResponseAssembler(renderer, "")

	page := domain.CatalogPage{IDs: []domain.ProductID{1, 3, 5}, TotalCount: 3, TotalPages: 1}
	resp, err := assembler.Assemble(context.Background(), page, domain.FilterRequest{Page: 1, PerPage: 12})

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, []domain.ProductID{1}, renderer.rendered)
}
