package usecase

import (
	"context"
	"fmt"
	"product-filter-service/internal/core/domain"
	"product-filter-service/internal/core/port"
	"strings"
)

// DefaultNoProductsMessage is the fragment returned for an empty result page.
const DefaultNoProductsMessage = "No products found"

type ResponseAssembler struct {
	renderer          port.CardRendererPort
	noProductsMessage string
}

func NewResponseAssembler(renderer port.CardRendererPort, noProductsMessage string) *ResponseAssembler {
	if noProductsMessage == "" {
		noProductsMessage = DefaultNoProductsMessage
	}
	return &ResponseAssembler{
		renderer:          renderer,
		noProductsMessage: noProductsMessage,
	}
}

// Assemble renders the page ids in executor order and attaches pagination and echoed filters.
func (a *ResponseAssembler) Assemble(ctx context.Context, page domain.CatalogPage, req domain.FilterRequest) (*domain.FilterResponse, error) {
	resp := &domain.FilterResponse{
		Count:         page.TotalCount,
		TotalPages:    page.TotalPages,
		CurrentPage:   req.Page,
		EchoedFilters: domain.EchoFilters(req),
	}

	if len(page.IDs) == 0 {
		resp.HTML = a.noProductsMessage
		return resp, nil
	}

	var html strings.Builder
	for _, id := range page.IDs {
		card, err := a.renderer.RenderCard(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("could not render product card %d: %w", id, err)
		}
		html.WriteString(card)
	}
	resp.HTML = html.String()

	return resp, nil
}
