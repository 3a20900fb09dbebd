package port

import (
	"context"
	"product-filter-service/internal/core/domain"
)

// CardRendererPort renders a single product card as an HTML fragment.
type CardRendererPort interface {
	RenderCard(ctx context.Context, id domain.ProductID) (string, error)
}
