package port

import (
	"context"
	"product-filter-service/internal/core/domain"
)

// PriceEventPublisherPort announces catalog price changes to other replicas.
type PriceEventPublisherPort interface {
	PublishPriceChanged(ctx context.Context, event domain.PriceChangedEvent) error
}
