package rabbitmq

import (
	"product-filter-service/internal/core/domain"
	"time"
)

// PriceChangedEventDTO is the wire form of CatalogPriceChangedEvent/1.0.0.
type PriceChangedEventDTO struct {
	ProductIDs []int64   `json:"product_ids,omitempty"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

func toDomainPriceChanged(dto PriceChangedEventDTO) domain.PriceChangedEvent {
	ids := make([]domain.ProductID, 0, len(dto.ProductIDs))
	for _, id := range dto.ProductIDs {
		ids = append(ids, domain.ProductID(id))
	}
	return domain.PriceChangedEvent{
		ProductIDs: ids,
		Reason:     dto.Reason,
		OccurredAt: dto.OccurredAt,
	}
}

func fromDomainPriceChanged(event domain.PriceChangedEvent) PriceChangedEventDTO {
	ids := make([]int64, 0, len(event.ProductIDs))
	for _, id := range event.ProductIDs {
		ids = append(ids, int64(id))
	}
	return PriceChangedEventDTO{
		ProductIDs: ids,
		Reason:     event.Reason,
		OccurredAt: event.OccurredAt.UTC(),
	}
}
