package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"product-filter-service/internal/constants"
	"product-filter-service/internal/contextkeys"
	"product-filter-service/internal/contracts"
	"product-filter-service/internal/core/domain"
	"product-filter-service/internal/core/port"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// publisher is the part of rabbitmq_producer.Publisher the adapter needs.
type publisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

type PriceEventsPublisherAdapter struct {
	producer   publisher
	routingKey string
}

func NewPriceEventsPublisherAdapter(producer publisher, routingKey string) (*PriceEventsPublisherAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &PriceEventsPublisherAdapter{
		producer:   producer,
		routingKey: routingKey,
	}, nil
}

func (a *PriceEventsPublisherAdapter) PublishPriceChanged(ctx context.Context, event domain.PriceChangedEvent) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":   "PriceEventsPublisherAdapter",
		"routing_key": a.routingKey,
	})

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	body, err := json.Marshal(fromDomainPriceChanged(event))
	if err != nil {
		return fmt.Errorf("rabbitmq adapter: failed to encode price event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		MessageId:    uuid.New().String(),
		Headers: amqp.Table{
			constants.HeaderEventType:    contracts.PriceChangedEvent,
			constants.HeaderEventVersion: contracts.PriceChangedVersion,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers[constants.HeaderTraceID] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish price changed event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish price event: %w", err)
	}

	adapterLogger.Info("Price changed event published", port.Fields{
		"reason":        event.Reason,
		"product_count": len(event.ProductIDs),
	})
	return nil
}
