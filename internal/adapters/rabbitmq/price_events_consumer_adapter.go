package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"product-filter-service/internal/constants"
	"product-filter-service/internal/contextkeys"
	"product-filter-service/internal/core/domain"
	"product-filter-service/internal/core/port"
	"product-filter-service/internal/core/port/usecases_port"
	"product-filter-service/pkg/rabbitmq/rabbitmq_common"
	"product-filter-service/pkg/rabbitmq/rabbitmq_consumer"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// EventValidator checks a message body against its registered contract.
type EventValidator interface {
	ValidateEvent(eventType, eventVersion string, body []byte) error
}

// PriceEventsConsumerAdapter listens for catalog price changes and drops the
// cached price range. A burst of events is collapsed into one invalidation.
type PriceEventsConsumerAdapter struct {
	consumer  *rabbitmq_consumer.BatchConsumer
	useCase   usecases_port.InvalidatePriceRangeUseCase
	validator EventValidator
	logger    port.LoggerPort
}

type PriceEventsConsumerConfig struct {
	Consumer     rabbitmq_consumer.ConsumerConfig
	BatchSize    int
	BatchTimeout time.Duration
}

func NewPriceEventsConsumerAdapter(
	cfg PriceEventsConsumerConfig,
	useCase usecases_port.InvalidatePriceRangeUseCase,
	validator EventValidator,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*PriceEventsConsumerAdapter, error) {
	if useCase == nil {
		return nil, fmt.Errorf("invalidate price range use case cannot be nil")
	}

	adapter := &PriceEventsConsumerAdapter{
		useCase:   useCase,
		validator: validator,
		logger:    logger,
	}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_batch_consumer", "consumer_tag": cfg.Consumer.ConsumerTag})
	cfg.Consumer.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewBatchConsumer(cfg.Consumer, adapter.batchMessageHandler, cfg.BatchSize, cfg.BatchTimeout, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for price events: %w", err)
	}
	adapter.consumer = consumer

	return adapter, nil
}

func (a *PriceEventsConsumerAdapter) batchMessageHandler(ctx context.Context, deliveries []amqp.Delivery) error {
	if len(deliveries) == 0 {
		return nil
	}

	traceID, _ := deliveries[0].Headers[constants.HeaderTraceID].(string)
	if traceID == "" {
		traceID = uuid.New().String()
	}

	batchLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"batch_id":     uuid.New().String(),
		"batch_size":   len(deliveries),
		"adapter_name": "PriceEventsConsumerAdapter",
	})
	ctx = contextkeys.ContextWithLogger(ctx, batchLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	valid := 0
	affected := 0
	for _, d := range deliveries {
		event, err := a.decode(d)
		if err != nil {
			// a malformed event can never succeed; it is logged and skipped
			batchLogger.Warn("Dropping invalid price event", port.Fields{
				"message_id": d.MessageId,
				"error":      err.Error(),
			})
			continue
		}
		valid++
		affected += len(event.ProductIDs)
	}

	if valid == 0 {
		batchLogger.Info("No valid price events in batch", nil)
		return nil
	}

	if err := a.useCase.Invalidate(ctx); err != nil {
		batchLogger.Error("Price range invalidation failed, batch goes to retry", err, nil)
		return err
	}

	batchLogger.Info("Price range invalidated by catalog events", port.Fields{
		"events":            valid,
		"affected_products": affected,
	})
	return nil
}

func (a *PriceEventsConsumerAdapter) decode(d amqp.Delivery) (domain.PriceChangedEvent, error) {
	if a.validator != nil {
		eventType, _ := d.Headers[constants.HeaderEventType].(string)
		eventVersion, _ := d.Headers[constants.HeaderEventVersion].(string)
		if err := a.validator.ValidateEvent(eventType, eventVersion, d.Body); err != nil {
			return domain.PriceChangedEvent{}, err
		}
	}

	var dto PriceChangedEventDTO
	if err := json.Unmarshal(d.Body, &dto); err != nil {
		return domain.PriceChangedEvent{}, fmt.Errorf("failed to unmarshal price changed event: %w", err)
	}
	return toDomainPriceChanged(dto), nil
}

// Start implements EventListenerPort.
func (a *PriceEventsConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

// Close implements EventListenerPort.
func (a *PriceEventsConsumerAdapter) Close() error {
	return a.consumer.Close()
}
