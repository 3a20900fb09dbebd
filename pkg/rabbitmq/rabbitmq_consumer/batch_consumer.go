package rabbitmq_consumer

import (
	"context"
	"fmt"
	"product-filter-service/pkg/rabbitmq/rabbitmq_common"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// BatchMessageHandler processes a batch of deliveries. A non-nil error sends
// every message of the batch around the retry loop.
type BatchMessageHandler func(ctx context.Context, deliveries []amqp.Delivery) error

// BatchConsumer collects deliveries until batchSize is reached or batchTimeout
// passes since the first message of the batch, then hands them over together.
type BatchConsumer struct {
	baseConsumer *baseConsumer
	handler      BatchMessageHandler
	batchSize    int
	batchTimeout time.Duration
}

func NewBatchConsumer(cfg ConsumerConfig, handler BatchMessageHandler, batchSize int, batchTimeout time.Duration, connManager *rabbitmq_common.ConnectionManager) (*BatchConsumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("batch Consumer: message handler is required")
	}
	if batchSize < 1 {
		return nil, fmt.Errorf("batch Consumer: batch size must be positive")
	}
	if batchTimeout <= 0 {
		return nil, fmt.Errorf("batch Consumer: batch timeout must be positive")
	}
	if cfg.PrefetchCount < batchSize {
		cfg.PrefetchCount = batchSize
	}

	bc, err := newBaseConsumer(cfg, connManager)
	if err != nil {
		return nil, fmt.Errorf("batch Consumer: %w", err)
	}

	return &BatchConsumer{
		baseConsumer: bc,
		handler:      handler,
		batchSize:    batchSize,
		batchTimeout: batchTimeout,
	}, nil
}

// StartConsuming blocks until ctx is cancelled or the connection drops.
func (c *BatchConsumer) StartConsuming(ctx context.Context) error {
	msgs, err := c.baseConsumer.consume()
	if err != nil {
		return fmt.Errorf("batch Consumer: %w", err)
	}

	c.baseConsumer.Logger.Info("[*] Waiting for messages on queue",
		"queue_name", c.baseConsumer.actualQueueName,
		"batch_size", c.batchSize,
		"batch_timeout", c.batchTimeout)

	c.baseConsumer.wg.Add(1)
	go func() {
		defer c.baseConsumer.wg.Done()
		c.collect(ctx, msgs)
	}()

	return c.baseConsumer.waitForShutdown(ctx)
}

func (c *BatchConsumer) collect(ctx context.Context, msgs <-chan amqp.Delivery) {
	batch := make([]amqp.Delivery, 0, c.batchSize)

	// the timer only runs while a batch is open
	timer := time.NewTimer(c.batchTimeout)
	if !timer.Stop() {
		<-timer.C
	}

	flush := func() {
		c.processBatch(ctx, batch)
		batch = make([]amqp.Delivery, 0, c.batchSize)
	}

	for {
		select {
		case <-ctx.Done():
			c.baseConsumer.Logger.Info("Context cancelled, processing final batch", "batch_size", len(batch))
			// the final batch still gets processed after shutdown started
			c.processBatch(context.WithoutCancel(ctx), batch)
			return

		case msg, ok := <-msgs:
			if !ok {
				c.baseConsumer.Logger.Info("Deliveries channel closed, processing final batch", "batch_size", len(batch))
				c.processBatch(context.WithoutCancel(ctx), batch)
				return
			}

			if len(batch) == 0 {
				timer.Reset(c.batchTimeout)
			}
			batch = append(batch, msg)

			if len(batch) >= c.batchSize {
				if !timer.Stop() {
					<-timer.C
				}
				c.baseConsumer.Logger.Debug("Batch size reached", "batch_size", len(batch))
				flush()
			}

		case <-timer.C:
			if len(batch) > 0 {
				c.baseConsumer.Logger.Debug("Batch timeout reached", "batch_size", len(batch))
				flush()
			}
		}
	}
}

// processBatch runs the handler and acknowledges the whole batch on success.
func (c *BatchConsumer) processBatch(ctx context.Context, batch []amqp.Delivery) {
	if len(batch) == 0 {
		return
	}

	err := c.handler(ctx, batch)
	if err == nil {
		lastTag := batch[len(batch)-1].DeliveryTag
		if ackErr := c.baseConsumer.channel.Ack(lastTag, true); ackErr != nil {
			c.baseConsumer.Logger.Error(ackErr, "Failed to ack batch", "last_delivery_tag", lastTag)
			return
		}
		c.baseConsumer.Logger.Debug("Batch acknowledged", "batch_size", len(batch))
		return
	}

	c.baseConsumer.Logger.Error(err, "Handler returned error for batch", "batch_size", len(batch))

	if !c.baseConsumer.config.EnableRetryMechanism {
		lastTag := batch[len(batch)-1].DeliveryTag
		_ = c.baseConsumer.channel.Nack(lastTag, true, false)
		c.baseConsumer.Logger.Warn("Retry disabled, batch rejected without requeue", "batch_size", len(batch))
		return
	}

	for _, d := range batch {
		c.baseConsumer.retryOrDeadLetter(d)
	}
}

func (c *BatchConsumer) Close() error {
	c.baseConsumer.Logger.Info("Closing consumer")
	return c.baseConsumer.Close()
}
