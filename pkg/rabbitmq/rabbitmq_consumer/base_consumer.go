package rabbitmq_consumer

import (
	"context"
	"fmt"
	"product-filter-service/pkg/rabbitmq/rabbitmq_common"
	"product-filter-service/pkg/rabbitmq/rabbitmq_producer"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// baseConsumer holds channel setup, topology declaration and the retry/DLX plumbing.
type baseConsumer struct {
	config            ConsumerConfig
	connection        *amqp.Connection
	channel           *amqp.Channel
	actualQueueName   string
	finalDlxPublisher *rabbitmq_producer.Publisher
	wg                sync.WaitGroup

	Logger rabbitmq_common.Logger
}

func newBaseConsumer(cfg ConsumerConfig, connManager *rabbitmq_common.ConnectionManager) (*baseConsumer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("base Consumer: %w", err)
	}

	c := &baseConsumer{
		config: cfg,
		Logger: logger,
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("base Consumer: failed to get channel from manager: %w", err)
	}
	c.connection = conn
	c.channel = ch
	c.Logger.Debug("Channel obtained from ConnectionManager")

	if err := c.setupTopology(); err != nil {
		_ = c.channel.Close()
		return nil, fmt.Errorf("base Consumer: setup failed: %w", err)
	}

	if cfg.EnableRetryMechanism {
		dlxPublisher, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:       cfg.Config,
			ExchangeName: cfg.FinalDLXExchange,
			Logger:       logger,
		}, connManager)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("base Consumer: failed to create final DLX publisher: %w", err)
		}
		c.finalDlxPublisher = dlxPublisher
	}

	return c, nil
}

func (c *baseConsumer) setupTopology() error {
	if c.config.PrefetchCount > 0 || c.config.PrefetchSize > 0 {
		c.Logger.Debug("Setting QoS",
			"prefetch_count", c.config.PrefetchCount,
			"prefetch_size", c.config.PrefetchSize,
			"global", c.config.QosGlobal,
		)
		if err := c.channel.Qos(c.config.PrefetchCount, c.config.PrefetchSize, c.config.QosGlobal); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	if c.config.EnableRetryMechanism {
		if c.config.QueueArgs == nil {
			c.config.QueueArgs = amqp.Table{}
		}
		// rejected messages of the main queue go to the retry exchange
		c.config.QueueArgs["x-dead-letter-exchange"] = c.config.RetryExchange
	}

	c.actualQueueName = c.config.QueueName
	if c.config.DeclareQueue {
		c.Logger.Debug("Declaring queue",
			"name", c.config.QueueName,
			"durable", c.config.DurableQueue,
			"exclusive", c.config.ExclusiveQueue,
			"auto_delete", c.config.AutoDeleteQueue,
		)
		q, err := c.channel.QueueDeclare(
			c.config.QueueName,
			c.config.DurableQueue,
			c.config.AutoDeleteQueue,
			c.config.ExclusiveQueue,
			false, // no-wait
			c.config.QueueArgs,
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue '%s': %w", c.config.QueueName, err)
		}
		c.actualQueueName = q.Name
	}

	if c.config.DeclareExchangeForBind {
		c.Logger.Debug("Declaring exchange",
			"name", c.config.ExchangeNameForBind,
			"type", c.config.ExchangeTypeForBind,
			"durable", c.config.DurableExchangeForBind,
		)
		err := c.channel.ExchangeDeclare(
			c.config.ExchangeNameForBind,
			c.config.ExchangeTypeForBind,
			c.config.DurableExchangeForBind,
			false, // auto-deleted
			false, // internal
			false, // no-wait
			c.config.ExchangeArgsForBind,
		)
		if err != nil {
			return fmt.Errorf("failed to declare exchange '%s' for binding: %w", c.config.ExchangeNameForBind, err)
		}
	}

	if c.config.ExchangeNameForBind != "" {
		c.Logger.Debug("Binding queue to exchange",
			"queue_name", c.actualQueueName,
			"exchange_name", c.config.ExchangeNameForBind,
			"routing_key", c.config.RoutingKeyForBind,
		)
		err := c.channel.QueueBind(
			c.actualQueueName,
			c.config.RoutingKeyForBind,
			c.config.ExchangeNameForBind,
			false, // no-wait
			c.config.BindingArgs,
		)
		if err != nil {
			return fmt.Errorf("failed to bind queue '%s' to exchange '%s': %w", c.actualQueueName, c.config.ExchangeNameForBind, err)
		}
	}

	if c.config.EnableRetryMechanism {
		if err := c.setupRetryTopology(); err != nil {
			return err
		}
	}

	c.Logger.Debug("Setup complete", "queue", c.actualQueueName)
	return nil
}

func (c *baseConsumer) setupRetryTopology() error {
	c.Logger.Debug("Declaring final DLX and DLQ",
		"dlx_name", c.config.FinalDLXExchange,
		"dlq_name", c.config.FinalDLQ,
	)
	if err := c.channel.ExchangeDeclare(c.config.FinalDLXExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLX: %w", err)
	}
	if _, err := c.channel.QueueDeclare(c.config.FinalDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLQ: %w", err)
	}
	if err := c.channel.QueueBind(c.config.FinalDLQ, c.config.FinalDLQRoutingKey, c.config.FinalDLXExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind final DLQ: %w", err)
	}

	c.Logger.Debug("Declaring retry exchange and wait queue",
		"exchange", c.config.RetryExchange,
		"queue", c.config.RetryQueue,
		"ttl_ms", c.config.RetryTTL,
	)
	if err := c.channel.ExchangeDeclare(c.config.RetryExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare retry exchange: %w", err)
	}
	// expired messages flow back into the main exchange with their original routing key
	_, err := c.channel.QueueDeclare(c.config.RetryQueue, true, false, false, false, amqp.Table{
		"x-message-ttl":          int32(c.config.RetryTTL),
		"x-dead-letter-exchange": c.config.ExchangeNameForBind,
	})
	if err != nil {
		return fmt.Errorf("failed to declare retry-wait queue: %w", err)
	}
	if err := c.channel.QueueBind(c.config.RetryQueue, "", c.config.RetryExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind retry-wait queue: %w", err)
	}
	return nil
}

// consume registers the consumer with manual acknowledgements.
func (c *baseConsumer) consume() (<-chan amqp.Delivery, error) {
	if c.channel == nil || c.connection == nil || c.connection.IsClosed() {
		return nil, fmt.Errorf("not connected")
	}
	msgs, err := c.channel.Consume(
		c.actualQueueName,
		c.config.ConsumerTag,
		false, // auto-ack
		c.config.ExclusiveConsumer,
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register a consumer on queue '%s': %w", c.actualQueueName, err)
	}
	return msgs, nil
}

// waitForShutdown blocks until ctx is cancelled (nil) or the connection drops (its error).
func (c *baseConsumer) waitForShutdown(ctx context.Context) error {
	notifyClose := c.connection.NotifyClose(make(chan *amqp.Error, 1))

	select {
	case <-ctx.Done():
		c.Logger.Info("Context cancelled, shutting down consumer", "consumer_tag", c.config.ConsumerTag)
		return nil
	case err, ok := <-notifyClose:
		if !ok || err == nil {
			return fmt.Errorf("connection closed")
		}
		c.Logger.Error(err, "Connection closed for consumer", "consumer_tag", c.config.ConsumerTag)
		return err
	}
}

// retryOrDeadLetter sends a failed delivery around the retry loop, or to the
// final DLX once it has died MaxRetries times in the main queue.
func (c *baseConsumer) retryOrDeadLetter(d amqp.Delivery) {
	if !c.config.EnableRetryMechanism {
		_ = d.Nack(false, false)
		return
	}

	deathCount := c.getDeathCount(d, c.actualQueueName)
	if deathCount < int64(c.config.MaxRetries) {
		c.Logger.Info("Nacking message for retry",
			"delivery_tag", d.DeliveryTag,
			"death_count", deathCount)
		_ = d.Nack(false, false)
		return
	}

	c.Logger.Warn("Max retries reached, publishing to final DLX", "delivery_tag", d.DeliveryTag)
	err := c.finalDlxPublisher.Publish(context.Background(), c.config.FinalDLQRoutingKey, amqp.Publishing{
		ContentType:  d.ContentType,
		Body:         d.Body,
		Headers:      d.Headers,
		Timestamp:    time.Now(),
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		c.Logger.Error(err, "Failed to publish to final DLX, nacking to retry again", "delivery_tag", d.DeliveryTag)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

// getDeathCount reads how many times the message died in queueName from x-death.
func (c *baseConsumer) getDeathCount(d amqp.Delivery, queueName string) int64 {
	return deathCount(d.Headers, queueName)
}

func deathCount(headers amqp.Table, queueName string) int64 {
	if headers == nil {
		return 0
	}
	deaths, ok := headers["x-death"].([]interface{})
	if !ok {
		return 0
	}
	for _, death := range deaths {
		tbl, ok := death.(amqp.Table)
		if !ok {
			continue
		}
		if queue, ok := tbl["queue"].(string); ok && queue == queueName {
			if count, ok := tbl["count"].(int64); ok {
				return count
			}
		}
	}
	return 0
}

// Close waits for running handlers and closes the channel. The shared
// connection belongs to the ConnectionManager.
func (c *baseConsumer) Close() error {
	c.Logger.Debug("Waiting for message handlers to finish...")
	c.wg.Wait()

	var firstErr error
	if c.finalDlxPublisher != nil {
		if err := c.finalDlxPublisher.Close(); err != nil {
			c.Logger.Error(err, "Error closing final DLX publisher")
			firstErr = err
		}
	}
	if c.channel != nil {
		if err := c.channel.Close(); err != nil && firstErr == nil {
			c.Logger.Error(err, "Error closing channel")
			firstErr = err
		}
		c.channel = nil
	}

	c.Logger.Info("Consumer closed")
	return firstErr
}
