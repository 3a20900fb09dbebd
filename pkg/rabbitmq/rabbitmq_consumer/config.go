package rabbitmq_consumer

import (
	"fmt"
	"product-filter-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumerConfig describes the queue topology a consumer declares and reads from.
type ConsumerConfig struct {
	rabbitmq_common.Config

	// Queue
	QueueName       string // empty lets the server generate a name
	DeclareQueue    bool
	DurableQueue    bool
	ExclusiveQueue  bool
	AutoDeleteQueue bool
	QueueArgs       amqp.Table

	// Exchange the queue is bound to (no binding when empty)
	ExchangeNameForBind    string
	DeclareExchangeForBind bool
	ExchangeTypeForBind    string
	DurableExchangeForBind bool
	ExchangeArgsForBind    amqp.Table
	RoutingKeyForBind      string
	BindingArgs            amqp.Table

	// QoS, 0 means unlimited
	PrefetchCount int
	PrefetchSize  int
	QosGlobal     bool

	ConsumerTag       string
	ExclusiveConsumer bool

	// Retry loop: failed messages wait RetryTTL ms in RetryQueue and come back
	// through the bound exchange; after MaxRetries they land in FinalDLQ.
	EnableRetryMechanism bool
	RetryExchange        string
	RetryQueue           string
	RetryTTL             int
	FinalDLXExchange     string
	FinalDLQ             string
	FinalDLQRoutingKey   string
	MaxRetries           int

	Logger rabbitmq_common.Logger
}

func (cfg ConsumerConfig) validate() error {
	if err := cfg.Config.Validate(); err != nil {
		return fmt.Errorf("invalid base config: %w", err)
	}
	if !cfg.DeclareQueue && cfg.QueueName == "" {
		return fmt.Errorf("queue name is required if DeclareQueue is false")
	}
	if cfg.ExchangeNameForBind != "" && cfg.ExchangeTypeForBind == "" && cfg.DeclareExchangeForBind {
		return fmt.Errorf("exchange type is required if declaring an exchange for binding")
	}
	if cfg.EnableRetryMechanism {
		if cfg.RetryExchange == "" || cfg.RetryQueue == "" || cfg.FinalDLXExchange == "" || cfg.FinalDLQ == "" {
			return fmt.Errorf("retry mechanism requires retry exchange/queue and final DLX/DLQ names")
		}
		if cfg.ExchangeNameForBind == "" {
			return fmt.Errorf("retry mechanism requires a bound exchange to return messages to")
		}
		if cfg.RetryTTL <= 0 || cfg.MaxRetries <= 0 {
			return fmt.Errorf("retry mechanism requires positive RetryTTL and MaxRetries")
		}
	}
	return nil
}
