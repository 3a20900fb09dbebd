package constants

// Exchanges
const (
	ExchangeCatalogEvents     = "catalog_events"
	ExchangeCatalogEventsType = "topic"
)

// Queues
const (
	QueuePriceChanged = "product_filter.price_changed"
)

// Routing keys
const (
	RoutingKeyPriceChanged = "catalog.price_changed"
)

// Retry loop and final dead letters for price events
const (
	PriceEventsRetryExchange = "product_filter.price_changed.retry"
	PriceEventsRetryQueue    = "product_filter.price_changed.wait"
	PriceEventsRetryTTLms    = 5000
	PriceEventsMaxRetries    = 3

	FinalDLXExchange   = "product_filter_final_dlx"
	FinalDLQ           = "product_filter_final_dlq"
	FinalDLQRoutingKey = "price_changed.dlq.key"
)

// Message headers
const (
	HeaderTraceID      = "x-trace-id"
	HeaderEventType    = "event-type"
	HeaderEventVersion = "event-version"
)
