package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	logger_adapter "product-filter-service/internal/adapters/logger"
	postgres_adapter "product-filter-service/internal/adapters/postgres"
	"product-filter-service/internal/adapters/pricecache"
	rabbitmq_adapter "product-filter-service/internal/adapters/rabbitmq"
	"product-filter-service/internal/adapters/render"
	"product-filter-service/internal/adapters/rest"
	"product-filter-service/internal/adapters/settings"
	"product-filter-service/internal/configs"
	"product-filter-service/internal/constants"
	"product-filter-service/internal/contracts"
	"product-filter-service/internal/core/domain"
	"product-filter-service/internal/core/port"
	"product-filter-service/internal/core/usecase"
	fluentlogger "product-filter-service/pkg/fluent_logger"
	"product-filter-service/pkg/postgres"
	"product-filter-service/pkg/rabbitmq/rabbitmq_common"
	"product-filter-service/pkg/rabbitmq/rabbitmq_consumer"
	"product-filter-service/pkg/rabbitmq/rabbitmq_producer"
	pkgredis "product-filter-service/pkg/redis"
	"sync"
	"syscall"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
)

// Options selects which parts of the application a command needs.
type Options struct {
	ServeHTTP          bool
	ListenPriceEvents  bool
	PublishPriceEvents bool
	LogToStderr        bool // keeps stdout clean for command output
}

// App holds every long-lived dependency of the service.
type App struct {
	config       *configs.AppConfig
	dbPool       *pgxpool.Pool
	redisClient  *goredis.Client
	connManager  *rabbitmq_common.ConnectionManager
	apiServer    *rest.Server
	fluentClient *fluent.Fluent
	logger       port.LoggerPort
	baseLogger   port.LoggerPort

	filterUseCase   *usecase.FilterProductsUseCase
	priceResolver   *usecase.PriceRangeResolver
	priceEvents     port.EventListenerPort
	priceProducer   *rabbitmq_producer.Publisher
	priceEventsSink port.PriceEventPublisherPort

	closeOnce sync.Once
}

// NewApp is the composition root: every dependency is created and connected here.
func NewApp(appConfig *configs.AppConfig, opts Options) (_ *App, err error) {
	a := &App{config: appConfig}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	// --- 1. Loggers ---
	if err := a.initLoggers(opts.LogToStderr); err != nil {
		return nil, err
	}

	// --- 2. Outgoing adapters ---
	dbPool, err := postgres.NewClient(context.Background(), postgres.Config{
		DatabaseURL:    appConfig.Database.URL,
		MaxConns:       int32(appConfig.Database.MaxConns),
		ConnectTimeout: 10 * time.Second,
	})
	if err != nil {
		a.logger.Error("Failed to connect to PostgreSQL", err, nil)
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	a.dbPool = dbPool
	a.logger.Info("Successfully connected to PostgreSQL pool!", nil)

	catalogRepository, err := postgres_adapter.NewCatalogRepository(dbPool)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog repository: %w", err)
	}

	priceCache, err := a.newPriceCache()
	if err != nil {
		return nil, err
	}

	cardRenderer, err := render.NewCardRenderer(catalogRepository, appConfig.Catalog.Currency)
	if err != nil {
		return nil, fmt.Errorf("failed to create card renderer: %w", err)
	}

	pageSize, err := settings.NewStaticPageSize(appConfig.Catalog.DefaultPerPage)
	if err != nil {
		return nil, err
	}

	contractsRegistry, err := contracts.LoadSchemas()
	if err != nil {
		return nil, fmt.Errorf("failed to load contracts: %w", err)
	}
	a.logger.Info("Outgoing adapters initialized.", port.Fields{"price_cache": appConfig.PriceCache.Backend})

	// --- 3. Use cases ---
	a.priceResolver = usecase.NewPriceRangeResolver(catalogRepository, priceCache, appConfig.PriceCache.TTL, usecase.WholeUnitPriceRange)
	a.filterUseCase = usecase.NewFilterProductsUseCase(
		usecase.NewInputNormalizer(contractsRegistry, pageSize, appConfig.Catalog.MaxPerPage),
		usecase.NewQueryBuilder(),
		catalogRepository,
		usecase.NewResponseAssembler(cardRenderer, appConfig.Catalog.NoProductsMessage),
		a.priceResolver,
	)
	a.logger.Info("All use cases initialized.", nil)

	// --- 4. Messaging ---
	if opts.ListenPriceEvents || opts.PublishPriceEvents {
		if err := a.initMessaging(opts, contractsRegistry); err != nil {
			return nil, err
		}
	}

	// --- 5. Incoming REST adapter ---
	if opts.ServeHTTP {
		healthHandler := rest.NewHealthHandler(a.healthChecks(catalogRepository))
		a.apiServer = rest.NewServer(
			rest.ServerConfig{Port: appConfig.Rest.Port, AllowedOrigins: appConfig.Rest.AllowedOrigins},
			rest.NewFilterHandler(a.filterUseCase),
			rest.NewPriceRangeHandler(a.filterUseCase, a.priceResolver),
			healthHandler,
			a.baseLogger,
		)
		a.logger.Info("REST API server configured.", nil)
	}

	return a, nil
}

func (a *App) initLoggers(toStderr bool) error {
	var activeLoggers []port.LoggerPort

	var writer io.Writer = os.Stdout
	if toStderr {
		writer = os.Stderr
	}
	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Writer:   writer,
		Level:    logger_adapter.ParseLevel(a.config.StdoutLogger.Level),
		IsJSON:   a.config.StdoutLogger.JSON,
		UseColor: !a.config.StdoutLogger.JSON,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	if a.config.FluentBit.Enabled {
		fluentClient, err := fluentlogger.NewClient(fluentlogger.Config{
			Host:      a.config.FluentBit.Host,
			Port:      a.config.FluentBit.Port,
			TagPrefix: a.config.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return fmt.Errorf("failed to create fluentbit client: %w", err)
		}
		a.fluentClient = fluentClient

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, logger_adapter.ParseLevel(a.config.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			return err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return fmt.Errorf("failed to create multi-logger: %w", err)
	}

	a.baseLogger = multiLogger.WithFields(port.Fields{"service_name": a.config.AppName})
	a.logger = a.baseLogger.WithFields(port.Fields{"component": "app"})
	a.logger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": a.config.FluentBit.Enabled,
	})
	return nil
}

func (a *App) newPriceCache() (port.PriceRangeCachePort, error) {
	if a.config.PriceCache.Backend != configs.PriceCacheRedis {
		return pricecache.NewMemoryStore(), nil
	}

	redisClient, err := pkgredis.NewClient(context.Background(), pkgredis.Config{
		URL:         a.config.Redis.URL,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		a.logger.Error("Failed to connect to Redis", err, nil)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	a.redisClient = redisClient

	store, err := pricecache.NewRedisStore(redisClient, a.config.PriceCache.RedisKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis price cache: %w", err)
	}
	a.logger.Info("Successfully connected to Redis!", nil)
	return store, nil
}

func (a *App) initMessaging(opts Options, validator rabbitmq_adapter.EventValidator) error {
	rabbitCfg := rabbitmq_common.Config{URL: a.config.RabbitMQ.URL}

	connManagerLogger := a.baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})
	connManager, err := rabbitmq_common.NewConnectionManager(rabbitCfg, rabbitmq_adapter.NewPkgLoggerBridge(connManagerLogger))
	if err != nil {
		a.logger.Error("Failed to create connection manager", err, nil)
		return fmt.Errorf("failed to create connection manager: %w", err)
	}
	a.connManager = connManager
	a.logger.Info("RabbitMQ Connection Manager initialized.", nil)

	if opts.PublishPriceEvents {
		producerLogger := a.baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})
		producer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:                   rabbitCfg,
			ExchangeName:             constants.ExchangeCatalogEvents,
			ExchangeType:             constants.ExchangeCatalogEventsType,
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,
			Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(producerLogger),
		}, connManager)
		if err != nil {
			a.logger.Error("Failed to create event producer", err, nil)
			return fmt.Errorf("failed to create event producer: %w", err)
		}
		a.priceProducer = producer

		sink, err := rabbitmq_adapter.NewPriceEventsPublisherAdapter(producer, constants.RoutingKeyPriceChanged)
		if err != nil {
			return err
		}
		a.priceEventsSink = sink
		a.logger.Info("RabbitMQ price events producer initialized.", nil)
	}

	if opts.ListenPriceEvents {
		consumerCfg := rabbitmq_adapter.PriceEventsConsumerConfig{
			Consumer: rabbitmq_consumer.ConsumerConfig{
				Config:                 rabbitCfg,
				QueueName:              constants.QueuePriceChanged,
				DeclareQueue:           true,
				DurableQueue:           true,
				ExchangeNameForBind:    constants.ExchangeCatalogEvents,
				DeclareExchangeForBind: true,
				ExchangeTypeForBind:    constants.ExchangeCatalogEventsType,
				DurableExchangeForBind: true,
				RoutingKeyForBind:      constants.RoutingKeyPriceChanged,
				ConsumerTag:            "price-range-invalidator",

				EnableRetryMechanism: true,
				RetryExchange:        constants.PriceEventsRetryExchange,
				RetryQueue:           constants.PriceEventsRetryQueue,
				RetryTTL:             constants.PriceEventsRetryTTLms,
				FinalDLXExchange:     constants.FinalDLXExchange,
				FinalDLQ:             constants.FinalDLQ,
				FinalDLQRoutingKey:   constants.FinalDLQRoutingKey,
				MaxRetries:           constants.PriceEventsMaxRetries,
			},
			BatchSize:    a.config.RabbitMQ.BatchSize,
			BatchTimeout: a.config.RabbitMQ.BatchTimeout,
		}
		listener, err := rabbitmq_adapter.NewPriceEventsConsumerAdapter(consumerCfg, a.priceResolver, validator, a.baseLogger, connManager)
		if err != nil {
			a.logger.Error("Failed to create price events listener", err, nil)
			return err
		}
		a.priceEvents = listener
		a.logger.Info("Price Events Listener initialized.", nil)
	}
	return nil
}

func (a *App) healthChecks(catalog *postgres_adapter.CatalogRepository) map[string]rest.HealthCheck {
	checks := map[string]rest.HealthCheck{
		"postgres": catalog.Ping,
	}
	if a.redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.redisClient.Ping(ctx).Err()
		}
	}
	return checks
}

// Run starts the HTTP server and the listeners and blocks until a signal or a component failure.
func (a *App) Run() error {
	if a.apiServer == nil {
		return errors.New("application was built without the HTTP server")
	}

	appCtx, cancelApp := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := a.apiServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("Error during API server shutdown", err, nil)
		}

		a.logger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()
		a.logger.Info("All background processes finished.", nil)

		a.Close()
	}()

	a.logger.Info("Application is starting...", nil)

	errorsCh := make(chan error, 2)

	startListener := func(name string, listener port.EventListenerPort) {
		defer wg.Done()
		listenerLogger := a.logger.WithFields(port.Fields{"listener_name": name})
		listenerLogger.Info("Starting listener...", nil)

		if err := listener.Start(appCtx); err != nil {
			listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
			errorsCh <- fmt.Errorf("%s error: %w", name, err)
		} else {
			listenerLogger.Info("Listener stopped gracefully due to context cancellation.", nil)
		}
	}

	if a.priceEvents != nil {
		wg.Add(1)
		go startListener("Price Events Listener", a.priceEvents)
	}

	go func() {
		if err := a.apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorsCh <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)

	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case runErr = <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", runErr, nil)
	}

	cancelApp()
	return runErr
}

// PriceRange resolves the catalog price range, dropping the cached value first when refresh is set.
func (a *App) PriceRange(ctx context.Context, refresh bool) (domain.PriceRange, error) {
	if refresh {
		if err := a.priceResolver.Invalidate(ctx); err != nil {
			return domain.PriceRange{}, err
		}
	}
	return a.filterUseCase.HandlePriceRangeQuery(ctx)
}

// NotifyPriceChange publishes a price change event for all running replicas.
func (a *App) NotifyPriceChange(ctx context.Context, event domain.PriceChangedEvent) error {
	if a.priceEventsSink == nil {
		return errors.New("application was built without the price events publisher")
	}
	return a.priceEventsSink.PublishPriceChanged(ctx, event)
}

// Logger returns the application logger with service fields attached.
func (a *App) Logger() port.LoggerPort {
	return a.baseLogger
}

// Close releases every resource; it is safe to call more than once.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		if a.priceEvents != nil {
			if err := a.priceEvents.Close(); err != nil {
				a.logger.Error("Error closing price events listener", err, nil)
			}
		}

		if a.priceProducer != nil {
			if err := a.priceProducer.Close(); err != nil {
				a.logger.Error("Error closing event producer", err, nil)
			}
		}

		if a.connManager != nil {
			if err := a.connManager.Close(); err != nil {
				a.logger.Error("Error closing RabbitMQ connection", err, nil)
			}
		}

		if a.redisClient != nil {
			if err := a.redisClient.Close(); err != nil {
				a.logger.Error("Error closing Redis client", err, nil)
			}
		}

		if a.dbPool != nil {
			a.dbPool.Close()
			a.logger.Info("PostgreSQL pool closed.", nil)
		}

		if a.logger != nil {
			a.logger.Info("Application shut down gracefully.", nil)
		}

		if a.fluentClient != nil {
			if err := a.fluentClient.Close(); err != nil {
				// stdout only, fluent may already be gone
				fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
			}
		}
	})
}
