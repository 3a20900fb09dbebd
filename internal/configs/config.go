package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	PriceCacheMemory = "memory"
	PriceCacheRedis  = "redis"
)

type RESTConfig struct {
	Port           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL      string
	MaxConns int
}

type RedisConfig struct {
	URL string
}

type PriceCacheConfig struct {
	Backend  string // memory | redis
	TTL      time.Duration
	RedisKey string
}

// CatalogConfig holds storefront settings the filter pipeline reads.
type CatalogConfig struct {
	DefaultPerPage    int
	MaxPerPage        int
	NoProductsMessage string
	Currency          string
}

type RabbitMQConfig struct {
	URL                string
	PriceEventsEnabled bool
	BatchSize          int
	BatchTimeout       time.Duration
}

type StdoutLogConfig struct {
	Level string
	JSON  bool
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig holds the whole application configuration.
type AppConfig struct {
	AppName      string
	Rest         RESTConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	PriceCache   PriceCacheConfig
	Catalog      CatalogConfig
	RabbitMQ     RabbitMQConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LoadConfig reads the configuration from environment variables. A .env file is
// loaded first when present; an explicitly given path must exist.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	if len(envPath) > 0 {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath[0], err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not load .env file: %w", err)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "product-filter-service")

	cfg.Rest.Port = getEnvAsString("PORT", "8080")
	cfg.Rest.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", nil)

	cfg.Database.URL = os.Getenv("DATABASE_URL")
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	cfg.Database.MaxConns = getEnvAsInt("DATABASE_MAX_CONNS", 10)

	cfg.PriceCache.Backend = strings.ToLower(getEnvAsString("PRICE_CACHE_BACKEND", PriceCacheMemory))
	cfg.PriceCache.TTL = getEnvAsDuration("PRICE_CACHE_TTL", 12*time.Hour)
	cfg.PriceCache.RedisKey = getEnvAsString("PRICE_CACHE_REDIS_KEY", "product_filter:price_range")
	switch cfg.PriceCache.Backend {
	case PriceCacheMemory:
	case PriceCacheRedis:
		cfg.Redis.URL = os.Getenv("REDIS_URL")
		if cfg.Redis.URL == "" {
			return nil, fmt.Errorf("REDIS_URL environment variable is required when PRICE_CACHE_BACKEND=redis")
		}
	default:
		return nil, fmt.Errorf("unknown PRICE_CACHE_BACKEND %q, expected memory or redis", cfg.PriceCache.Backend)
	}

	cfg.Catalog.DefaultPerPage = getEnvAsInt("DEFAULT_PER_PAGE", 12)
	cfg.Catalog.MaxPerPage = getEnvAsInt("MAX_PER_PAGE", 100)
	cfg.Catalog.NoProductsMessage = getEnvAsString("NO_PRODUCTS_MESSAGE", "No products found")
	cfg.Catalog.Currency = getEnvAsString("CATALOG_CURRENCY", "USD")
	if cfg.Catalog.DefaultPerPage < 1 {
		return nil, fmt.Errorf("DEFAULT_PER_PAGE must be positive, got %d", cfg.Catalog.DefaultPerPage)
	}

	cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
	cfg.RabbitMQ.PriceEventsEnabled = getEnvAsBool("PRICE_EVENTS_ENABLED", false)
	cfg.RabbitMQ.BatchSize = getEnvAsInt("PRICE_EVENTS_BATCH_SIZE", 50)
	cfg.RabbitMQ.BatchTimeout = getEnvAsDuration("PRICE_EVENTS_BATCH_TIMEOUT", 2*time.Second)
	if cfg.RabbitMQ.PriceEventsEnabled && cfg.RabbitMQ.URL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL environment variable is required when PRICE_EVENTS_ENABLED=true")
	}

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}

		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")
	cfg.StdoutLogger.JSON = getEnvAsBool("LOG_JSON", false)

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt falls back to the default and logs when the value is not an int.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsDuration accepts Go durations ("12h", "90s").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valDuration, err := time.ParseDuration(valStr)
	if err != nil || valDuration <= 0 {
		log.Printf("Warning: Environment variable %s (value: %s) is not a positive duration. Using default value: %s\n", key, valStr, defaultValue)
		return defaultValue
	}
	return valDuration
}

// getEnvAsList splits a comma separated value and drops empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(valStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
