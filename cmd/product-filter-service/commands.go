package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"product-filter-service/internal"
	"product-filter-service/internal/configs"
	"product-filter-service/internal/core/domain"
	"time"

	"github.com/spf13/cobra"
)

var (
	refreshPriceRange bool
	notifyReason      string
	notifyProductIDs  []int64
)

// serveCmd runs the REST API and, when enabled, the price events listener
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

// priceRangeCmd prints the catalog price range as JSON
var priceRangeCmd = &cobra.Command{
	Use:   "price-range",
	Short: "Print the catalog-wide price range",
	Long: `Resolve the catalog price range through the configured cache.

With --refresh the cached value is dropped first, so the range is recomputed
from the catalog and stored again.`,
	RunE: runPriceRange,
}

// notifyPriceChangeCmd tells every running replica to drop its cached price range
var notifyPriceChangeCmd = &cobra.Command{
	Use:   "notify-price-change",
	Short: "Publish a catalog price change event",
	RunE:  runNotifyPriceChange,
}

func loadConfig() (*configs.AppConfig, error) {
	if envFile != "" {
		return configs.LoadConfig(envFile)
	}
	return configs.LoadConfig()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("error loading application configuration: %w", err)
	}

	application, err := internal.NewApp(cfg, internal.Options{
		ServeHTTP:         true,
		ListenPriceEvents: cfg.RabbitMQ.PriceEventsEnabled,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := application.Run(); err != nil {
		return fmt.Errorf("application run failed: %w", err)
	}
	return nil
}

func runPriceRange(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("error loading application configuration: %w", err)
	}

	application, err := internal.NewApp(cfg, internal.Options{LogToStderr: true})
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	priceRange, err := application.PriceRange(ctx, refreshPriceRange)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(priceRange)
}

func runNotifyPriceChange(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("error loading application configuration: %w", err)
	}
	if cfg.RabbitMQ.URL == "" {
		return fmt.Errorf("RABBITMQ_URL environment variable is required to publish events")
	}

	application, err := internal.NewApp(cfg, internal.Options{PublishPriceEvents: true, LogToStderr: true})
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Close()

	ids := make([]domain.ProductID, 0, len(notifyProductIDs))
	for _, id := range notifyProductIDs {
		ids = append(ids, domain.ProductID(id))
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	return application.NotifyPriceChange(ctx, domain.PriceChangedEvent{
		ProductIDs: ids,
		Reason:     notifyReason,
		OccurredAt: time.Now(),
	})
}
