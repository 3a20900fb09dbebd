package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var envFile string

// rootCmd starts the HTTP service when no subcommand is given
var rootCmd = &cobra.Command{
	Use:           "product-filter-service",
	Short:         "Faceted product filtering over the shop catalog",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file (default: ./.env when present)")

	priceRangeCmd.Flags().BoolVar(&refreshPriceRange, "refresh", false, "Drop the cached range and recompute it")

	notifyPriceChangeCmd.Flags().StringVar(&notifyReason, "reason", "price_updated", "Change reason: price_updated, product_published, product_unpublished, product_deleted, bulk_import")
	notifyPriceChangeCmd.Flags().Int64SliceVar(&notifyProductIDs, "product-id", nil, "Affected product id (repeatable)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(priceRangeCmd)
	rootCmd.AddCommand(notifyPriceChangeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
