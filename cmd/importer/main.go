// Package main is the bulk catalog importer. It seeds the store from
// newline-delimited JSON files, one record per line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"product-comparison-service/internal/app/service"
	"product-comparison-service/internal/config"
	"product-comparison-service/internal/infra/postgres"
	"product-comparison-service/internal/infra/postgres/migrations"
	"product-comparison-service/internal/logger"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "importer",
		Short: "Bulk-load catalog records from newline-delimited JSON files",
		Long: `Seed the product comparison store from batch files.

Each input file holds one JSON object per line. Load suppliers and
products before offers: an offer referencing a missing supplier or
product is skipped.

Examples:
  importer add-suppliers suppliers.jsonl
  importer add-products products.jsonl
  importer add-offers offers.jsonl`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	rootCmd.AddCommand(
		newImportCommand("add-products", "Load product records",
			func(svc *service.ImportService, ctx context.Context, r io.Reader) (service.ImportStats, error) {
				return svc.ImportProducts(ctx, r)
			}),
		newImportCommand("add-suppliers", "Load supplier records",
			func(svc *service.ImportService, ctx context.Context, r io.Reader) (service.ImportStats, error) {
				return svc.ImportSuppliers(ctx, r)
			}),
		newImportCommand("add-offers", "Load supplier-product offer records",
			func(svc *service.ImportService, ctx context.Context, r io.Reader) (service.ImportStats, error) {
				return svc.ImportOffers(ctx, r)
			}),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newImportCommand(
	use, short string,
	run func(*service.ImportService, context.Context, io.Reader) (service.ImportStats, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := buildImportService()
			if err != nil {
				return err
			}
			defer cleanup()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening input file: %w", err)
			}
			defer func() { _ = f.Close() }()

			stats, err := run(svc, cmd.Context(), f)
			if err != nil {
				return err
			}

			fmt.Printf("inserted %d, skipped %d\n", stats.Inserted, stats.Skipped)

			return nil
		},
	}
}

// buildImportService wires config, logging, the database connection and
// migrations. The returned cleanup closes the connection and flushes logs.
func buildImportService() (*service.ImportService, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(
		logger.Config{
			Level:  cfg.Logger.Level,
			Format: cfg.Logger.Format,
			Output: cfg.Logger.Output,
		},
		logger.SentryConfig{},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}

	db, err := postgres.NewConnection(
		postgres.Config{
			Driver:       cfg.Database.Driver,
			Path:         cfg.Database.Path,
			Host:         cfg.Database.Host,
			Port:         cfg.Database.Port,
			Name:         cfg.Database.Name,
			User:         cfg.Database.User,
			Password:     cfg.Database.Password,
			SSLMode:      cfg.Database.SSLMode,
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
			MaxLifetime:  cfg.Database.MaxLifetime,
		},
		log.Logger,
	)
	if err != nil {
		_ = log.Sync()
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = postgres.Close(db)
		_ = log.Sync()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	cleanup := func() {
		_ = postgres.Close(db)
		_ = log.Sync()
	}

	return service.NewImportService(postgres.NewRepository(db), log.Logger), cleanup, nil
}
