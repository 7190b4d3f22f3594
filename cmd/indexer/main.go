package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/artisanmarket/backend/internal/adapters/database"
	"github.com/artisanmarket/backend/internal/adapters/search"
	"github.com/artisanmarket/backend/internal/application/services"
	"github.com/artisanmarket/backend/internal/infrastructure/clients/postgres"
	"github.com/artisanmarket/backend/internal/infrastructure/clients/typesense"
	"github.com/artisanmarket/backend/internal/infrastructure/observability"
	"github.com/artisanmarket/backend/pkg/config"
)

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete the existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	if cfg, err := config.Load(); err == nil {
		observability.InitLogger("artisan-market-indexer", cfg.Server.Env)
	}

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatal().Str("interval", intervalValue).Err(err).Msg("invalid interval")
		}
		if interval <= 0 {
			log.Fatal().Msg("interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, reset); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("interval", interval).Msg("reindex complete, waiting for next run")

		select {
		case <-ctx.Done():
			log.Info().Msg("reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Info().Str("collection", search.ProductsCollection).Msg("deleting collection before reindex")
		if _, err := tsClient.Client().Collection(search.ProductsCollection).Delete(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to delete collection")
		}
	}

	productRepo := database.NewProductAdapter(pgClient.DB())
	searchRepo := search.NewTypesenseAdapter(tsClient, cfg.Search.OverfetchFactor)

	indexService := services.NewProductIndexService(productRepo, searchRepo)

	indexed, err := indexService.ReindexAll(ctx)
	if err != nil {
		return err
	}

	log.Info().Int("indexed", indexed).Msg("indexing complete")
	return nil
}
