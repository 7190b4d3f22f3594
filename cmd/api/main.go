package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/artisanmarket/backend/internal/adapters/cache"
	"github.com/artisanmarket/backend/internal/adapters/database"
	"github.com/artisanmarket/backend/internal/adapters/events"
	"github.com/artisanmarket/backend/internal/adapters/search"
	"github.com/artisanmarket/backend/internal/api/handlers"
	"github.com/artisanmarket/backend/internal/api/middleware"
	"github.com/artisanmarket/backend/internal/api/routes"
	appservices "github.com/artisanmarket/backend/internal/application/services"
	"github.com/artisanmarket/backend/internal/domain/providers"
	"github.com/artisanmarket/backend/internal/domain/repositories"
	"github.com/artisanmarket/backend/internal/infrastructure/clients/postgres"
	"github.com/artisanmarket/backend/internal/infrastructure/clients/redis"
	"github.com/artisanmarket/backend/internal/infrastructure/clients/typesense"
	"github.com/artisanmarket/backend/internal/infrastructure/observability"
	"github.com/artisanmarket/backend/internal/query/loaders"
	queryservices "github.com/artisanmarket/backend/internal/query/services"
	"github.com/artisanmarket/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger("artisan-market-api", cfg.Server.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	// Redis is optional. Without it the API serves uncached reads and skips
	// event-driven invalidation.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, running without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized")
	}

	// Typesense is optional too. Without it every search falls back to the
	// structured retrieval path.
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Warn().Err(err).Msg("Typesense unavailable, full-text search disabled")
		typesenseClient = nil
	} else {
		log.Info().Msg("Typesense client initialized")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Msg("event bus initialized")
	}

	baseProductAdapter := database.NewProductAdapter(pgClient.DB())
	var productRepo repositories.ProductRepository = baseProductAdapter
	if cacheProvider != nil {
		productRepo = database.NewCachedProductAdapter(baseProductAdapter, cacheProvider)
	}

	artisanRepo := database.NewArtisanAdapter(pgClient.DB())
	categoryRepo := database.NewCategoryAdapter(pgClient.DB())

	var searchRepo repositories.ProductSearchRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient, cfg.Search.OverfetchFactor)
		if err := adapter.InitSchema(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to init Typesense schema")
		}
		searchRepo = adapter
	}

	// Without a search engine, text queries fail fast rather than silently
	// falling back to a structured scan that ignores the query text.
	var fullTextStrategy repositories.RetrievalStrategy = search.NewUnavailableAdapter()
	if searchRepo != nil {
		fullTextStrategy = searchRepo
	} else {
		log.Warn().Msg("no search engine configured; text searches will be rejected")
	}

	batchLoaders := loaders.NewLoaders(artisanRepo)
	searchService := queryservices.NewProductSearchService(baseProductAdapter, fullTextStrategy, metrics).
		WithMinQueryLength(cfg.Search.MinQueryLength).
		WithArtisanHydrator(queryservices.NewArtisanHydrator(batchLoaders))

	productService := appservices.NewProductService(productRepo, searchRepo, eventBus)
	artisanService := appservices.NewArtisanService(artisanRepo)
	categoryService := appservices.NewCategoryService(categoryRepo)

	var invalidationService *appservices.CacheInvalidationService
	if cacheProvider != nil && eventBus != nil {
		invalidationService = appservices.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := invalidationService.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to start cache invalidation service")
		} else {
			log.Info().Msg("cache invalidation service started")
		}
	}

	searchHandler := handlers.NewSearchHandler(searchService)
	productHandler := handlers.NewProductHandler(productService)
	artisanHandler := handlers.NewArtisanHandler(artisanService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, metrics, cfg.Search.CacheTTL)
	}

	router := routes.NewRouter(
		searchHandler,
		productHandler,
		artisanHandler,
		categoryHandler,
		cacheMiddleware,
		cfg.Server.AllowedOrigins,
		metrics,
	)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if invalidationService != nil {
		invalidationService.Stop()
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}

	log.Info().Msg("server stopped")
}
