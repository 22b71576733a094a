package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trolleyhq/trolley-backend/api/routes"
	"github.com/trolleyhq/trolley-backend/internal/enrich"
	"github.com/trolleyhq/trolley-backend/internal/item"
	"github.com/trolleyhq/trolley-backend/internal/layout"
	"github.com/trolleyhq/trolley-backend/internal/listing"
	"github.com/trolleyhq/trolley-backend/internal/shop"
	"github.com/trolleyhq/trolley-backend/pkg/config"
	"github.com/trolleyhq/trolley-backend/pkg/logger"
	"github.com/trolleyhq/trolley-backend/pkg/metrics"
	"github.com/trolleyhq/trolley-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	itemRepo := item.NewRepository(redisClient)
	shopRepo := shop.NewRepository(redisClient)

	layoutService, err := layout.NewService(layout.ServiceParams{KV: redisClient})
	if err != nil {
		logg.Error(context.Background(), "failed to create layout service", err)
		os.Exit(1)
	}

	gemini, err := enrich.NewGeminiClient(context.Background(), cfg.Gemini)
	if err != nil {
		logg.Error(context.Background(), "failed to create gemini client", err)
		os.Exit(1)
	}

	enrichMetrics := metrics.NewEnrichmentMetrics(prometheus.DefaultRegisterer)
	enrichService, err := enrich.NewService(enrich.ServiceParams{
		Completer: gemini,
		Items:     itemRepo,
		Cache:     enrich.NewCache(redisClient),
		Logger:    logg,
		Metrics:   enrichMetrics,
		Options:   enrich.PromptOptionsFromConfig(cfg.Gemini),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create enrichment service", err)
		os.Exit(1)
	}

	itemService, err := item.NewService(item.ServiceParams{
		Store:    itemRepo,
		Enricher: enrichService,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create item service", err)
		os.Exit(1)
	}

	listingService, err := listing.NewService(listing.ServiceParams{
		Items:  itemRepo,
		Layout: layoutService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create listing service", err)
		os.Exit(1)
	}

	completionService, err := shop.NewCompletionService(shop.CompletionParams{
		Items:   itemRepo,
		History: shopRepo,
		Leaser:  redisClient,
		Logger:  logg,
		Config:  cfg.Completion,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create completion service", err)
		os.Exit(1)
	}

	historyService, err := shop.NewHistoryService(shop.HistoryParams{
		Store:  shopRepo,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create history service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:     cfg,
			Logger:     logg,
			KV:         redisClient,
			Listing:    listingService,
			Items:      itemService,
			Completion: completionService,
			History:    historyService,
			Enrichment: enrichService,
			Layout:     layoutService,
			Metrics:    prometheus.DefaultGatherer,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
