package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trolleyhq/trolley-backend/internal/item"
	"github.com/trolleyhq/trolley-backend/internal/shop"
	"github.com/trolleyhq/trolley-backend/internal/worker"
	"github.com/trolleyhq/trolley-backend/pkg/config"
	"github.com/trolleyhq/trolley-backend/pkg/logger"
	"github.com/trolleyhq/trolley-backend/pkg/metrics"
	"github.com/trolleyhq/trolley-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "reconcile-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "reconcile-worker",
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

	reconcileJob, err := shop.NewReconcileJob(shop.ReconcileParams{
		Items:   item.NewRepository(redisClient),
		History: shop.NewRepository(redisClient),
		Logger:  logg,
		Config:  cfg.Reconcile,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reconcile job", err)
		os.Exit(1)
	}

	lock, err := worker.NewRedisLock(redisClient, redisClient.ReconcileLockKey(), cfg.Reconcile.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create worker lock", err)
		os.Exit(1)
	}

	service, err := worker.NewService(worker.ServiceParams{
		Logger:   logg,
		Registry: worker.NewRegistry(reconcileJob),
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Reconcile.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create worker service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "starting reconcile worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "reconcile worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "reconcile worker shutting down gracefully")
}
