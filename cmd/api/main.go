package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/boutiquenoire/storefront-backend/api/routes"
	"github.com/boutiquenoire/storefront-backend/internal/inventory"
	"github.com/boutiquenoire/storefront-backend/internal/orders"
	"github.com/boutiquenoire/storefront-backend/internal/reservations"
	"github.com/boutiquenoire/storefront-backend/pkg/config"
	"github.com/boutiquenoire/storefront-backend/pkg/db"
	"github.com/boutiquenoire/storefront-backend/pkg/env"
	"github.com/boutiquenoire/storefront-backend/pkg/instance"
	"github.com/boutiquenoire/storefront-backend/pkg/logger"
	"github.com/boutiquenoire/storefront-backend/pkg/metrics"
	"github.com/boutiquenoire/storefront-backend/pkg/migrate"
	"github.com/boutiquenoire/storefront-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	invMetrics := metrics.NewInventoryMetrics(registry)

	deps := routes.Deps{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Gatherer: registry,
	}

	var locker inventory.Locker = inventory.NewLocalLocker(cfg.Reservation.LockWait, invMetrics)
	if cfg.Redis.Enabled() {
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
		locker, err = inventory.NewRedisLocker(inventory.RedisLockerParams{
			Store:   redisClient,
			TTL:     cfg.Reservation.LockTTL,
			Wait:    cfg.Reservation.LockWait,
			Metrics: invMetrics,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create product locker", err)
			os.Exit(1)
		}
		deps.RedisPinger = redisClient
		deps.Idempotency = redisClient
	} else {
		logg.Warn(context.Background(), "redis not configured; using in-process product locks without idempotency replay")
	}

	adjuster, err := inventory.NewAdjuster(inventory.AdjusterParams{DB: dbClient.DB(), Metrics: invMetrics})
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory adjuster", err)
		os.Exit(1)
	}

	holdRepo := reservations.NewRepository(dbClient.DB())
	reaper, err := reservations.NewReaper(reservations.ReaperParams{
		Repo:      holdRepo,
		Tx:        dbClient,
		Adjuster:  adjuster,
		Logger:    logg,
		Metrics:   invMetrics,
		BatchSize: cfg.Reservation.ReapBatchMax,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reservation reaper", err)
		os.Exit(1)
	}

	reservationService, err := reservations.NewService(reservations.ServiceParams{
		Repo:                holdRepo,
		Tx:                  dbClient,
		Adjuster:            adjuster,
		Locker:              locker,
		Reaper:              reaper,
		Logger:              logg,
		TTL:                 cfg.Reservation.TTL,
		LegacyStandardColor: cfg.Inventory.LegacyStandardColor,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reservation service", err)
		os.Exit(1)
	}
	deps.Reservations = reservationService

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:                orders.NewRepository(dbClient.DB()),
		Tx:                  dbClient,
		Adjuster:            adjuster,
		Cart:                reservationService,
		Logger:              logg,
		FullStatusSet:       cfg.Orders.FullStatusSet(),
		LegacyStandardColor: cfg.Inventory.LegacyStandardColor,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}
	deps.Orders = ordersService

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID("api"),
		"driver":   dbClient.Dialect(),
		"redis":    cfg.Redis.Enabled(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
