package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/boutiquenoire/storefront-backend/internal/cron"
	"github.com/boutiquenoire/storefront-backend/internal/inventory"
	"github.com/boutiquenoire/storefront-backend/internal/reservations"
	"github.com/boutiquenoire/storefront-backend/pkg/config"
	"github.com/boutiquenoire/storefront-backend/pkg/db"
	"github.com/boutiquenoire/storefront-backend/pkg/instance"
	"github.com/boutiquenoire/storefront-backend/pkg/logger"
	"github.com/boutiquenoire/storefront-backend/pkg/metrics"
	"github.com/boutiquenoire/storefront-backend/pkg/migrate"
	"github.com/boutiquenoire/storefront-backend/pkg/redis"
)

const lockScope = "cron-worker"

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	metricsAddr := flag.String("metrics-addr", "", "optional listen address for /metrics")
	jobNames := flag.String("jobs", "", "comma-separated job names to run (default: all)")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	promRegistry := prometheus.NewRegistry()
	cronMetrics := metrics.NewCronJobMetrics(promRegistry)
	invMetrics := metrics.NewInventoryMetrics(promRegistry)

	var lock cron.Lock = cron.NewLocalLock()
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
		lock, err = cron.NewRedisLock(redisClient, redisClient.LockKey(lockScope, envOrLocal(cfg.App.Env)), cfg.Cron.LockTTL)
		if err != nil {
			logg.Error(context.Background(), "failed to create cron lock", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "redis not configured; cron lock is process-local")
	}

	adjuster, err := inventory.NewAdjuster(inventory.AdjusterParams{DB: dbClient.DB(), Metrics: invMetrics})
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory adjuster", err)
		os.Exit(1)
	}
	reaper, err := reservations.NewReaper(reservations.ReaperParams{
		Repo:      reservations.NewRepository(dbClient.DB()),
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
	reaperJob, err := cron.NewReservationReaperJob(cron.ReservationReaperJobParams{Logger: logg, Reaper: reaper})
	if err != nil {
		logg.Error(context.Background(), "failed to create reaper job", err)
		os.Exit(1)
	}

	jobs, err := cron.NewRegistry(reaperJob)
	if err != nil {
		logg.Error(context.Background(), "failed to register cron jobs", err)
		os.Exit(1)
	}
	if names := splitNames(*jobNames); len(names) > 0 {
		jobs, err = jobs.Select(names...)
		if err != nil {
			logg.Error(context.Background(), "invalid -jobs flag", err)
			os.Exit(1)
		}
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: jobs,
		Lock:     lock,
		Metrics:  cronMetrics,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"interval":    cfg.Cron.Interval.String(),
		"instance":    instance.ID("cron-worker"),
		"jobs":        strings.Join(jobs.Names(), ","),
	})

	if *once {
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "cron cycle failed", err)
			os.Exit(1)
		}
		return
	}

	if *metricsAddr != "" {
		srv := &http.Server{
			Addr:              *metricsAddr,
			Handler:           promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logg.Error(ctx, "metrics server stopped", err)
			}
		}()
		defer srv.Close()
	}

	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func envOrLocal(env string) string {
	if env == "" {
		return "local"
	}
	return env
}

func splitNames(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
