// Package main is the entry point for the API server.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/onnwee/stand/internal/alignment"
	"github.com/onnwee/stand/internal/api"
	"github.com/onnwee/stand/internal/catalog"
	"github.com/onnwee/stand/internal/config"
	"github.com/onnwee/stand/internal/db"
	"github.com/onnwee/stand/internal/health"
	"github.com/onnwee/stand/internal/jobs"
	"github.com/onnwee/stand/internal/middleware"
	"github.com/onnwee/stand/internal/ranking"
	"github.com/onnwee/stand/internal/tracing"
)

const (
	serviceName    = "stand-api"
	serviceVersion = "0.1.0"
)

func main() {
	help := flag.Bool("help", false, "display help message")
	configPath := flag.String("config", "", "path to an optional YAML config file")
	flag.Parse()

	if *help {
		fmt.Println("Stand API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configPath)
	if cfg == nil {
		cfg = &config.Config{Env: config.DefaultEnv}
	}

	// Initialize logger
	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	if len(errs) > 0 {
		for _, err := range errs {
			logger.Error("invalid configuration", "error", err)
		}
		os.Exit(1)
	}
	logger.Info("configuration loaded", "config", cfg.LogSummary())

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Tracing
	tp, err := tracing.NewProvider(tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Enabled:        cfg.TracingEnabled,
		Environment:    cfg.Env,
		ExporterType:   cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplingRate:   cfg.TracingSampleRate,
		InsecureMode:   !cfg.IsProduction(),
		Logger:         logger,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	httpMetrics := middleware.NewMetrics()
	catalogMetrics := catalog.NewMetrics()
	jobMetrics := jobs.NewMetrics()
	alignmentMetrics := alignment.NewMetrics()
	for _, m := range []struct {
		name string
		r    interface{ Register(prometheus.Registerer) error }
	}{
		{"http", httpMetrics},
		{"catalog", catalogMetrics},
		{"jobs", jobMetrics},
		{"alignment", alignmentMetrics},
	} {
		if err := m.r.Register(reg); err != nil {
			logger.Error("failed to register metrics", "metrics", m.name, "error", err)
			os.Exit(1)
		}
	}

	// Catalog source: Postgres when configured, otherwise the seed file.
	var (
		source    catalog.Source
		dbChecker api.HealthChecker
		conn      *sql.DB
	)
	if cfg.DatabaseURL != "" {
		conn, err = db.Open(ctx, cfg.DatabaseURL, db.Options{})
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		source = catalog.NewPostgresSource(conn, logger)
		dbChecker = health.Postgres(conn)
		logger.Info("catalog source: postgres")
	} else {
		var snap *catalog.Snapshot
		if cfg.CatalogSeedFile != "" {
			snap, err = catalog.LoadSeedFile(cfg.CatalogSeedFile)
			if err != nil {
				logger.Error("failed to load catalog seed file", "path", cfg.CatalogSeedFile, "error", err)
				os.Exit(1)
			}
		}
		source = catalog.NewInMemorySource(snap)
		logger.Info("catalog source: in-memory", "seed_file", cfg.CatalogSeedFile)
	}

	// Cache and rate limit state: Redis when configured, otherwise in process.
	var (
		cache        catalog.Cache
		limits       middleware.RateLimitStore
		redisChecker api.HealthChecker
		redisClient  *redis.Client
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid redis url", "error", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
		cache = catalog.NewBreakerCache(catalog.NewRedisCache(redisClient, "stand:"), catalog.BreakerConfig{
			Name:   "redis-catalog-cache",
			Logger: logger,
		})
		limits = middleware.NewRedisRateLimitStore(redisClient).WithMetrics(httpMetrics)
		redisChecker = health.Redis(redisClient)
		logger.Info("cache: redis")
	} else {
		cache = catalog.NewMemoryCache()
		memLimits := middleware.NewInMemoryRateLimitStore()
		go cleanupRateLimits(ctx, memLimits, 5*time.Minute)
		limits = memLimits
		logger.Info("cache: in-memory")
	}

	cached := catalog.NewCachedSource(source, cache, catalog.CachedSourceConfig{
		TTL:     cfg.CatalogCacheTTL,
		Logger:  logger,
		Metrics: catalogMetrics,
	})

	refreshJob := catalog.NewRefreshJob(catalog.RefreshJobConfig{
		Interval:   cfg.CatalogCacheTTL - cfg.CatalogCacheTTL/10,
		Logger:     logger,
		JobMetrics: jobMetrics,
	}, cached)
	if err := refreshJob.RefreshNow(ctx); err != nil {
		logger.Warn("initial catalog load failed, serving on demand", "error", err)
	}
	if err := refreshJob.Start(ctx); err != nil {
		logger.Error("failed to start catalog refresh job", "error", err)
		os.Exit(1)
	}

	// Ranking calibration
	weights := ranking.DefaultWeights()
	if cfg.RankingCalibrationFile != "" {
		weights, err = ranking.LoadCalibration(cfg.RankingCalibrationFile)
		if err != nil {
			logger.Error("failed to load ranking calibration", "path", cfg.RankingCalibrationFile, "error", err)
			os.Exit(1)
		}
	}

	engine := alignment.NewEngine(alignment.EngineConfig{Logger: logger, Metrics: alignmentMetrics})

	mux := newRouter(routerConfig{
		Alignment: api.NewAlignmentHandlers(cached, engine, weights),
		Catalog:   api.NewCatalogHandlers(cached),
		Health: api.NewHealthHandlers(api.HealthHandlersConfig{
			CatalogChecker: health.Catalog(cached),
			DBChecker:      dbChecker,
			RedisChecker:   redisChecker,
			MetricsEnabled: true,
		}),
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Limits:      limits,
		HTTPMetrics: httpMetrics,
	})

	handler := chain(mux, logger, cfg, limits, httpMetrics)

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// SIGHUP drops the cached catalog; SIGINT and SIGTERM shut down.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	for s := range sig {
		if s != syscall.SIGHUP {
			break
		}
		_ = refreshJob.InvalidateNow(ctx)
	}

	logger.Info("shutting down server...")

	// Create context with timeout for shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	refreshJob.Stop()
	stop()

	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to flush traces", "error", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("failed to close redis client", "error", err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}

	logger.Info("server stopped")
}

// cleanupRateLimits evicts expired in-memory rate limit windows until ctx ends.
func cleanupRateLimits(ctx context.Context, store *middleware.InMemoryRateLimitStore, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			store.Cleanup()
		}
	}
}
