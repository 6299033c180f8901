package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ads-api/internal/config"
	"ads-api/internal/delivery/router"
	"ads-api/internal/infrastructure/cache"
	"ads-api/internal/infrastructure/metrics"
	"ads-api/internal/repository"
	"ads-api/internal/service"
	"ads-api/pkg/database"
	"ads-api/pkg/logger"
	"ads-api/pkg/utils"

	redisClient "github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return errors.Wrap(err, "could not load configuration")
	}

	loggers, err := logger.SetupLogger(cfg.Logger.Level)
	if err != nil {
		return errors.Wrap(err, "failed to set up logger")
	}
	loggers.InfoLogger.Info("Logger initialized")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, cleanupDB, err := setupDatabase(ctx, cfg, loggers)
	if err != nil {
		return err
	}
	defer cleanupDB()

	adCache, cleanupCache, err := setupCache(ctx, cfg, loggers)
	if err != nil {
		return err
	}
	defer cleanupCache()

	if cfg.Tracing.Enabled {
		tracerProvider, err := setupTracer(ctx, cfg, loggers)
		if err != nil {
			return err
		}
		defer shutdownTracer(tracerProvider, loggers)
	}

	reg := metrics.NewRegistry()
	reg.MustRegister(collectors.NewDBStatsCollector(db, cfg.Database.Driver))
	handlerMetrics := metrics.NewHandlerMetrics(reg)
	serviceMetrics := metrics.NewServiceMetrics(reg)
	repositoryMetrics := metrics.NewRepositoryMetrics(reg)
	loggers.InfoLogger.Info("Prometheus metrics initialized")

	adRepo := repository.NewSQLAdRepository(db, adCache, cfg.Redis.TTL, repositoryMetrics)
	adService := service.NewAdService(adRepo, serviceMetrics)
	loggers.InfoLogger.Info("Service and repository layers initialized")

	r, err := router.NewRouter(adService, loggers, handlerMetrics)
	if err != nil {
		return errors.Wrap(err, "failed to build router")
	}
	loggers.InfoLogger.Info("Router and routes initialized")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      r,
		ReadTimeout:  cfg.HTTP.Timeout,
		WriteTimeout: cfg.HTTP.Timeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		loggers.InfoLogger.Info("Starting server", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	return waitForShutdown(server, serverErr, loggers)
}

func setupDatabase(ctx context.Context, cfg *config.Config, loggers *logger.Loggers) (*sql.DB, func(), error) {
	db, err := database.NewDatabase(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		loggers.ErrorLogger.Error("Failed to connect to database", utils.Err(err))
		return nil, nil, err
	}
	loggers.InfoLogger.Info("Connected to database", "driver", cfg.Database.Driver)

	cleanup := func() {
		if err := db.Close(); err != nil {
			loggers.ErrorLogger.Error("Failed to close database connection", utils.Err(err))
		}
	}

	if err := database.Migrate(ctx, db, cfg.Database.Driver); err != nil {
		cleanup()
		return nil, nil, err
	}

	return db, cleanup, nil
}

// setupCache falls back to a no-op cache when Redis is disabled.
func setupCache(ctx context.Context, cfg *config.Config, loggers *logger.Loggers) (cache.Cache, func(), error) {
	if !cfg.Redis.Enabled {
		loggers.InfoLogger.Info("Redis disabled, caching off")
		return cache.NewNoopCache(), func() {}, nil
	}

	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		loggers.ErrorLogger.Error("Failed to connect to Redis", utils.Err(err))
		rdb.Close()
		return nil, nil, errors.Wrap(err, "failed to connect to redis")
	}
	loggers.InfoLogger.Info("Connected to Redis")

	cleanup := func() {
		if err := rdb.Close(); err != nil {
			loggers.ErrorLogger.Error("Failed to close Redis client", utils.Err(err))
		}
	}

	return cache.NewRedisCache(rdb), cleanup, nil
}

func setupTracer(ctx context.Context, cfg *config.Config, loggers *logger.Loggers) (*sdktrace.TracerProvider, error) {
	tracerProvider, err := metrics.InitTracer(
		ctx,
		cfg.Tracing.ServiceName,
		cfg.Tracing.Environment,
		cfg.Tracing.Version,
		cfg.Tracing.Endpoint,
	)
	if err != nil {
		loggers.ErrorLogger.Error("Failed to initialize tracer", utils.Err(err))
		return nil, err
	}
	loggers.InfoLogger.Info("OpenTelemetry Tracer initialized")
	return tracerProvider, nil
}

func shutdownTracer(tp *sdktrace.TracerProvider, loggers *logger.Loggers) {
	if err := tp.Shutdown(context.Background()); err != nil {
		loggers.ErrorLogger.Error("Failed to shut down tracer provider", utils.Err(err))
	}
}

func waitForShutdown(server *http.Server, serverErr <-chan error, loggers *logger.Loggers) error {
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	select {
	case err, ok := <-serverErr:
		if ok {
			loggers.ErrorLogger.Error("Failed to start server", utils.Err(err))
			return errors.Wrap(err, "server failed")
		}
		return nil
	case <-shutdownCh:
	}
	loggers.InfoLogger.Info("Shutdown signal received, shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		loggers.ErrorLogger.Error("Server forced to shutdown", utils.Err(err))
		return err
	}
	loggers.InfoLogger.Info("Server shutdown gracefully")
	return nil
}
