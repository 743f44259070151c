// Package main is the entry point for the product-comparison-service API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"product-comparison-service/internal/app/service"
	"product-comparison-service/internal/config"
	"product-comparison-service/internal/domain"
	"product-comparison-service/internal/infra/postgres"
	"product-comparison-service/internal/infra/postgres/migrations"
	"product-comparison-service/internal/infra/supplier"
	"product-comparison-service/internal/job"
	"product-comparison-service/internal/logger"
	"product-comparison-service/internal/transport/httpserver"
	"product-comparison-service/internal/validator"
	"product-comparison-service/pkg/cache"
	"product-comparison-service/pkg/locker"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(
		logger.Config{
			Level:  cfg.Logger.Level,
			Format: cfg.Logger.Format,
			Output: cfg.Logger.Output,
		},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting product-comparison-service",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
	)

	// Connect to database
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
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = postgres.Close(db) }()

	// Run migrations
	if err := migrations.Run(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("database migrations completed")

	// Create repository
	repo := postgres.NewRepository(db)

	// Create supplier gateway
	var gateway domain.SupplierGateway
	switch cfg.Supplier.Mode {
	case "remote":
		gateway = supplier.NewRemote(
			supplier.RemoteConfig{
				Timeout: cfg.Supplier.Remote.Timeout,
				Retry: supplier.RetryConfig{
					MaxAttempts: cfg.Supplier.Remote.Retry.MaxAttempts,
					WaitTime:    cfg.Supplier.Remote.Retry.WaitTime,
					MaxWaitTime: cfg.Supplier.Remote.Retry.MaxWaitTime,
				},
				CB: supplier.CBConfig{
					MaxRequests:  cfg.Supplier.Remote.CB.MaxRequests,
					Interval:     cfg.Supplier.Remote.CB.Interval,
					Timeout:      cfg.Supplier.Remote.CB.Timeout,
					FailureRatio: cfg.Supplier.Remote.CB.FailureRatio,
				},
			},
			repo,
			log.Logger,
		)
		log.Info("supplier gateway: remote")
	default:
		gateway = supplier.NewSimulator(
			supplier.SimulatorConfig{
				Delay:     cfg.Supplier.Simulator.Delay,
				PriceStep: cfg.Supplier.Simulator.PriceStep,
				MinCalls:  cfg.Supplier.Simulator.MinCalls,
			},
			log.Logger,
		)
		log.Info("supplier gateway: simulator",
			zap.Duration("delay", cfg.Supplier.Simulator.Delay),
			zap.Float64("price_step", cfg.Supplier.Simulator.PriceStep),
		)
	}

	// Create the shared result cache
	resultCache := cache.NewBounded[[]domain.SearchResult](cfg.Cache.Capacity)
	log.Info("result cache created",
		zap.Int("capacity", cfg.Cache.Capacity),
		zap.Duration("refetch_limit", cfg.Cache.RefetchLimit),
	)

	// Create services
	catalogSvc := service.NewCatalogService(repo, gateway, resultCache, cfg.Cache.RefetchLimit, log.Logger)

	// Create validator
	v := validator.New()

	// Create HTTP server
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			AppName:   cfg.App.Name,
			Port:      cfg.App.Port,
			BodyLimit: 1024 * 1024, // 1MB
			Debug:     cfg.App.Debug,
		},
		catalogSvc,
		db,
		v,
		log.Logger,
	)

	// Start background refresh with distributed locking (optional)
	var scheduler *job.RefreshScheduler
	if cfg.Refresh.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		// Ping Redis to verify connection
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		log.Info("connected to Redis",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)

		distLocker := locker.NewRedisLocker(redisClient, log.Logger)

		scheduler = job.NewRefreshScheduler(
			catalogSvc,
			job.RefreshConfig{
				Interval:  cfg.Refresh.Interval,
				Timeout:   cfg.Refresh.Timeout,
				OnStartup: cfg.Refresh.OnStartup,
			},
			log.Logger,
			distLocker,
		)
		scheduler.Start(cfg.Refresh.OnStartup)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		if scheduler != nil {
			scheduler.Stop()
		}

		// Shutdown server with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.App.ShutdownWithContext(ctx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	// Start server
	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
