package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/tair/ministore/internal/cart/domain"
	"github.com/tair/ministore/internal/cart/usecase/command"
	"github.com/tair/ministore/internal/catalog"
	"github.com/tair/ministore/internal/storage"
	"github.com/tair/ministore/internal/storefront"
	httpDelivery "github.com/tair/ministore/internal/storefront/delivery/http"
	"github.com/tair/ministore/internal/storefront/session"
	"github.com/tair/ministore/kafka"
	"github.com/tair/ministore/pkg/config"
	"github.com/tair/ministore/pkg/database"
	"github.com/tair/ministore/pkg/logger"
	"github.com/tair/ministore/pkg/tracing"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()
	cfg := config.Load()

	// Initialize logger
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Str("storage_backend", cfg.Storage.Backend).
		Bool("admin_variant", cfg.AdminVariant).
		Msg("Starting storefront")

	// Initialize tracer
	tp, err := tracing.InitTracer(tracing.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: "1.0.0",
		Enabled:        cfg.Tracing.Enabled,
		JaegerEndpoint: cfg.Tracing.JaegerEndpoint,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStorage(ctx, cfg)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer closeStore()

	publisher, closePublisher := openPublisher(cfg)
	defer closePublisher()

	// Initialize storefront with Wire DI
	app, err := storefront.InitializeStorefront(ctx, cfg, store, publisher, prometheus.DefaultRegisterer)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize storefront")
	}

	go app.Sessions.Run(ctx, time.Minute)

	closeConsumer := startStockConsumer(ctx, cfg, app.Catalog)
	defer closeConsumer()

	closeLimiter := attachRateLimiter(cfg, app.Handler)
	defer closeLimiter()

	server := newHTTPServer(app.Handler, cfg.HTTPPort)
	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTPPort).
			Str("metrics_endpoint", "/metrics").
			Msg("HTTP server started")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	<-ctx.Done()
	logger.Logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}

// openStorage connects the configured backend and wraps it with tracing and
// the process-wide key prefix.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Store, func(), error) {
	var (
		backend storage.Store
		closeFn = func() {}
	)

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		backend = storage.NewMemoryStore()

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		// the session TTL applies to session snapshots only; the catalog never expires
		backend = storage.NewRedisStore(client, cfg.Session.TTL, storage.ExpireWhen(session.IsSessionKey))
		closeFn = func() { _ = client.Close() }

	case config.BackendPostgres:
		db, err := database.NewGormConnection(database.Config{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			DBName:   cfg.Postgres.DBName,
			SSLMode:  cfg.Postgres.SSLMode,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get database instance: %w", err)
		}

		gormStore := storage.NewGormStore(db)
		if err := gormStore.AutoMigrate(); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		backend = gormStore
		closeFn = func() { _ = sqlDB.Close() }

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	logger.Logger.Info().
		Str("backend", cfg.Storage.Backend).
		Str("prefix", cfg.Storage.Prefix).
		Msg("Storage initialized successfully")

	traced := storage.NewTracingStore(backend, cfg.Storage.Backend)
	return storage.WithPrefix(traced, cfg.Storage.Prefix), closeFn, nil
}

// openPublisher returns the Kafka order publisher, or a no-op one when no
// brokers are configured or Kafka is unreachable.
func openPublisher(cfg *config.Config) (domain.OrderPublisher, func()) {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Logger.Info().Msg("KAFKA_BROKERS not set, order events disabled")
		return command.NoopPublisher{}, func() {}
	}

	publisher, err := kafka.NewPublisher(cfg.Kafka.Brokers)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize Kafka publisher, order events disabled")
		return command.NoopPublisher{}, func() {}
	}

	guarded := kafka.NewGuardedPublisher(publisher, 5, 30*time.Second)
	return guarded, func() {
		if err := publisher.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to close Kafka publisher")
		}
	}
}

// startStockConsumer applies placed orders to catalog stock when a consumer
// group is configured.
func startStockConsumer(ctx context.Context, cfg *config.Config, catalogStore *catalog.Store) func() {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.StockGroup == "" {
		return func() {}
	}

	consumer, err := kafka.NewOrderConsumer(cfg.Kafka.Brokers, cfg.Kafka.StockGroup,
		func(ctx context.Context, event kafka.OrderPlacedEvent) error {
			return catalogStore.DecrementStock(ctx, event.Quantities())
		})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize Kafka consumer, stock updates disabled")
		return func() {}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Run(ctx); err != nil {
			logger.Logger.Error().Err(err).Msg("Kafka consumer stopped")
		}
	}()

	return func() {
		if err := consumer.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to close Kafka consumer")
		}
		<-done
	}
}

// attachRateLimiter limits sign-in and admin unlock attempts per client IP.
func attachRateLimiter(cfg *config.Config, handler *httpDelivery.StorefrontHandler) func() {
	if !cfg.RateLimit.Enabled {
		return func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	handler.WithRateLimiter(httpDelivery.NewRateLimiter(client, cfg.RateLimit.Max, cfg.RateLimit.Window))

	logger.Logger.Info().
		Int("max_requests", cfg.RateLimit.Max).
		Dur("window", cfg.RateLimit.Window).
		Msg("Rate limiter enabled")

	return func() { _ = client.Close() }
}

func newHTTPServer(handler *httpDelivery.StorefrontHandler, port string) *http.Server {
	router := mux.NewRouter()

	httpDelivery.DefaultMiddlewareConfig().Apply(router)

	handler.RegisterRoutes(router)
	handler.RegisterHealthCheck(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{httpDelivery.SessionHeader, httpDelivery.RequestIDHeader},
		AllowCredentials: true,
	})

	return &http.Server{
		Addr:              ":" + port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
