package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"google.golang.org/grpc"

	_ "github.com/feirinha-uesb/storefront/docs"
	"github.com/feirinha-uesb/storefront/internal/backend"
	"github.com/feirinha-uesb/storefront/internal/config"
	"github.com/feirinha-uesb/storefront/internal/history"
	"github.com/feirinha-uesb/storefront/internal/storefront"
	grpcDelivery "github.com/feirinha-uesb/storefront/internal/storefront/delivery/grpc"
	httpDelivery "github.com/feirinha-uesb/storefront/internal/storefront/delivery/http"
	"github.com/feirinha-uesb/storefront/internal/storefront/usecase"
	"github.com/feirinha-uesb/storefront/kafka"
	"github.com/feirinha-uesb/storefront/pkg/database"
	"github.com/feirinha-uesb/storefront/pkg/logger"
	"github.com/feirinha-uesb/storefront/pkg/storage"
	"github.com/feirinha-uesb/storefront/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("storefront-service", true)
		logger.Logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Msg("Starting storefront service")

	// Initialize tracer
	tp, err := tracing.InitTracer(tracing.Config{
		ServiceName:    cfg.ServiceName,
		Environment:    cfg.Environment,
		JaegerEndpoint: cfg.JaegerEndpoint,
		SampleRatio:    cfg.TraceSampleRatio,
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Session storage: Redis when configured, memory otherwise
	var redisClient *redis.Client
	var sessionStorage storage.Backend = storage.NewMemoryBackend()
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Logger.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
		}
		redisStorage, err := storage.NewRedisBackend(redisClient, "storefront:session", cfg.Session.TTL)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to create session storage")
		}
		sessionStorage = redisStorage
		logger.Logger.Info().Str("addr", cfg.Redis.Addr).Msg("Sessions stored in Redis")
	} else {
		logger.Logger.Warn().Msg("REDIS_ADDR not set, sessions are kept in memory")
	}

	// Marketplace backend client
	client := backend.NewClient(
		backend.Config{BaseURL: cfg.Backend.BaseURL, Timeout: cfg.Backend.Timeout},
		backend.NewCircuitBreaker("marketplace-backend", 5, 30*time.Second),
		backend.NewCatalogCache(redisClient, cfg.Backend.CatalogCacheTTL),
	)

	// Order history
	var mirror *history.PostgresProvider
	if cfg.HistoryProvider == history.KindPostgres {
		db, err := database.NewGormConnection(cfg.Database)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
		}
		sqlDB, err := db.DB()
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
		}
		defer sqlDB.Close()

		if mirror, err = history.NewPostgresProvider(db); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
		}
	}
	historyFactory, err := history.NewFactory(cfg.HistoryProvider, client, mirror)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create history provider")
	}

	// Sale events
	publisher := startEvents(ctx, cfg, client, mirror)

	// Initialize handler with Wire DI
	storefrontHandler, err := storefront.InitializeHandler(storefront.Infrastructure{
		Config:     cfg,
		Client:     client,
		Storage:    sessionStorage,
		History:    historyFactory,
		Publisher:  publisher,
		Redis:      redisClient,
		Registerer: prometheus.DefaultRegisterer,
	})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize handler")
	}

	logger.Logger.Info().
		Str("backend_url", cfg.Backend.BaseURL).
		Str("history_provider", cfg.HistoryProvider).
		Bool("sale_events", publisher != nil).
		Msg("Storefront handler initialized")

	// Start gRPC health server
	reporter := grpcDelivery.NewHealthReporter(client, grpcDelivery.DefaultCheckInterval)
	go reporter.Run(ctx)
	grpcServer := grpcDelivery.NewServer(reporter)
	go startGRPCServer(grpcServer, cfg.GRPCPort)

	// Start HTTP server
	httpServer := newHTTPServer(storefrontHandler, cfg)
	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTPPort).
			Str("metrics_endpoint", "/metrics").
			Str("swagger_endpoint", "/swagger/").
			Msg("HTTP server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
	cancel()
	reporter.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("HTTP server forced to shutdown")
	}
	grpcServer.GracefulStop()

	logger.Logger.Info().Msg("Server exited")
}

// startEvents connects the sale event publisher and the consumer that keeps
// the catalog cache and the history mirror fresh. It returns nil when Kafka
// is not configured or unreachable.
func startEvents(ctx context.Context, cfg *config.Config, client *backend.Client, mirror *history.PostgresProvider) usecase.EventPublisher {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Logger.Warn().Msg("KAFKA_BROKERS not set, sale events disabled")
		return nil
	}

	publisher, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to create Kafka publisher, sale events disabled")
		return nil
	}
	go func() {
		<-ctx.Done()
		if err := publisher.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to close Kafka publisher")
		}
	}()

	consumer, err := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, []string{cfg.Kafka.Topic})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to create Kafka consumer")
		return publisher
	}

	var recorder storefront.SaleRecorder
	if mirror != nil {
		recorder = mirror
	}
	consumer.RegisterHandler(kafka.EventTypeSaleCreated, storefront.NewSaleEventHandler(client, recorder))
	if err := consumer.Start(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to start Kafka consumer")
	}
	go func() {
		<-ctx.Done()
		if err := consumer.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to close Kafka consumer")
		}
	}()

	return publisher
}

func newHTTPServer(storefrontHandler *httpDelivery.StorefrontHandler, cfg *config.Config) *http.Server {
	// Setup router
	router := mux.NewRouter()

	// Get middleware configuration
	middlewareConfig := storefrontHandler.GetMiddlewareConfig()

	// Register all middlewares using middleware registration system
	httpDelivery.RegisterMiddlewares(router, middlewareConfig)

	// API routes resolve the session first
	api := router.PathPrefix("/api").Subrouter()
	httpDelivery.RegisterSessionMiddlewares(api, middlewareConfig)
	storefrontHandler.RegisterRoutes(router, api)

	// Swagger UI
	httpDelivery.RegisterSwaggerDocs(router, httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{httpDelivery.SessionTokenHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
	})

	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func startGRPCServer(grpcServer *grpc.Server, port string) {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		logger.Logger.Fatal().Err(err).Str("port", port).Msg("Failed to listen")
	}

	logger.Logger.Info().
		Str("port", port).
		Str("health_service", grpcDelivery.ServiceName).
		Msg("gRPC server started")

	if err := grpcServer.Serve(lis); err != nil {
		logger.Logger.Error().Err(err).Msg("gRPC server stopped")
	}
}
