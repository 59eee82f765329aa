package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	_ "github.com/tair/smart-inventory/docs"
	"github.com/tair/smart-inventory/internal/inventory"
	grpcDelivery "github.com/tair/smart-inventory/internal/inventory/delivery/grpc"
	httpDelivery "github.com/tair/smart-inventory/internal/inventory/delivery/http"
	"github.com/tair/smart-inventory/internal/inventory/domain"
	"github.com/tair/smart-inventory/internal/inventory/policy"
	inventoryRepository "github.com/tair/smart-inventory/internal/inventory/repository"
	"github.com/tair/smart-inventory/internal/inventory/repository/memory"
	"github.com/tair/smart-inventory/internal/inventory/usecase/command"
	"github.com/tair/smart-inventory/internal/inventory/usecase/query"
	"github.com/tair/smart-inventory/internal/prediction"
	"github.com/tair/smart-inventory/internal/reorder"
	"github.com/tair/smart-inventory/internal/report"
	"github.com/tair/smart-inventory/internal/user"
	userHTTP "github.com/tair/smart-inventory/internal/user/delivery/http"
	userDomain "github.com/tair/smart-inventory/internal/user/domain"
	userRepository "github.com/tair/smart-inventory/internal/user/repository"
	userCommand "github.com/tair/smart-inventory/internal/user/usecase/command"
	"github.com/tair/smart-inventory/kafka"
	"github.com/tair/smart-inventory/pkg/auth"
	"github.com/tair/smart-inventory/pkg/breaker"
	"github.com/tair/smart-inventory/pkg/config"
	"github.com/tair/smart-inventory/pkg/database"
	"github.com/tair/smart-inventory/pkg/logger"
	"github.com/tair/smart-inventory/pkg/ratelimit"
	"github.com/tair/smart-inventory/pkg/tracing"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)
	for _, warning := range cfg.Warnings {
		logger.Logger.Warn().Msg(warning)
	}

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Str("db_driver", cfg.DBDriver).
		Msg("Starting inventory service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize tracing
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(cfg.ServiceName, cfg.JaegerEndpoint)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
					logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
				}
			}()
		}
	}

	// Storage backends
	stores, users, healthCheck, closeDB := openStores(cfg)
	defer closeDB()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Kafka producer
	var publisher *kafka.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		p, err := kafka.NewPublisher(cfg.KafkaBrokers)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Failed to create Kafka publisher, events disabled")
		} else {
			publisher = p
			defer publisher.Close()
		}
	}

	// Reorder dispatcher
	dispatcherOpts := []reorder.Option{reorder.WithMetrics(reorder.NewMetrics(registry))}
	var authLimit func(http.Handler) http.Handler
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unreachable, reorders fall back to at-least-once")
		}
		dispatcherOpts = append(dispatcherOpts, reorder.WithLedger(reorder.NewRedisAttemptLedger(redisClient, cfg.ReorderCycle)))
		authLimit = ratelimit.Middleware(ratelimit.NewRedisLimiter(redisClient, cfg.AuthRateLimit, cfg.AuthRateWindow), "auth")
	}

	deps := inventory.Dependencies{
		Thresholds: policy.NewThresholdStore(cfg.StockWarningThreshold),
		Predictor: prediction.NewGateway(prediction.Config{
			TokenURL:      cfg.PredictionTokenURL,
			GenerationURL: cfg.PredictionGenerationURL(),
			APIKey:        cfg.PredictionAPIKey,
			Timeout:       cfg.PredictionTimeout,
		}),
		Renderer:   report.NewPDFRenderer(),
		Catalogue:  query.DefaultSupplierCatalogue(),
		Registerer: registry,
	}
	if publisher != nil {
		deps.SalePublisher = publisher
		dispatcherOpts = append(dispatcherOpts, reorder.WithPublisher(publisher))
	}
	deps.Dispatcher = reorder.NewDispatcher(
		reorder.NewGuardedSupplierClient(
			reorder.NewHTTPSupplierClient(cfg.SupplierAPIURL, cfg.SupplierTimeout),
			breaker.Settings{MaxFailures: cfg.SupplierMaxFailures, OpenTimeout: cfg.SupplierOpenTimeout},
		),
		stores.Reorders,
		reorder.Config{
			Concurrency: cfg.ReorderConcurrency,
			CallTimeout: cfg.SupplierTimeout,
			Cycle:       cfg.ReorderCycle,
		},
		dispatcherOpts...,
	)

	// Initialize handlers with Wire DI
	app, err := inventory.InitializeApp(stores, deps)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize inventory handlers")
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	accounts, err := user.InitializeModule(users, tokens, registry)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize user handlers")
	}
	if _, err := accounts.EnsureAdmin.Handle(ctx, userCommand.EnsureAdminCommand{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
	}); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to seed admin account")
	}

	// Kafka consumer triggers reorders for sales that crossed the restock point
	if len(cfg.KafkaBrokers) > 0 {
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, []string{kafka.TopicSaleRecorded})
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Failed to create Kafka consumer, sale-driven reorders disabled")
		} else {
			consumer.RegisterHandler(kafka.EventTypeSaleRecorded, kafka.ReorderOnSale(app.Dispatch))
			if err := consumer.Start(ctx); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to start Kafka consumer")
			}
			defer consumer.Close()
		}
	}

	// Periodic reorder evaluation
	scheduler := reorder.NewScheduler(cfg.ReorderInterval, func(ctx context.Context) ([]domain.OrderResult, error) {
		return app.Dispatch.Handle(ctx, command.DispatchReordersCommand{})
	})
	go scheduler.Start(ctx)

	grpcServer := startGRPCServer(cfg.GRPCPort, registry)

	router := newRouter(cfg, app.Handler, accounts.Handler, tokens, authLimit, healthCheck, registry)
	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpDelivery.SetupCORS(httpDelivery.DefaultMiddlewareConfig(cfg.RequestTimeout))(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTPPort).
			Str("metrics_endpoint", "/metrics").
			Str("swagger_endpoint", "/swagger/").
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
	grpcServer.GracefulStop()

	logger.Logger.Info().Msg("Server exited")
}

// openStores selects the storage backend named by DB_DRIVER
func openStores(cfg *config.Config) (inventory.Stores, userDomain.UserRepository, httpDelivery.HealthChecker, func()) {
	if cfg.DBDriver == "memory" {
		logger.Logger.Warn().Msg("Using in-memory storage, data is lost on restart")
		return inventory.NewMemoryStores(memory.NewStore()), userRepository.NewMemoryUserRepository(), nil, func() {}
	}

	db, err := database.NewGormConnection(cfg.Database)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}

	// Run migrations
	if err := inventoryRepository.AutoMigrate(db); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run inventory migrations")
	}
	if err := userRepository.AutoMigrate(db); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run user migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	check := func(ctx context.Context) error {
		return sqlDB.PingContext(ctx)
	}
	closeDB := func() {
		if err := sqlDB.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to close database")
		}
	}
	return inventory.NewGormStores(db), user.ProvideUserRepository(db), check, closeDB
}

func newRouter(
	cfg *config.Config,
	inventoryHandler *httpDelivery.InventoryHandler,
	userHandler *userHTTP.UserHandler,
	tokens *auth.TokenManager,
	authLimit func(http.Handler) http.Handler,
	check httpDelivery.HealthChecker,
	registry *prometheus.Registry,
) *mux.Router {
	router := mux.NewRouter()

	// Register middlewares
	httpDelivery.RegisterMiddlewares(router, httpDelivery.DefaultMiddlewareConfig(cfg.RequestTimeout))

	// Register routes
	requireAuth := auth.RequireAuth(tokens)
	userHandler.RegisterRoutes(router, requireAuth, authLimit)
	inventoryHandler.RegisterRoutes(router, requireAuth)

	// Health check endpoint
	inventoryHandler.RegisterHealthCheck(router, check)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	// Swagger UI
	httpDelivery.RegisterSwaggerDocs(router, httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	return router
}

func startGRPCServer(port string, reg prometheus.Registerer) *grpc.Server {
	interceptors := grpcDelivery.NewInterceptors(reg)
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(interceptors.Unary),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("inventory", grpc_health_v1.HealthCheckResponse_SERVING)

	// Register reflection service (for grpcurl and grpc tools)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		logger.Logger.Fatal().Err(err).Str("port", port).Msg("Failed to listen for gRPC")
	}

	go func() {
		logger.Logger.Info().Str("port", port).Msg("gRPC health server started")
		if err := grpcServer.Serve(lis); err != nil {
			logger.Logger.Error().Err(err).Msg("gRPC server stopped")
		}
	}()
	return grpcServer
}
