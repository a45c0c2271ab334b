// Command server runs the inventory reservation and order fulfillment API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	auditapp "github.com/erp/fulfillment/internal/application/audit"
	catalogapp "github.com/erp/fulfillment/internal/application/catalog"
	inventoryapp "github.com/erp/fulfillment/internal/application/inventory"
	tradeapp "github.com/erp/fulfillment/internal/application/trade"
	"github.com/erp/fulfillment/internal/domain/shared"
	"github.com/erp/fulfillment/internal/infrastructure/cache"
	"github.com/erp/fulfillment/internal/infrastructure/config"
	"github.com/erp/fulfillment/internal/infrastructure/event"
	"github.com/erp/fulfillment/internal/infrastructure/logger"
	"github.com/erp/fulfillment/internal/infrastructure/messaging"
	"github.com/erp/fulfillment/internal/infrastructure/migration"
	"github.com/erp/fulfillment/internal/infrastructure/persistence"
	"github.com/erp/fulfillment/internal/infrastructure/scheduler"
	"github.com/erp/fulfillment/internal/infrastructure/storage"
	"github.com/erp/fulfillment/internal/infrastructure/telemetry"
	"github.com/erp/fulfillment/internal/interfaces/http/handler"
	"github.com/erp/fulfillment/internal/interfaces/http/middleware"
	"github.com/erp/fulfillment/internal/interfaces/http/router"
	"github.com/erp/fulfillment/migrations"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// Bootstrap logger used until the OTLP log bridge is available
	bootLog, err := logger.New(&logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}

	log := bootLog
	if logProvider.IsEnabled() {
		level, _ := logger.ParseLevel(cfg.Log.Level)
		log, err = logger.New(&logger.Config{
			Level:   cfg.Log.Level,
			Format:  cfg.Log.Format,
			Output:  cfg.Log.Output,
			Service: cfg.App.Name,
		}, logProvider.Core(level))
		if err != nil {
			bootLog.Fatal("Failed to initialize logger", zap.Error(err))
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting fulfillment service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithParameterizedQueries(cfg.App.Env == "production"),
	)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, cfg.Telemetry.DBSlowQueryThresh, log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}

	if cfg.Database.MigrateOnStart {
		if err := migrate(db, &cfg.Database, log); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get database handle", zap.Error(err))
	}

	// Repositories
	itemRepo := persistence.NewGormItemRepository(db.DB)
	locationRepo := persistence.NewGormLocationRepository(db.DB)
	taxConfigRepo := persistence.NewGormTaxConfigRepository(db.DB)
	stockRecordRepo := persistence.NewGormStockRecordRepository(db.DB)
	reservationRepo := persistence.NewGormReservationRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	auditRepo := persistence.NewGormAuditLogRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Event bus and idempotency
	eventBus := event.NewInMemoryEventBus(log,
		event.WithWorkers(cfg.Event.Workers),
		event.WithQueueSize(cfg.Event.QueueSize),
	)

	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Event, cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	deduplicated := map[string]shared.EventHandler{
		"audit": auditapp.NewSubscriber(auditRepo, log),
	}

	if meterProvider.IsEnabled() {
		fulfillmentMetrics, err := telemetry.NewFulfillmentMetrics(meterProvider.Meter("fulfillment"))
		if err != nil {
			log.Fatal("Failed to create fulfillment metrics", zap.Error(err))
		}
		eventBus.Subscribe(fulfillmentMetrics)
	}

	var producer messaging.MessageProducer
	if cfg.Kafka.Enabled {
		producer, err = messaging.NewKafkaProducer(cfg.Kafka, tracerProvider.Provider())
		if err != nil {
			log.Fatal("Failed to create Kafka producer", zap.Error(err))
		}
		serializer := event.NewEventSerializer()
		event.RegisterAllEvents(serializer)
		deduplicated["kafka"] = messaging.NewEventForwarder(producer, serializer, log)
		log.Info("Forwarding domain events to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
			zap.Strings("event_types", serializer.RegisteredTypes()),
		)
	}

	handlerMetrics := &event.IdempotencyMetrics{}
	for _, h := range event.WrapHandlersWithIdempotency(deduplicated, idempotencyStore, log,
		event.WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: true, TTL: cfg.Event.IdempotencyTTL}),
		event.WithIdempotencyMetrics(handlerMetrics),
	) {
		eventBus.Subscribe(h)
	}

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	objectStorage, err := storage.New(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	// Application services
	locker := inventoryapp.NewKeyedLocker()

	itemService := catalogapp.NewItemService(itemRepo)
	locationService := catalogapp.NewLocationService(locationRepo)
	taxConfigService := catalogapp.NewTaxConfigService(taxConfigRepo, log)
	if err := taxConfigService.Load(ctx); err != nil {
		log.Fatal("Failed to load tax configuration", zap.Error(err))
	}

	stockService := inventoryapp.NewStockService(stockRecordRepo, locationRepo, itemRepo, txScope, locker, log)
	reservationService := inventoryapp.NewReservationService(reservationRepo, stockRecordRepo, locker, log)
	cartService := tradeapp.NewCartService(cartRepo, itemRepo, taxConfigService, reservationService, log)
	fulfillmentService := tradeapp.NewFulfillmentService(
		orderRepo, cartRepo, itemRepo, taxConfigService, locationRepo,
		stockService, reservationService, log,
	)
	fulfillmentService.SetLocker(locker)
	fulfillmentService.SetIdempotencyStore(idempotencyStore, cfg.Event.IdempotencyTTL)
	fulfillmentService.SetObjectStorage(objectStorage)
	auditService := auditapp.NewService(auditRepo)

	for _, s := range []interface {
		SetEventPublisher(shared.EventPublisher)
	}{stockService, reservationService, cartService, fulfillmentService} {
		s.SetEventPublisher(eventBus)
	}

	// Reservation backfill
	backfillService := tradeapp.NewReservationBackfillService(orderRepo, reservationService, tradeapp.BackfillConfig{
		BatchSize: cfg.Scheduler.BackfillBatch,
	}, log)
	backfillService.SetLocker(locker)
	backfill, err := scheduler.New(scheduler.NewBackfillJob(backfillService), scheduler.Config{
		Enabled:       cfg.Scheduler.Enabled,
		Interval:      cfg.Scheduler.BackfillInterval,
		Timeout:       cfg.Scheduler.JobTimeout,
		RetryAttempts: cfg.Scheduler.RetryAttempts,
		RetryDelay:    cfg.Scheduler.RetryDelay,
		RunOnStart:    true,
	}, log)
	if err != nil {
		log.Fatal("Invalid scheduler configuration", zap.Error(err))
	}
	if err := backfill.Start(ctx); err != nil {
		log.Fatal("Failed to start backfill scheduler", zap.Error(err))
	}

	// HTTP
	metricsMiddleware, err := middleware.HTTPMetrics(meterProvider)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateWindow)
	}

	cors := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	mode := gin.DebugMode
	if cfg.App.Env == "production" {
		mode = gin.ReleaseMode
	}

	engine, err := router.NewEngine(router.EngineConfig{
		Mode:           mode,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: tracerProvider.IsEnabled(),
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		RequestTimeout: cfg.HTTP.WriteTimeout,
		CORS:           cors,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Metrics:        metricsMiddleware,
		RateLimiter:    limiter,
	}, log, router.Handlers{
		System:    handler.NewSystemHandler(cfg.App.Name, version, sqlDB),
		Catalog:   handler.NewCatalogHandler(itemService, locationService, taxConfigService),
		Inventory: handler.NewInventoryHandler(stockService, reservationService),
		Cart:      handler.NewCartHandler(cartService),
		Order:     handler.NewOrderHandler(fulfillmentService, cfg.HTTP.MaxUploadSize),
		Audit:     handler.NewAuditHandler(auditService),
		Backfill:  handler.NewBackfillHandler(backfill),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	// Stop accepting requests first, then drain background work in
	// reverse order of startup
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if limiter != nil {
		limiter.Stop()
	}
	if err := backfill.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping backfill scheduler", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	stats := handlerMetrics.Stats()
	log.Info("Event handlers drained",
		zap.Int64("processed", stats.EventsProcessed),
		zap.Int64("duplicate", stats.EventsDuplicate),
		zap.Int64("failed", stats.EventsFailed),
	)
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Error("Error closing Kafka producer", zap.Error(err))
		}
	}
	if closer, ok := idempotencyStore.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}
	if dbMetrics != nil {
		if err := dbMetrics.Stop(); err != nil {
			log.Error("Error stopping database metrics", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	shutdownTelemetry(shutdownCtx, log, tracerProvider, meterProvider, logProvider)

	log.Info("Server exited gracefully")
}

// migrate applies the embedded SQL migrations on postgres and AutoMigrate on sqlite
func migrate(db *persistence.Database, cfg *config.DatabaseConfig, log *zap.Logger) error {
	if cfg.Driver == config.DriverSQLite {
		log.Info("Auto-migrating sqlite schema")
		return db.AutoMigrate()
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.NewFromFS(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared *sql.DB
	return m.Up()
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// shutdownTelemetry flushes the exporters. The log provider goes last so
// shutdown messages are still exported.
func shutdownTelemetry(ctx context.Context, log *zap.Logger, providers ...shutdowner) {
	for _, p := range providers {
		if err := p.Shutdown(ctx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}
}
