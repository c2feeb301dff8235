package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/access"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/channel"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/erp"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/handler"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/model"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/pdca"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/scheduler"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/service"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/store"
	"github.com/ServtechRD/SinkerProject26-sub000/internal/version"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/config"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/database"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/jwtutil"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/logger"
	"github.com/ServtechRD/SinkerProject26-sub000/pkg/metrics"
	mid "github.com/ServtechRD/SinkerProject26-sub000/pkg/middleware"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	serviceName = "forecast-planner"
	lockWait    = 5 * time.Second
	pdcaTimeout = 30 * time.Second
)

func main() {
	// Load configuration
	appConfig, err := config.Load(serviceName)
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       appConfig.Log.Level,
		Environment: appConfig.Server.Env,
		ServiceName: serviceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer logger.Sync()

	log.Info("Starting "+serviceName, appConfig.LogConfig()...)

	// Initialize database
	db, err := database.InitDB(&appConfig.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close(db)
	if err := database.MigrateModels(db, model.All()...); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize Prometheus metrics
	httpMetrics := metrics.NewHTTPMetrics(appConfig.Metrics.Prefix)
	metrics.RegisterPlannerMetrics()
	log.Info("Prometheus metrics initialized", zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      appConfig.JWT.SigningKey,
		ExpirationHours: appConfig.JWT.ExpirationHours,
	})

	locker, closeLocker := newLocker(appConfig, log)
	defer closeLocker()

	clock, err := version.NewClock(appConfig.Planner.VersionNodeID, version.WithLocation(appConfig.Location()))
	if err != nil {
		log.Fatal("Failed to create version clock", zap.Error(err))
	}

	erpClient := newERPClient(appConfig, log)
	dispatcher, closeDispatcher := newDispatcher(appConfig, db, log)

	// Stores and services
	forecasts := store.NewForecastStore(db)
	months := store.NewMonthStore(db)
	owners := store.NewOwnerStore(db)
	gate := access.NewGate(months, owners, appConfig.Planner.AdminRole)
	aggregator := channel.NewAggregator(log.Named("aggregator"))

	forecastSvc := service.NewForecastService(forecasts, gate, erpClient, clock, locker, log.Named("forecast"))
	integrationSvc := service.NewIntegrationService(forecasts, aggregator, log.Named("integration"))
	inventorySvc := service.NewInventoryService(forecasts, store.NewInventoryStore(db), aggregator,
		erp.NewResolver(erpClient, appConfig.ERP.Concurrency, log.Named("erp")), clock, locker, dispatcher, log.Named("inventory"))
	monthSvc := service.NewMonthService(months, appConfig.Planner.DefaultAutoCloseDay, nil, log.Named("month"))
	ownerSvc := service.NewOwnershipService(owners, log.Named("ownership"))

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(httpMetrics.Middleware())
	e.Use(middleware.ContextTimeout(appConfig.Server.RequestTimeout))

	// Routes
	e.GET("/metrics", echo.WrapHandler(metrics.GetPrometheusHandler()))
	e.GET("/health", handler.Health(db))

	handler.Register(e, handler.Handlers{
		Forecast:    handler.NewForecastHandler(forecastSvc),
		Integration: handler.NewIntegrationHandler(integrationSvc),
		Inventory:   handler.NewInventoryHandler(inventorySvc),
		Month:       handler.NewMonthHandler(monthSvc),
		Owner:       handler.NewOwnerHandler(ownerSvc),
		Material:    handler.NewMaterialHandler(store.NewMaterialDemandStore(db)),
	}, jwtUtil, appConfig.Planner.AdminRole)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	autoCloser := scheduler.NewAutoCloser(monthSvc, locker, appConfig.Planner.AutoCloseInterval,
		appConfig.Location(), log.Named("scheduler"))
	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		autoCloser.Run(ctx)
	}()

	// Start server
	go func() {
		port := appConfig.Server.Port
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	<-schedulerDone
	closeDispatcher()
	log.Info("Server stopped")
}

// newLocker returns a Redis backed locker when REDIS_ADDRESS is set and an
// in-process one otherwise.
func newLocker(cfg *config.Config, log *zap.Logger) (store.Locker, func()) {
	if cfg.Redis.Address == "" {
		log.Info("Using in-process upload locks")
		return store.NewLocalLocker(), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis", zap.String("address", cfg.Redis.Address), zap.Error(err))
	}
	log.Info("Using Redis upload locks", zap.String("address", cfg.Redis.Address))

	return store.NewRedisLocker(rdb, cfg.Redis.UploadLockTTL, lockWait, log.Named("lock")), func() {
		if err := rdb.Close(); err != nil {
			log.Warn("Failed to close Redis client", zap.Error(err))
		}
	}
}

func newERPClient(cfg *config.Config, log *zap.Logger) erp.Client {
	var client erp.Client
	if cfg.ERP.BaseURL == "" {
		log.Info("Using ERP stub")
		client = erp.NewStubClient()
	} else {
		log.Info("Using ERP endpoint", zap.String("base_url", cfg.ERP.BaseURL))
		client = erp.NewHTTPClient(cfg.ERP.BaseURL, cfg.ERP.Timeout, log.Named("erp"))
	}
	return erp.NewRetrying(client, cfg.ERP.MaxRetries, cfg.ERP.RetryBackoff, log.Named("erp"))
}

func newDispatcher(cfg *config.Config, db *gorm.DB, log *zap.Logger) (pdca.Dispatcher, func()) {
	log = log.Named("pdca")

	if cfg.PDCA.Mode == "pubsub" {
		client, err := pubsub.NewClient(context.Background(), cfg.PDCA.ProjectID)
		if err != nil {
			log.Fatal("Failed to create Pub/Sub client", zap.Error(err))
		}
		d := pdca.NewPubSubDispatcher(client, cfg.PDCA.Topic, pdcaTimeout, log)
		log.Info("Dispatching PDCA requests over Pub/Sub", zap.String("topic", cfg.PDCA.Topic))
		return d, func() {
			d.Close()
			_ = client.Close()
		}
	}

	var client pdca.Client
	if cfg.PDCA.Mode == "http" {
		client = pdca.NewHTTPClient(cfg.PDCA.BaseURL, pdcaTimeout, log)
	} else {
		client = pdca.NewStubClient(log)
	}
	d := pdca.NewAsyncDispatcher(client, store.NewMaterialDemandStore(db), cfg.PDCA.QueueSize, pdcaTimeout, log)
	log.Info("Dispatching PDCA requests in process", zap.String("mode", cfg.PDCA.Mode))
	return d, d.Close
}
