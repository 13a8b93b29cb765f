package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	directoryapp "github.com/storefront/backend/internal/application/directory"
	"github.com/storefront/backend/internal/application/maintenance"
	settingsapp "github.com/storefront/backend/internal/application/settings"
	"github.com/storefront/backend/internal/application/workcontext"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/geo"
	"github.com/storefront/backend/internal/infrastructure/lock"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/overload"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/infrastructure/useragent"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	// OpenTelemetry export. Spans and log records share one collector; the
	// logger is bridged so every zap entry also ships as an OTLP record.
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	loggerProvider, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer func() {
		if err := loggerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()

	if loggerProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, loggerProvider, logger.ParseLevel(cfg.Log.Level))
		log = telemetry.NewBridgedLogger(log.Core(), otelCore,
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		)
	}

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.AutoMigrate(); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}
	log.Info("Database connected")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:            cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:         cfg.Telemetry.DBLogFullSQL,
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
		DBName:             cfg.Database.DBName,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Shared Redis client for the verdict cache and the fingerprint lock.
	// With Redis disabled the server falls back to in-process equivalents,
	// which is only safe for a single instance.
	var (
		redisClient  *redis.Client
		verdictCache workcontext.ContextCache
		lockProvider workcontext.LockProvider
	)
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		log.Info("Redis connected")

		verdictCache = cache.NewRedisVerdictCacheWithClient(redisClient, log)
		lockProvider = lock.NewRedisLockProvider(redisClient, log)
	} else {
		log.Warn("Redis disabled, using in-process cache and locks")
		memCache := cache.NewInMemoryVerdictCache()
		defer func() {
			if err := memCache.Close(); err != nil {
				log.Error("Error closing verdict cache", zap.Error(err))
			}
		}()
		verdictCache = memCache
		lockProvider = lock.NewInMemoryLockProvider()
	}

	// Initialize repositories
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)
	currencyRepo := persistence.NewGormCurrencyRepository(db.DB)
	countryRepo := persistence.NewGormCountryRepository(db.DB)
	languageRepo := persistence.NewGormLanguageRepository(db.DB)
	storeRepo := persistence.NewGormStoreRepository(db.DB)
	settingRepo := persistence.NewGormSettingRepository(db.DB)

	// Event bus wires domain changes to cache invalidation
	eventBus := event.NewInMemoryEventBus(log)

	// Application services
	directoryService := directoryapp.NewService(customerRepo, roleRepo, eventBus, log)
	settingsService := settingsapp.NewService(settingRepo, eventBus, log)

	if err := directoryService.EnsureBaseline(context.Background()); err != nil {
		log.Fatal("Failed to provision baseline records", zap.Error(err))
	}

	// Work-context resolution pipeline
	overloadPolicy := overload.NewPolicy(overload.Config{
		Enabled:          cfg.Overload.Enabled,
		GuestRequests:    cfg.Overload.GuestRequests,
		BotRequests:      cfg.Overload.BotRequests,
		NewGuestRequests: cfg.Overload.NewGuestRequests,
		Window:           cfg.Overload.Window,
	}, log)
	agentInspector := useragent.NewInspector()
	geoResolver := geo.NewIPRangeResolver(db.DB, countryRepo, log)

	customerResolver := workcontext.NewCustomerResolver(
		directoryService,
		overloadPolicy,
		lockProvider,
		agentInspector,
		workcontext.ResolverConfig{
			SchedulerToken:    cfg.WorkContext.SchedulerToken,
			RendererToken:     cfg.WorkContext.RendererToken,
			WebhookPathPrefix: cfg.WorkContext.WebhookPathPrefix,
			FingerprintWindow: cfg.WorkContext.FingerprintWindow,
			LockTimeout:       cfg.WorkContext.LockTimeout,
		},
		log,
	)
	currencyResolver := workcontext.NewCurrencyResolver(currencyRepo, geoResolver, settingsService, directoryService, log)
	taxResolver := workcontext.NewTaxResolver(settingsService, verdictCache, cfg.WorkContext.TaxCacheTTL, log)
	languageResolver := workcontext.NewLanguageResolver(languageRepo, directoryService, log)
	workContextService := workcontext.NewService(
		customerResolver, currencyResolver, taxResolver, languageResolver, storeRepo, log)

	// Role and setting changes drop the cached tax display verdicts
	invalidationHandler := workcontext.NewCacheInvalidationHandler(taxResolver, log)
	eventBus.Subscribe(invalidationHandler)

	// Background guest purge
	if cfg.Scheduler.Enabled {
		purgeService := maintenance.NewGuestPurgeService(customerRepo, cfg.Scheduler.GuestInactiveAfter, log)
		purgeScheduler := scheduler.NewGuestPurgeScheduler(purgeService, cfg.Scheduler.GuestPurgeInterval, log)
		if err := purgeScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start guest purge scheduler", zap.Error(err))
		}
		defer func() {
			if err := purgeScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping guest purge scheduler", zap.Error(err))
			}
		}()
		log.Info("Guest purge scheduler started",
			zap.Duration("interval", cfg.Scheduler.GuestPurgeInterval),
			zap.Duration("inactive_after", cfg.Scheduler.GuestInactiveAfter),
		)
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		Expiration: cfg.JWT.Expiration,
	})

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()
	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning and context resolution)
	engine.GET("/health", healthHandler(db, redisClient))

	// API routes run behind optional authentication and context resolution
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.OptionalJWTAuth(jwtService))
	r.Use(middleware.WorkContext(middleware.WorkContextConfig{
		Resolver:        workContextService,
		Cookie:          cfg.Cookie,
		AdminPathPrefix: "/api/v1/admin",
		Logger:          log,
	}))
	r.Use(middleware.WorkContextSpanTags())
	r.Register(handler.NewWorkContextHandler(workContextService))
	r.Register(handler.NewAdminHandler(settingsService, directoryService))
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports database and redis reachability
func healthHandler(db *persistence.Database, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)

		status := http.StatusOK
		dbState := "ok"
		redisState := "ok"

		if err := db.Ping(); err != nil {
			reqLog.Warn("Database health check failed", zap.Error(err))
			status = http.StatusServiceUnavailable
			dbState = "error"
		}
		if redisClient == nil {
			redisState = "disabled"
		} else if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			reqLog.Warn("Redis health check failed", zap.Error(err))
			status = http.StatusServiceUnavailable
			redisState = "error"
		}

		body := gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": dbState,
			"redis":    redisState,
		}
		if status != http.StatusOK {
			body["status"] = "unhealthy"
		}
		c.JSON(status, body)
	}
}
