package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	analyticsapp "github.com/agencydesk/backend/internal/application/analytics"
	billingapp "github.com/agencydesk/backend/internal/application/billing"
	crmapp "github.com/agencydesk/backend/internal/application/crm"
	filesapp "github.com/agencydesk/backend/internal/application/files"
	financeapp "github.com/agencydesk/backend/internal/application/finance"
	integrationapp "github.com/agencydesk/backend/internal/application/integration"
	marketingapp "github.com/agencydesk/backend/internal/application/marketing"
	messagingapp "github.com/agencydesk/backend/internal/application/messaging"
	notificationapp "github.com/agencydesk/backend/internal/application/notification"
	"github.com/agencydesk/backend/internal/application/query"
	schedulingapp "github.com/agencydesk/backend/internal/application/scheduling"
	settingsapp "github.com/agencydesk/backend/internal/application/settings"
	workapp "github.com/agencydesk/backend/internal/application/work"
	"github.com/agencydesk/backend/internal/infrastructure/auth"
	"github.com/agencydesk/backend/internal/infrastructure/cache"
	"github.com/agencydesk/backend/internal/infrastructure/config"
	"github.com/agencydesk/backend/internal/infrastructure/event"
	"github.com/agencydesk/backend/internal/infrastructure/integration/plaid"
	"github.com/agencydesk/backend/internal/infrastructure/integration/xero"
	"github.com/agencydesk/backend/internal/infrastructure/logger"
	"github.com/agencydesk/backend/internal/infrastructure/persistence"
	"github.com/agencydesk/backend/internal/infrastructure/scheduler"
	"github.com/agencydesk/backend/internal/infrastructure/secrets"
	"github.com/agencydesk/backend/internal/infrastructure/storage"
	"github.com/agencydesk/backend/internal/infrastructure/telemetry"
	"github.com/agencydesk/backend/internal/interfaces/http/handler"
	"github.com/agencydesk/backend/internal/interfaces/http/middleware"
	"github.com/agencydesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

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

	log.Info("Starting AgencyDesk backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Telemetry comes up before anything else so the DB and HTTP layers
	// pick up the global providers
	providers, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	prof := cfg.Telemetry.Profiling
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:              prof.Enabled,
		ServerAddress:        prof.ServerAddress,
		ApplicationName:      prof.ApplicationName,
		BasicAuthUser:        prof.BasicAuthUser,
		BasicAuthPassword:    prof.BasicAuthPassword,
		ProfileTypes:         prof.ProfileTypes,
		MutexProfileFraction: prof.MutexProfileFraction,
		BlockProfileRate:     prof.BlockProfileRate,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() && prof.SpanProfiles {
		providers.EnableSpanProfiles()
	}

	if providers.IsEnabled() {
		otelCore := providers.ZapCore(logger.ParseLevel(cfg.Log.Level))
		log = log.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, otelCore)
		}))
	}
	meter := providers.Meter(cfg.Telemetry.ServiceName)

	metrics, err := telemetry.NewBusinessMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL),
	)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.InstrumentDB(db.DB, telemetry.DBConfig{
		Tracing:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, meter, log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}

	// Query cache
	cacheStack, err := cache.NewStoreFactory(cfg.Cache, cfg.Redis, cache.WithLogger(log)).Create(ctx)
	if err != nil {
		log.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer func() {
		if err := cacheStack.Close(); err != nil {
			log.Error("Error closing cache", zap.Error(err))
		}
	}()
	queryClient := query.NewClient(cacheStack.Store, cfg.Cache, log)

	objectStorage, err := storage.New(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	sealer, err := newSealer(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize settings encryption", zap.Error(err))
	}

	// Initialize repositories
	clientRepo := persistence.NewGormClientRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	taskRepo := persistence.NewGormTaskRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	calendarRepo := persistence.NewGormCalendarRepository(db.DB)
	eventRepo := persistence.NewGormEventRepository(db.DB)
	bookingRepo := persistence.NewGormBookingRepository(db.DB)
	fileRepo := persistence.NewGormFileRepository(db.DB)
	folderRepo := persistence.NewGormFolderRepository(db.DB)
	conversationRepo := persistence.NewGormConversationRepository(db.DB)
	messageRepo := persistence.NewGormMessageRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	preferencesRepo := persistence.NewGormPreferencesRepository(db.DB)
	recordRepo := persistence.NewGormRecordRepository(db.DB)
	bankTxRepo := persistence.NewGormBankTransactionRepository(db.DB)
	financeUoW := persistence.NewGormFinanceUnitOfWork(db.DB)
	leadRepo := persistence.NewGormLeadRepository(db.DB)
	campaignRepo := persistence.NewGormCampaignRepository(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)

	eventBus := event.NewBus(log)

	// Initialize application services
	settingsStore := settingsapp.NewStore(settingsRepo, queryClient,
		settingsapp.WithSealer(sealer),
		settingsapp.WithLogger(log),
	)
	clientService := crmapp.NewClientService(clientRepo, queryClient)
	projectService := workapp.NewProjectService(projectRepo, queryClient)
	taskService := workapp.NewTaskService(taskRepo, queryClient)
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, queryClient, eventBus, log, billingapp.WithMetrics(metrics))
	calendarService := schedulingapp.NewCalendarService(calendarRepo, eventRepo, bookingRepo, queryClient)
	bookingService := schedulingapp.NewBookingService(bookingRepo, queryClient, eventBus, log)
	fileService := filesapp.NewFileService(fileRepo, folderRepo, objectStorage, queryClient, log)
	messagingService := messagingapp.NewMessagingService(conversationRepo, messageRepo, queryClient, eventBus, log)
	notificationService := notificationapp.NewNotificationService(notificationRepo, preferencesRepo, queryClient)
	recordService := financeapp.NewRecordService(recordRepo, bankTxRepo, financeUoW, queryClient, log, financeapp.WithMetrics(metrics))
	reconciliationService := financeapp.NewReconciliationService(recordRepo, bankTxRepo, financeUoW, queryClient, log, financeapp.WithMetrics(metrics))
	exportService := financeapp.NewExportService(recordRepo, settingsStore, log, financeapp.WithMetrics(metrics))
	leadService := marketingapp.NewLeadService(leadRepo, clientRepo, queryClient, eventBus, log, marketingapp.WithMetrics(metrics))
	campaignService := marketingapp.NewCampaignService(campaignRepo, leadRepo, queryClient, marketingapp.WithMetrics(metrics))
	analyticsService := analyticsapp.NewService(invoiceRepo, projectRepo, clientRepo, taskRepo, queryClient)

	// Event handlers
	eventBus.Subscribe(crmapp.NewRevenueHandler(clientRepo, queryClient))
	eventBus.Subscribe(notificationapp.NewEventHandler(notificationService, log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Background jobs
	jobs := scheduler.New(log)
	if cfg.Scheduler.OverdueSweepEnabled {
		if err := jobs.Register(billingapp.NewOverdueSweep(invoiceService), cfg.Scheduler.OverdueSweepInterval,
			scheduler.RunOnStart(),
			scheduler.WithTimeout(cfg.Scheduler.OverdueSweepInterval/2),
		); err != nil {
			log.Fatal("Failed to register overdue sweep", zap.Error(err))
		}
	}
	if err := jobs.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// Initialize HTTP handlers
	registrars := []router.RouteRegistrar{
		handler.NewClientHandler(clientService),
		handler.NewWorkHandler(projectService, taskService),
		handler.NewInvoiceHandler(invoiceService),
		handler.NewSchedulingHandler(calendarService, bookingService),
		handler.NewFileHandler(fileService),
		handler.NewMessagingHandler(messagingService),
		handler.NewNotificationHandler(notificationService),
		handler.NewFinanceHandler(recordService, reconciliationService, exportService),
		handler.NewMarketingHandler(leadService, campaignService),
		handler.NewAnalyticsHandler(analyticsService),
		handler.NewSettingsHandler(settingsStore),
	}
	if integrations := newIntegrationHandler(cfg, settingsStore, bankTxRepo, invoiceRepo, clientRepo, queryClient, metrics, log); integrations != nil {
		registrars = append(registrars, integrations)
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, map[string]handler.Check{
		"database": func(context.Context) error { return db.Ping() },
		"cache": func(ctx context.Context) error {
			_, _, err := cacheStack.Store.Get(ctx, "health:ping")
			return err
		},
	}, jobs)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup custom validator with user-facing messages
	middleware.SetupValidator()

	// Create Gin engine
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	// Middleware stack, outermost first
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log, "/health", "/ready"))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFrom(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		engine.Use(middleware.RateLimit(limiter))
	}

	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.ProfilingWithConfig(middleware.ProfilingConfig{
		Enabled:   profiler.IsEnabled(),
		SkipPaths: middleware.DefaultProfilingSkipPaths,
	}))
	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}
	engine.Use(httpMetrics)

	systemHandler.RegisterRoutes(engine)

	jwtService := auth.NewJWTService(cfg.JWT)
	r := router.NewRouter(engine, router.WithMiddleware(
		middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
			JWTService:  jwtService,
			Revocations: auth.NewTokenBlacklist(cacheStack.Store),
			Logger:      log,
		}),
		middleware.SpanAttributes(),
	))
	r.Register(registrars...).Setup()

	for _, ri := range r.Routes() {
		log.Debug("Route", zap.String("method", ri.Method), zap.String("path", ri.Path))
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
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping scheduler", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}

	log.Info("Server exited")
}

// newSealer builds the settings sealer. Outside production a missing key
// is replaced by a per-process one, so secret settings do not survive a
// restart.
func newSealer(cfg *config.Config, log *zap.Logger) (*secrets.AEADSealer, error) {
	key := cfg.Settings.EncryptionKey
	if key == "" {
		if cfg.App.Env == "production" {
			return nil, errors.New("settings encryption key is required in production")
		}
		generated, err := secrets.GenerateKey()
		if err != nil {
			return nil, err
		}
		log.Warn("No settings encryption key configured, using an ephemeral key")
		key = generated
	}
	return secrets.NewSealer(key)
}

// newIntegrationHandler wires Plaid and Xero. Both need credentials; when
// either is missing the integration routes are not mounted.
func newIntegrationHandler(
	cfg *config.Config,
	store *settingsapp.Store,
	bankTxRepo *persistence.GormBankTransactionRepository,
	invoiceRepo *persistence.GormInvoiceRepository,
	clientRepo *persistence.GormClientRepository,
	queryClient *query.Client,
	metrics *telemetry.BusinessMetrics,
	log *zap.Logger,
) *handler.IntegrationHandler {
	plaidClient, err := plaid.NewClient(cfg.Integrations.Plaid, log)
	if err != nil {
		log.Warn("Plaid not configured, banking routes disabled", zap.Error(err))
		return nil
	}
	xeroClient, err := xero.NewClient(cfg.Integrations.Xero, log)
	if err != nil {
		log.Warn("Xero not configured, integration routes disabled", zap.Error(err))
		return nil
	}

	banking := integrationapp.NewBankingService(plaidClient, store, bankTxRepo, queryClient, log, integrationapp.WithMetrics(metrics))
	accounting := integrationapp.NewXeroService(xeroClient, store, invoiceRepo, clientRepo, log, integrationapp.WithMetrics(metrics))
	return handler.NewIntegrationHandler(banking, accounting)
}
