package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eventra/service-event-creation/internal/application"
	"github.com/eventra/service-event-creation/internal/config"
	"github.com/eventra/service-event-creation/internal/domain/wizard"
	"github.com/eventra/service-event-creation/internal/events"
	"github.com/eventra/service-event-creation/internal/handler"
	"github.com/eventra/service-event-creation/internal/payment"
	"github.com/eventra/service-event-creation/internal/platform/auth"
	"github.com/eventra/service-event-creation/internal/platform/database"
	"github.com/eventra/service-event-creation/internal/platform/health"
	"github.com/eventra/service-event-creation/internal/platform/kafka"
	"github.com/eventra/service-event-creation/internal/platform/logger"
	"github.com/eventra/service-event-creation/internal/platform/middleware"
	"github.com/eventra/service-event-creation/internal/platform/telemetry"
	"github.com/eventra/service-event-creation/internal/repository"
	"github.com/eventra/service-event-creation/internal/session"
	"github.com/eventra/service-event-creation/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "service-event-creation"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("version", cfg.Version),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize tracing
	tel, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.TelemetryConfig.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.Version,
		Environment:    cfg.AppEnv,
		CollectorAddr:  cfg.TelemetryConfig.CollectorAddr,
		SampleRatio:    cfg.TelemetryConfig.SampleRatio,
	})
	if err != nil {
		log.Fatal("failed to initialize telemetry", zap.Error(err))
	}

	// Connect to database
	db, err := database.Connect(database.PostgresConfig{
		Host:            cfg.DBConfig.Host,
		Port:            cfg.DBConfig.Port,
		User:            cfg.DBConfig.User,
		Password:        cfg.DBConfig.Password,
		DBName:          cfg.DBConfig.DBName,
		SSLMode:         cfg.DBConfig.SSLMode,
		MaxOpenConns:    cfg.DBConfig.MaxOpenConns,
		MaxIdleConns:    cfg.DBConfig.MaxIdleConns,
		ConnMaxLifetime: cfg.DBConfig.ConnMaxLifetime,
	}, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("failed to run auto-migration", zap.Error(err))
	}
	log.Info("database migration completed")

	healthHandler := health.NewHandler(serviceName).AddCheck("postgres", health.DatabaseCheck(db))

	// Wizard session store
	sessions, closeSessions, err := newSessionStore(ctx, cfg, healthHandler, log)
	if err != nil {
		log.Fatal("failed to initialize session store", zap.Error(err))
	}
	defer closeSessions()

	// Event image storage
	images, err := storage.NewS3ImageStore(storage.S3Config{
		Bucket:          cfg.S3Config.Bucket,
		Region:          cfg.S3Config.Region,
		Endpoint:        cfg.S3Config.Endpoint,
		AccessKeyID:     cfg.S3Config.AccessKeyID,
		SecretAccessKey: cfg.S3Config.SecretAccessKey,
	}, log)
	if err != nil {
		log.Fatal("failed to initialize image store", zap.Error(err))
	}

	// Payment gateway
	gateway, err := payment.NewGateway(cfg.StripeConfig.Gateway, cfg.StripeConfig.SecretKey, cfg.StripeConfig.PaymentMethod)
	if err != nil {
		log.Fatal("failed to initialize payment gateway", zap.Error(err))
	}
	log.Info("payment gateway ready", zap.String("gateway", gateway.Name()))

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		cfg.JWTConfig.AccessTokenTTL,
		cfg.JWTConfig.RefreshTokenTTL,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	eventRepo := repository.NewGormEventRepository(db, images, log)
	venueRepo := repository.NewGormVenueRepository(db)

	// Initialize application services
	loc := cfg.WizardConfig.Location()
	checker := application.NewAvailabilityChecker(venueRepo, log)
	pipeline := application.NewSubmissionPipeline(eventRepo, checker, loc, cfg.WizardConfig.Currency, log)
	wizardService := application.NewWizardService(
		sessions,
		venueRepo,
		checker,
		pipeline,
		gateway,
		events.NewKafkaNavigator(kafkaProducer),
		application.WizardOptions{
			Location:      loc,
			Currency:      cfg.WizardConfig.Currency,
			MaxImageBytes: cfg.WizardConfig.MaxImageBytes,
		},
		log,
	)
	eventService := application.NewEventService(eventRepo, venueRepo, log)

	// Start the cancellation consumer in a goroutine
	groupID := cfg.KafkaConfig.GroupPrefix + "event-creation-service"
	cancellationConsumer := events.NewCancellationConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		eventService,
		log,
	)
	defer func() { _ = cancellationConsumer.Close() }()

	go func() {
		log.Info("starting event cancellation consumer")
		if err := cancellationConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("event cancellation consumer error", zap.Error(err))
		}
	}()

	// Setup Gin router
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	healthHandler.RegisterRoutes(router)

	// Register routes
	handler.NewWizardHandler(wizardService, cfg.WizardConfig.MaxImageBytes).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewCatalogHandler(eventService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewAdminHandler(eventService).RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Cancel the consumer context
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to flush traces", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}

// newSessionStore builds the configured wizard session store and registers its readiness check.
func newSessionStore(ctx context.Context, cfg *config.ServiceConfig, h *health.Handler, log *zap.Logger) (wizard.SessionStore, func(), error) {
	if cfg.WizardConfig.SessionStore == "memory" {
		log.Warn("using in-memory wizard sessions; sessions are lost on restart and not shared between replicas")
		return session.NewMemoryStore(cfg.WizardConfig.SessionTTL), func() {}, nil
	}

	client, err := session.NewRedisClient(ctx, session.RedisConfig{
		Addr:     cfg.RedisConfig.Addr,
		Password: cfg.RedisConfig.Password,
		DB:       cfg.RedisConfig.DB,
	})
	if err != nil {
		return nil, nil, err
	}
	h.AddCheck("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	return session.NewRedisStore(client, cfg.WizardConfig.SessionTTL, log), func() { _ = client.Close() }, nil
}
