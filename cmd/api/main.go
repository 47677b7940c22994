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

	"github.com/gin-gonic/gin"
	"github.com/vrisetechno/vrise-api/config"
	"github.com/vrisetechno/vrise-api/internal/database/postgres"
	"github.com/vrisetechno/vrise-api/internal/handlers"
	"github.com/vrisetechno/vrise-api/internal/repository"
	"github.com/vrisetechno/vrise-api/internal/services"
	"github.com/vrisetechno/vrise-api/pkg/db"
	"github.com/vrisetechno/vrise-api/pkg/logger"
	"github.com/vrisetechno/vrise-api/pkg/mailer"
	"github.com/vrisetechno/vrise-api/pkg/metrics"
	"github.com/vrisetechno/vrise-api/pkg/profiling"
	"github.com/vrisetechno/vrise-api/pkg/storage"
	"github.com/vrisetechno/vrise-api/pkg/tracing"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting V Rise API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	tracerShutdown, err := tracing.InitTracer(cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.InitProfiler(cfg.Profiling, cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	stopMetrics := make(chan struct{})
	defer close(stopMetrics)
	metrics.RecordInfrastructureMetrics(stopMetrics)

	// Database pool is acquired once and shared by every request.
	// Schema changes run separately via cmd/migrate.
	pool, err := db.NewPool(context.Background(), db.PoolConfig{
		URL:            cfg.Database.URL,
		MaxConns:       cfg.Database.MaxConns,
		MinConns:       cfg.Database.MinConns,
		ConnectRetries: cfg.Database.ConnectRetries,
		RetryDelay:     time.Duration(cfg.Database.ConnectRetryDelayMs) * time.Millisecond,
		CACertPath:     cfg.Database.CACertPath,
		TLSServerName:  cfg.Database.TLSServerName,
	})
	if err != nil {
		logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
	}
	pgClient := postgres.NewClient(pool)
	defer pgClient.Close()

	var sender mailer.Sender
	if cfg.Email.Enabled {
		smtpSender, senderErr := mailer.NewSMTPSender(cfg.Email)
		if senderErr != nil {
			logger.Fatal("Failed to initialize SMTP sender", zap.Error(senderErr))
		}
		sender = smtpSender
	} else {
		logger.Warn("Email notifications disabled: submissions will report emailSent=false")
	}

	var archiver services.ResumeArchiver
	if cfg.ResumeStorage.Enabled() {
		storageClient, storageErr := storage.NewClient(cfg.ResumeStorage)
		if storageErr != nil {
			logger.Fatal("Failed to initialize resume storage client", zap.Error(storageErr))
		}
		archiver = storageClient
	}

	submissionRepo := repository.NewSubmissionRepository(pgClient)
	notificationService := services.NewNotificationService(cfg.Email, sender)
	intakeService := services.NewIntakeService(submissionRepo, notificationService, archiver)

	intakeHandler := handlers.NewIntakeHandler(intakeService)
	healthHandler := handlers.NewHealthHandler(pgClient)

	gin.SetMode(cfg.Server.GinMode)
	router := newRouter(cfg, intakeHandler, healthHandler)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       60 * time.Second, // resumes can be large on slow links
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
