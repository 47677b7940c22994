package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/vrisetechno/vrise-api/config"
	"github.com/vrisetechno/vrise-api/pkg/db"
	"github.com/vrisetechno/vrise-api/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	down := flag.Bool("down", false, "roll back every migration instead of applying them")
	flag.Parse()

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
		ServiceName: "vrise-migrate",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	direction := db.Up
	if *down {
		direction = db.Down
	}

	logger.Info("Starting database migrations",
		zap.String("database", maskDatabaseURL(cfg.Database.URL)),
		zap.String("source", cfg.Database.MigrationsPath),
		zap.String("direction", string(direction)))

	start := time.Now()
	poolCfg := db.PoolConfig{
		URL:           cfg.Database.URL,
		CACertPath:    cfg.Database.CACertPath,
		TLSServerName: cfg.Database.TLSServerName,
	}
	if err := db.RunMigrations(poolCfg, cfg.Database.MigrationsPath, direction); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("Database migrations completed successfully",
		zap.Duration("duration", time.Since(start)))
}

// maskDatabaseURL hides the password before the URL is logged
func maskDatabaseURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return "***"
	}
	return parsed.Redacted()
}
