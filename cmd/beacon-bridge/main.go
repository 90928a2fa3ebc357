package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/presencelab/beacon-bridge/internal/adapter/handler"
	"github.com/presencelab/beacon-bridge/internal/domain/repository"
	"github.com/presencelab/beacon-bridge/internal/infrastructure/config"
	"github.com/presencelab/beacon-bridge/internal/infrastructure/observability"
	"github.com/presencelab/beacon-bridge/internal/infrastructure/persistence/firebase"
	"github.com/presencelab/beacon-bridge/internal/infrastructure/persistence/memory"
	"github.com/presencelab/beacon-bridge/internal/infrastructure/persistence/mysql"
	"github.com/presencelab/beacon-bridge/internal/infrastructure/persistence/sqlite"
	"github.com/presencelab/beacon-bridge/internal/infrastructure/server"
	"github.com/presencelab/beacon-bridge/internal/usecase/beacon"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		setupLogger("info", "json").Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)

	logger.Info("configuration loaded",
		"storage_type", cfg.Storage.Type,
		"server_port", cfg.Server.Port,
		"default_duration", cfg.Beacon.DefaultDuration,
		"secret_configured", cfg.Telegram.WebhookSecret != "",
	)

	// Initialize the store based on storage type
	var store repository.Store
	var reader repository.StoreReader
	var sqliteDB *sqlite.DB
	var mysqlDB *mysql.DB

	readyHandler := handler.NewReadyHandler()

	switch strings.ToLower(cfg.Storage.Type) {
	case "sqlite":
		sqliteDB, err = sqlite.NewDB(cfg.Storage.SQLite.Path)
		if err != nil {
			logger.Error("failed to initialize SQLite database", "error", err, "path", cfg.Storage.SQLite.Path)
			os.Exit(1)
		}

		if err := sqliteDB.Migrate(context.Background()); err != nil {
			logger.Error("failed to run database migrations", "error", err)
			sqliteDB.Close()
			os.Exit(1)
		}

		s := sqlite.NewStore(sqliteDB)
		store, reader = s, s
		readyHandler.AddChecker("sqlite", sqliteDB)

		logger.Info("SQLite storage initialized", "path", cfg.Storage.SQLite.Path)

	case "mysql":
		mysqlDB, err = mysql.NewDB(&cfg.Storage.MySQL)
		if err != nil {
			logger.Error("failed to initialize MySQL database", "error", err)
			os.Exit(1)
		}

		if err := mysqlDB.Migrate(context.Background()); err != nil {
			logger.Error("failed to run database migrations", "error", err)
			mysqlDB.Close()
			os.Exit(1)
		}

		s := mysql.NewStore(mysqlDB)
		store, reader = s, s
		readyHandler.AddChecker("mysql", mysqlDB)

		logger.Info("MySQL storage initialized",
			"host", cfg.Storage.MySQL.Host,
			"database", cfg.Storage.MySQL.Database,
			"pool_max_open", cfg.Storage.MySQL.Pool.MaxOpenConns,
			"pool_max_idle", cfg.Storage.MySQL.Pool.MaxIdleConns,
		)

	case "firebase":
		s := firebase.NewStore(
			cfg.Storage.Firebase.DatabaseURL,
			cfg.Storage.Firebase.AuthToken,
			cfg.Storage.Firebase.Timeout,
		)
		store, reader = s, s

		logger.Info("Firebase storage initialized", "database_url", cfg.Storage.Firebase.DatabaseURL)

	case "memory", "":
		s := memory.NewStore()
		store, reader = s, s

		logger.Info("in-memory storage initialized")

	default:
		logger.Error("unknown storage type", "type", cfg.Storage.Type)
		os.Exit(1)
	}

	// Initialize telemetry
	telemetry, err := observability.NewTelemetry(observability.ServiceName, version)
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}

	// Configuration manager for hot reload of dynamic settings
	configManager := config.NewManager(configPath, cfg, logger)

	// Create a slog adapter for use cases
	useCaseLogger := &slogAdapter{logger: logger}

	// Initialize use case
	ingestUC := beacon.NewIngestUpdateUseCase(
		store,
		configManager.DefaultDuration,
		useCaseLogger,
		telemetry.Metrics,
	)

	// Initialize handlers
	webhookHandler := handler.NewTelegramWebhookHandler(ingestUC, configManager.WebhookSecret, useCaseLogger)
	handlers := &server.Handlers{
		Webhook:      webhookHandler,
		Echo:         handler.NewEchoHandler(store, useCaseLogger),
		TestWrite:    handler.NewTestWriteHandler(store, useCaseLogger),
		BeaconStatus: handler.NewBeaconStatusHandler(reader, useCaseLogger),
		Health:       handler.NewHealthHandler(),
		Ready:        readyHandler,
		Metrics:      handler.NewMetricsHandler(),
		Reload:       handler.NewReloadHandler(configManager, useCaseLogger),
	}

	// Setup router and server
	router := server.NewRouter(handlers, logger, telemetry.Metrics)
	srv := server.New(cfg.Server, router, logger)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Watch the config file for dynamic changes
	go func() {
		if err := configManager.Watch(ctx); err != nil {
			logger.Error("config watcher stopped", "error", err)
		}
	}()

	logger.Info("starting beacon-bridge",
		"version", version,
		"port", cfg.Server.Port,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	// Let detached update processing drain before closing the store.
	webhookHandler.Wait()

	if err := telemetry.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shut down telemetry", "error", err)
	}

	// Close MySQL database if it was initialized
	if mysqlDB != nil {
		if err := mysqlDB.Close(); err != nil {
			logger.Error("failed to close MySQL database", "error", err)
		} else {
			logger.Info("MySQL database closed successfully")
		}
	}

	// Close SQLite database if it was initialized
	if sqliteDB != nil {
		if err := sqliteDB.Close(); err != nil {
			logger.Error("failed to close SQLite database", "error", err)
		} else {
			logger.Info("SQLite database closed successfully")
		}
	}

	logger.Info("beacon-bridge stopped")
}

// setupLogger creates and configures the logger.
func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// slogAdapter adapts slog.Logger to the beacon.Logger interface.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Debug(msg string, keysAndValues ...any) {
	a.logger.Debug(msg, keysAndValues...)
}

func (a *slogAdapter) Info(msg string, keysAndValues ...any) {
	a.logger.Info(msg, keysAndValues...)
}

func (a *slogAdapter) Warn(msg string, keysAndValues ...any) {
	a.logger.Warn(msg, keysAndValues...)
}

func (a *slogAdapter) Error(msg string, keysAndValues ...any) {
	a.logger.Error(msg, keysAndValues...)
}
