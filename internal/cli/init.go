// Package cli holds the start-up steps of cmd/financas: environment,
// logging, configuration and the optional journal and event backends.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"financas/internal/amqp"
	"financas/internal/config"
	"financas/internal/log"
	"financas/internal/storage"
)

// LoadEnvFile loads the .env file for local development.
// A missing file is fine; production sets the environment directly.
func LoadEnvFile(files ...string) {
	_ = godotenv.Load(files...)
}

// SetupLogger builds the application logger at level and makes it the
// slog default. An unknown level falls back to info.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	if lvl, err := config.ParseLevel(level); err == nil {
		cfg.Level = lvl
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	return cfg
}

// InitJournal opens the mutation journal, or returns nil when dbPath is
// empty. A journal that fails to open is fatal: it was asked for.
func InitJournal(logger *log.Logger, dbPath string) *storage.Journal {
	if dbPath == "" {
		logger.Info("Mutation journal disabled")
		return nil
	}
	j, err := storage.OpenJournal(dbPath, logger)
	if err != nil {
		logger.Error("Failed to open mutation journal", log.FieldError, err.Error(), "path", dbPath)
		os.Exit(1)
	}
	logger.Info("Mutation journal ready", "path", dbPath)
	return j
}

// InitPublisher connects to the broker, or returns nil when url is empty or
// the broker is unreachable. Events are best effort.
func InitPublisher(logger *log.Logger, url, exchange string) *amqp.Client {
	if url == "" {
		logger.Info("AMQP publishing disabled")
		return nil
	}
	c, err := amqp.NewClient(url, exchange, logger)
	if err != nil {
		logger.Warn("AMQP unavailable, continuing without mutation events",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeNetwork)
		return nil
	}
	logger.Info("AMQP publisher ready", "exchange", exchange)
	return c
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
