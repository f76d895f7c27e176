package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"financas/internal/api"
	"financas/internal/cache"
	"financas/internal/cli"
	httpserver "financas/internal/http"
	"financas/internal/log"
	"financas/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	client := api.New(cfg.APIEndpoint, &http.Client{Timeout: cfg.APITimeout}, logger)

	queries := cache.NewQueryCache(cfg.CacheMaxEntries, cfg.CacheTTL, logger)
	manager := cache.NewManager(logger)
	manager.Register(queries.Store())
	manager.StartCleanup(cfg.CacheTTL)

	// Interfaces stay nil when a backend is off; a typed nil would not.
	var (
		journal   services.Journal
		publisher services.Publisher
	)
	if j := cli.InitJournal(logger, cfg.JournalDBPath); j != nil {
		journal = j
	}
	if p := cli.InitPublisher(logger, cfg.AMQPURL, cfg.AMQPExchange); p != nil {
		publisher = p
	}
	mutations := services.NewMutationService(journal, publisher, logger)

	srv, err := httpserver.NewServer(httpserver.Options{
		Addr:               ":" + cfg.Port,
		API:                client,
		Queries:            queries,
		Mutations:          mutations,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	})
	if err != nil {
		logger.Error("Failed to build server", log.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting financas server", "port", cfg.Port, "api", cfg.APIEndpoint)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", log.FieldError, err.Error())
	}
	if err := mutations.Close(); err != nil {
		logger.Warn("Closing mutation backends failed", log.FieldError, err.Error())
	}
	manager.Stop()

	logger.Info("Server stopped gracefully")
}
