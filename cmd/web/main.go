package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"pos-analytics/internal/config"
	"pos-analytics/internal/middleware"
	"pos-analytics/internal/observability"
	"pos-analytics/internal/server"
	"pos-analytics/internal/services"
	"pos-analytics/internal/store"
	"pos-analytics/internal/store/memory"
	"pos-analytics/internal/store/sqlite"
)

// openStore selects the Repository backend from configuration and returns it
// along with its shutdown hook. The memory driver has nothing to close.
func openStore(cfg config.StoreConfig) (store.Repository, func(ctx context.Context) error, error) {
	switch cfg.Driver {
	case "memory":
		return memory.New(), func(context.Context) error { return nil }, nil
	case "sqlite":
		db, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return db, func(context.Context) error { return db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"store_driver", cfg.Store.Driver,
	)

	repo, closeStore, err := openStore(cfg.Store)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}

	engine := services.NewEngine(repo, cfg.Analytics, logger)
	srv := server.NewServer(engine, logger)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	handler := middlewareChain(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("closing store")
		return closeStore(ctx)
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
