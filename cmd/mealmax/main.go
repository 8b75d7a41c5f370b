// Package main provides the meal battle service binary: an HTTP JSON API
// over the meal catalog and the battle engine.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mealmax/internal/api"
	"github.com/cory-johannsen/mealmax/internal/battle"
	"github.com/cory-johannsen/mealmax/internal/config"
	"github.com/cory-johannsen/mealmax/internal/observability"
	"github.com/cory-johannsen/mealmax/internal/random"
	"github.com/cory-johannsen/mealmax/internal/server"
	"github.com/cory-johannsen/mealmax/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	// Connect to PostgreSQL for the meal catalog
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)
	mealRepo := postgres.NewMealRepository(pool.DB())

	// Select the randomness source
	var source battle.Source
	switch cfg.Random.Source {
	case "crypto":
		source = random.NewCryptoSource()
	default:
		source = random.NewClient(cfg.Random.URL, cfg.Random.Timeout)
	}
	source = random.NewLoggedSource(source, logger)
	logger.Info("randomness source ready", zap.String("source", cfg.Random.Source))

	model := battle.NewModel(source, mealRepo, logger)

	handler := api.NewHandler(mealRepo, model, pool, logger)
	router := api.NewRouter(handler, logger)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("http", &server.FuncService{
		StartFn: func() error {
			logger.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr()))
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
		StopFn: func() {
			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("http shutdown", zap.Error(err))
			}
		},
	})

	healthCheck := server.NewPeriodicService(30*time.Second, func() {
		if err := pool.Health(ctx, 5*time.Second); err != nil {
			logger.Warn("database health check failed", zap.Error(err))
		}
	})
	lifecycle.Add("postgres", &server.FuncService{
		StartFn: healthCheck.Start,
		StopFn: func() {
			healthCheck.Stop()
			pool.Close()
		},
	})

	logger.Info("meal battle service initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("addr", cfg.Server.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
