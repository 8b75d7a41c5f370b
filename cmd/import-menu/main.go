// Package main provides the menu import tool that seeds the meal catalog
// from YAML files.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mealmax/internal/config"
	"github.com/cory-johannsen/mealmax/internal/kitchen"
	"github.com/cory-johannsen/mealmax/internal/observability"
	"github.com/cory-johannsen/mealmax/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	menuDir := flag.String("menus", "content/menus", "path to menu YAML files directory")
	skipExisting := flag.Bool("skip-existing", true, "skip meals whose names already exist instead of failing")
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

	meals, err := kitchen.LoadMealsFromDir(*menuDir)
	if err != nil {
		logger.Fatal("loading menu files", zap.Error(err))
	}
	logger.Info("menu files loaded",
		zap.Int("meals", len(meals)),
		zap.String("dir", *menuDir),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()

	repo := postgres.NewMealRepository(pool.DB())

	imported, skipped := 0, 0
	for _, meal := range meals {
		if _, err := repo.Create(ctx, meal); err != nil {
			if *skipExisting && errors.Is(err, postgres.ErrMealNameTaken) {
				logger.Debug("meal already exists, skipping", zap.String("meal", meal.Name))
				skipped++
				continue
			}
			logger.Fatal("importing meal",
				zap.String("meal", meal.Name),
				zap.Error(err),
			)
		}
		imported++
	}

	logger.Info("menu import complete",
		zap.Int("imported", imported),
		zap.Int("skipped", skipped),
		zap.Duration("elapsed", time.Since(start)),
	)
}
