package main

import (
	"fmt"
	"log/slog"

	"fitmate/internal/adapter/memory"
	"fitmate/internal/adapter/nutrition"
	"fitmate/internal/adapter/postgres"
	"fitmate/internal/adapter/sqlite"
	"fitmate/internal/app"
	"fitmate/internal/config"
	"fitmate/internal/domain"
	"fitmate/internal/logging"
)

type store interface {
	domain.WeightRepository
	domain.FoodRepository
}

// openStore opens the repository selected by cfg.DBDriver.
func openStore(cfg *config.Config) (store, func() error, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite open: %w", err)
		}
		return db, db.Close, nil
	case config.DriverPostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres open: %w", err)
		}
		return db, db.Close, nil
	default:
		return memory.New(), func() error { return nil }, nil
	}
}

// newNutritionClient returns nil when no nutrition service is configured.
func newNutritionClient(cfg *config.Config) *nutrition.Client {
	if cfg.NutritionURL == "" {
		return nil
	}
	return nutrition.New(nutrition.Config{
		BaseURL:    cfg.NutritionURL,
		VisionURL:  cfg.VisionURL,
		Token:      cfg.ClientToken,
		Timeout:    cfg.LookupTimeout,
		MaxRetries: cfg.LookupRetries,
	})
}

// newFoodService wires the optional nutrition collaborators. Interface
// values stay nil when the client is absent.
func newFoodService(repo domain.FoodRepository, client *nutrition.Client, cfg *config.Config) *app.FoodService {
	var (
		lookup     app.NutritionLookup
		recognizer app.MenuRecognizer
	)
	if client != nil {
		lookup = client
		if cfg.VisionURL != "" {
			recognizer = client
		}
	}
	return app.NewFoodService(repo, lookup, recognizer)
}

// loadConfig reads the environment and installs the logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, err
	}
	log := logging.Setup(cfg.LogLevel)
	cfg.Log(log)
	return cfg, log, nil
}
