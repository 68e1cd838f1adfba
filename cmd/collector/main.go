package main

import (
	"context"
	"fmt"
	"os"

	"playstats/config"
	"playstats/internal/collector"
	"playstats/logger"
	"playstats/pkg/steam"
	"playstats/pkg/storage/csvstore"
	"playstats/pkg/storage/postgres"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// optional .env for local overrides
	_ = godotenv.Load()

	// viper config
	cfg := config.Load()

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	// run returns instead of exiting so deferred cleanups still fire
	if err := run(cfg, log); err != nil {
		log.Error("collector failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	client := steam.NewRESTClient(
		cfg.Steam.ChartsBaseURL,
		cfg.Steam.StoreBaseURL,
		cfg.Steam.CountryCode,
		cfg.Steam.Timeout,
	)

	store := csvstore.New(cfg.Store.CSVPath, cfg.Store.BackupCSVPath, log)

	// optional Postgres mirror
	var mirror *postgres.PostgresClient
	if cfg.Store.PostgresEnabled {
		var err error
		mirror, err = postgres.InitializeAndMigrate(cfg.Postgres, cfg.Log.Environment, true)
		if err != nil {
			return fmt.Errorf("failed to connect to DB: %w", err)
		}
		defer mirror.Close()
	}

	c := collector.New(cfg, client, store, mirror, log)

	runner := &collector.Runner{
		Interval: cfg.Collector.Interval,
		Logger:   log,
	}
	return runner.Start(context.Background(), c.Run)
}
