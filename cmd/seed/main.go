// Command seed loads the bundled fixtures into Postgres. Forecast dates are
// anchored at today.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/neexbeast/weatherflow/internal/config"
	"github.com/neexbeast/weatherflow/internal/fixture"
	"github.com/neexbeast/weatherflow/internal/storage"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	migrate := flag.Bool("migrate", true, "apply migrations before seeding")
	flag.Parse()

	if err := run(log, *migrate); err != nil {
		log.Error("seed failed", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger, migrate bool) error {
	cfg, err := config.Load(log)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if migrate {
		applied, err := storage.RunMigrations(ctx, pool, cfg.MigrationsDir)
		if err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		log.Info("migrations applied", "files", applied)
	}

	ds, err := fixture.Bundled(time.Now())
	if err != nil {
		return fmt.Errorf("loading fixtures: %w", err)
	}

	res, err := storage.Seed(ctx, pool, storage.SeedData{
		Weather:     ds.Weather,
		Forecast:    ds.Forecast,
		Suggestions: ds.Suggestions,
	})
	if err != nil {
		return err
	}

	log.Info("seed complete", "weather", res.Weather, "forecast", res.Forecast, "suggestions", res.Suggestions)
	return nil
}
