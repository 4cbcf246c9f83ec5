package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neexbeast/weatherflow/internal/api"
	"github.com/neexbeast/weatherflow/internal/config"
	"github.com/neexbeast/weatherflow/internal/fixture"
	"github.com/neexbeast/weatherflow/internal/metrics"
	"github.com/neexbeast/weatherflow/internal/prefs"
	"github.com/neexbeast/weatherflow/internal/records"
	"github.com/neexbeast/weatherflow/internal/storage"
	"github.com/neexbeast/weatherflow/internal/weather"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

// recordSource is what every backend provides.
type recordSource interface {
	weather.RecordStore
	weather.SuggestionStore
}

func run(log *slog.Logger) error {
	cfg, err := config.Load(log)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := context.Background()
	checks := map[string]api.Pinger{}

	source, cleanup, err := openBackend(ctx, cfg, checks, log)
	if err != nil {
		return err
	}
	defer cleanup()

	// Preferences are optional.
	var prefStore api.PrefsStore
	if cfg.RedisURL != "" {
		redisClient, err := prefs.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer func() { _ = redisClient.Close() }()

		store := prefs.NewStore(redisClient, cfg.PrefsTTL)
		prefStore = store
		checks["redis"] = store
		log.Info("preferences enabled", "ttl", cfg.PrefsTTL)
	}

	opts := []weather.Option{
		weather.WithLogger(log),
		weather.WithPlaceholderCity(cfg.PlaceholderCity),
	}
	if cfg.SimulateLatency {
		opts = append(opts, weather.WithLatency(weather.SimulatedLatency))
	}
	svc := weather.NewService(source, source, opts...)

	collector := metrics.NewCollector("weatherflow")
	handlers := api.NewHandlers(svc, prefStore, collector, cfg.DefaultCity, log)
	router := api.NewRouter(handlers, api.RouterConfig{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Checks:             checks,
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("server goroutine panicked", "recover", r)
				errCh <- fmt.Errorf("server panicked: %v", r)
			}
		}()
		log.Info("server starting", "port", cfg.Port, "backend", cfg.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listening: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server shut down cleanly")
	return nil
}

// openBackend builds the configured record source, registering health
// checks as it goes. The returned cleanup is always safe to call.
func openBackend(ctx context.Context, cfg *config.Config, checks map[string]api.Pinger, log *slog.Logger) (recordSource, func(), error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		pool, err := storage.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}

		applied, err := storage.RunMigrations(ctx, pool, cfg.MigrationsDir)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		log.Info("migrations applied", "files", applied)

		checks["db"] = pool
		return storage.NewRepository(pool), pool.Close, nil

	case config.BackendRecords:
		client := records.NewClient(records.Config{
			BaseURL:   cfg.RecordsBaseURL,
			ProjectID: cfg.RecordsProjectID,
			PublicKey: cfg.RecordsPublicKey,
			Timeout:   cfg.HTTPTimeout,
		})
		log.Info("using record backend", "base_url", cfg.RecordsBaseURL)
		return client, func() {}, nil

	default:
		ds, err := fixture.Bundled(time.Now())
		if err != nil {
			return nil, nil, fmt.Errorf("loading fixtures: %w", err)
		}
		log.Info("using bundled fixtures", "locations", len(ds.Weather))
		return fixture.NewStore(ds, time.Now), func() {}, nil
	}
}
