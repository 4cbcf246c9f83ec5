package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backend names the source of weather records.
type Backend string

const (
	BackendFixture  Backend = "fixture"
	BackendPostgres Backend = "postgres"
	BackendRecords  Backend = "records"
)

// Config is the server configuration.
type Config struct {
	Port    string
	Backend Backend

	DatabaseURL   string
	MigrationsDir string

	// RedisURL enables per-client preferences when set.
	RedisURL string
	PrefsTTL time.Duration

	RecordsBaseURL   string
	RecordsProjectID string
	RecordsPublicKey string
	HTTPTimeout      time.Duration

	DefaultCity     string
	PlaceholderCity string
	SimulateLatency bool

	RateLimitPerMinute int
}

// Load reads an optional .env file and then the environment.
func Load(log *slog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file loaded", "err", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment with defaults.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:             getenvDefault("PORT", "8080"),
		Backend:          Backend(strings.ToLower(getenvDefault("WEATHER_BACKEND", string(BackendFixture)))),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		MigrationsDir:    getenvDefault("MIGRATIONS_DIR", "migrations"),
		RedisURL:         os.Getenv("REDIS_URL"),
		RecordsBaseURL:   os.Getenv("RECORDS_BASE_URL"),
		RecordsProjectID: os.Getenv("RECORDS_PROJECT_ID"),
		RecordsPublicKey: os.Getenv("RECORDS_PUBLIC_KEY"),
		DefaultCity:      getenvDefault("DEFAULT_CITY", "New York"),
		PlaceholderCity:  getenvDefault("PLACEHOLDER_CITY", "Current Location"),
	}

	var err error
	if cfg.PrefsTTL, err = getenvDuration("PREFS_TTL", 720*time.Hour); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.SimulateLatency, err = getenvBool("SIMULATE_LATENCY", false); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getenvInt("RATE_LIMIT_PER_MINUTE", 60); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendFixture:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres backend")
		}
	case BackendRecords:
		if c.RecordsBaseURL == "" {
			return errors.New("RECORDS_BASE_URL is required for the records backend")
		}
	default:
		return fmt.Errorf("invalid WEATHER_BACKEND %q", c.Backend)
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", c.RateLimitPerMinute)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
