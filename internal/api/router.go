package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// RouterConfig carries the router's non-handler dependencies.
type RouterConfig struct {
	// RateLimitPerMinute is applied per client IP to the weather routes.
	RateLimitPerMinute int
	// Checks are pinged by the health endpoint, keyed by name.
	Checks map[string]Pinger
}

// NewRouter builds and returns the Chi router with all routes configured.
// Health and metrics are not rate limited.
func NewRouter(handlers *Handlers, cfg RouterConfig, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(handlers.metrics.Middleware)

	r.Get("/api/v1/health", HealthHandlerFunc(cfg.Checks, log))
	r.Handle("/metrics", handlers.metrics.Handler())

	limit := cfg.RateLimitPerMinute
	if limit <= 0 {
		limit = 60
	}

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(limit, time.Minute))

		r.Get("/api/v1/weather", handlers.GetWeather)
		r.Get("/api/v1/weather/coords", handlers.GetWeatherByCoordinates)
		r.Get("/api/v1/sun", handlers.GetSun)
		r.Get("/api/v1/suggestions", handlers.GetSuggestions)
		r.Get("/api/v1/dashboard", handlers.GetDashboard)

		r.Get("/api/v1/preferences", handlers.GetPreferences)
		r.Put("/api/v1/preferences", handlers.PutPreferences)
		r.Delete("/api/v1/preferences", handlers.DeletePreferences)
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
