package api

import (
	"context"

	"github.com/neexbeast/weatherflow/internal/prefs"
	"github.com/neexbeast/weatherflow/internal/weather"
)

// WeatherService is the weather normalization surface the handlers need.
type WeatherService interface {
	ResolveWeatherByCity(ctx context.Context, cityName string, units weather.UnitSystem) (weather.WeatherSnapshot, error)
	ResolveWeatherByCoordinates(ctx context.Context, lat, lng float64, units weather.UnitSystem) (weather.WeatherSnapshot, error)
	ResolveSunPosition(ctx context.Context, locationLabel string) (weather.SunSnapshot, error)
	SearchCitySuggestions(ctx context.Context, query string) ([]weather.CitySuggestion, error)
}

// PrefsStore defines the preference operations needed by handlers.
type PrefsStore interface {
	Get(ctx context.Context, clientID string) (*prefs.Preferences, error)
	Save(ctx context.Context, clientID string, p prefs.Preferences) error
	Delete(ctx context.Context, clientID string) error
}

// Pinger is anything the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}
