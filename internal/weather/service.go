package weather

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultPlaceholderCity is resolved for coordinate lookups.
	DefaultPlaceholderCity = "Current Location"

	maxSuggestions     = 5
	minSuggestionQuery = 2

	// storedUnits is the unit system records are kept in.
	storedUnits = Metric
)

// Latency holds the artificial delays applied before each operation.
type Latency struct {
	City        time.Duration
	Coordinates time.Duration
	Suggestions time.Duration
}

// SimulatedLatency mirrors the delays of the mock dashboard backend.
var SimulatedLatency = Latency{
	City:        800 * time.Millisecond,
	Coordinates: 600 * time.Millisecond,
	Suggestions: 300 * time.Millisecond,
}

// Service resolves queries into normalized weather snapshots.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	records     RecordStore
	suggestions SuggestionStore
	now         func() time.Time
	latency     Latency
	placeholder string
	log         *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock used for timestamps and the sun arc.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLatency enables artificial per-operation delays.
func WithLatency(l Latency) Option {
	return func(s *Service) { s.latency = l }
}

// WithPlaceholderCity sets the city resolved for coordinate lookups.
func WithPlaceholderCity(city string) Option {
	return func(s *Service) { s.placeholder = city }
}

// WithLogger sets the logger used for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// NewService constructs a Service over the given collaborators.
func NewService(records RecordStore, suggestions SuggestionStore, opts ...Option) *Service {
	s := &Service{
		records:     records,
		suggestions: suggestions,
		now:         time.Now,
		placeholder: DefaultPlaceholderCity,
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveWeatherByCity looks up the first record whose location contains
// cityName and returns it converted to units, with its forecast.
func (s *Service) ResolveWeatherByCity(ctx context.Context, cityName string, units UnitSystem) (WeatherSnapshot, error) {
	if err := s.wait(ctx, s.latency.City); err != nil {
		return WeatherSnapshot{}, err
	}
	return s.resolve(ctx, cityName, units)
}

// ResolveWeatherByCoordinates resolves the placeholder city and labels the
// result with the coordinates. No reverse geocoding takes place.
func (s *Service) ResolveWeatherByCoordinates(ctx context.Context, lat, lng float64, units UnitSystem) (WeatherSnapshot, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return WeatherSnapshot{}, fmt.Errorf("%w: coordinates %v,%v out of range", ErrInvalidInput, lat, lng)
	}
	if err := s.wait(ctx, s.latency.Coordinates); err != nil {
		return WeatherSnapshot{}, err
	}

	snap, err := s.resolve(ctx, s.placeholder, units)
	if err != nil {
		return WeatherSnapshot{}, err
	}
	snap.LocationLabel = fmt.Sprintf("%.2f, %.2f", lat, lng)
	return snap, nil
}

// ResolveSunPosition returns the sun arc for the current day.
func (s *Service) ResolveSunPosition(ctx context.Context, locationLabel string) (SunSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return SunSnapshot{}, err
	}
	return SunPosition(locationLabel, s.now()), nil
}

// SearchCitySuggestions returns at most five cities whose name or country
// contains query. Queries shorter than two characters return nothing.
func (s *Service) SearchCitySuggestions(ctx context.Context, query string) ([]CitySuggestion, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minSuggestionQuery {
		return []CitySuggestion{}, nil
	}
	if err := s.wait(ctx, s.latency.Suggestions); err != nil {
		return nil, err
	}

	recs, err := s.suggestions.SearchByQuery(ctx, query)
	if err != nil {
		return nil, upstream(ctx, "searching cities", err)
	}
	if len(recs) > maxSuggestions {
		recs = recs[:maxSuggestions]
	}

	out := make([]CitySuggestion, 0, len(recs))
	for _, r := range recs {
		out = append(out, CitySuggestion{
			CityName: r.CityName,
			Country:  r.Country,
			Coordinates: Coordinates{
				Lat: r.CoordinatesLat,
				Lng: r.CoordinatesLng,
			},
		})
	}
	return out, nil
}

func (s *Service) resolve(ctx context.Context, cityName string, units UnitSystem) (WeatherSnapshot, error) {
	cityName = strings.TrimSpace(cityName)
	if cityName == "" {
		return WeatherSnapshot{}, fmt.Errorf("%w: city name is required", ErrInvalidInput)
	}
	if units != Metric && units != Imperial {
		return WeatherSnapshot{}, fmt.Errorf("%w: unknown unit system %q", ErrInvalidInput, units)
	}

	// Simulated failure hook relied on by the dashboard fixtures.
	if strings.Contains(strings.ToLower(cityName), "nowhere") {
		return WeatherSnapshot{}, fmt.Errorf("city %q: %w", cityName, ErrNotFound)
	}

	rec, err := s.records.FetchByLocation(ctx, cityName)
	if err != nil {
		return WeatherSnapshot{}, upstream(ctx, "fetching weather for "+cityName, err)
	}
	if rec == nil {
		return WeatherSnapshot{}, fmt.Errorf("city %q: %w", cityName, ErrNotFound)
	}

	days, err := s.records.FetchForecastByParentID(ctx, rec.ID)
	if err != nil {
		return WeatherSnapshot{}, upstream(ctx, "fetching forecast for "+cityName, err)
	}

	s.log.Debug("resolved weather record",
		"city", cityName, "record_id", rec.ID, "forecast_days", len(days), "units", units)

	forecast := make([]ForecastDay, 0, len(days))
	for _, d := range days {
		forecast = append(forecast, ForecastDay{
			Date:                 d.Date,
			TempHigh:             ConvertTemperature(d.TempHigh, storedUnits, units),
			TempLow:              ConvertTemperature(d.TempLow, storedUnits, units),
			Condition:            d.Condition,
			Category:             Classify(d.Condition),
			Icon:                 d.Icon,
			PrecipitationPercent: d.Precipitation,
		})
	}

	return WeatherSnapshot{
		LocationLabel: cityName,
		Current: CurrentConditions{
			Temperature:     ConvertTemperature(rec.CurrentTemperature, storedUnits, units),
			FeelsLike:       ConvertTemperature(rec.CurrentFeelsLike, storedUnits, units),
			Condition:       rec.CurrentCondition,
			Category:        Classify(rec.CurrentCondition),
			Icon:            rec.CurrentIcon,
			HumidityPercent: rec.CurrentHumidity,
			WindSpeed:       ConvertWindSpeed(rec.CurrentWindSpeed, units),
			ObservedAt:      s.now(),
		},
		Forecast: forecast,
		Units:    units,
	}, nil
}

// wait blocks for d or until ctx is done.
func (s *Service) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
