package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neexbeast/weatherflow/internal/weather"
)

const (
	forecastLimit   = 10
	suggestionLimit = 50
)

// Querier abstracts the subset of pgxpool.Pool used by Repository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository reads weather, forecast and city records from Postgres.
// It implements weather.RecordStore and weather.SuggestionStore.
type Repository struct {
	q Querier
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for tests).
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// FetchByLocation returns the first weather record whose location contains
// the given substring, case-insensitively. Returns nil, nil when none does.
func (r *Repository) FetchByLocation(ctx context.Context, location string) (*weather.WeatherRecord, error) {
	const q = `
		SELECT id, location, current_temperature, current_feels_like,
		       current_condition, current_icon, current_humidity, current_wind_speed
		FROM weather_data
		WHERE location ILIKE $1 ESCAPE '\'
		ORDER BY id
		LIMIT 1
	`

	var rec weather.WeatherRecord
	err := r.q.QueryRow(ctx, q, containsPattern(location)).Scan(
		&rec.ID,
		&rec.Location,
		&rec.CurrentTemperature,
		&rec.CurrentFeelsLike,
		&rec.CurrentCondition,
		&rec.CurrentIcon,
		&rec.CurrentHumidity,
		&rec.CurrentWindSpeed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying weather data for location %s: %w", location, err)
	}

	return &rec, nil
}

// FetchForecastByParentID returns up to ten forecast rows for a weather
// record, ordered by date ascending.
func (r *Repository) FetchForecastByParentID(ctx context.Context, parentID int64) ([]weather.ForecastRecord, error) {
	const q = `
		SELECT id, weather_data_id, date, temp_high, temp_low, condition, icon, precipitation
		FROM forecast
		WHERE weather_data_id = $1
		ORDER BY date ASC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, q, parentID, forecastLimit)
	if err != nil {
		return nil, fmt.Errorf("querying forecast for weather data %d: %w", parentID, err)
	}
	defer rows.Close()

	var results []weather.ForecastRecord
	for rows.Next() {
		var f weather.ForecastRecord
		if err := rows.Scan(
			&f.ID,
			&f.WeatherDataID,
			&f.Date,
			&f.TempHigh,
			&f.TempLow,
			&f.Condition,
			&f.Icon,
			&f.Precipitation,
		); err != nil {
			return nil, fmt.Errorf("scanning forecast row: %w", err)
		}
		results = append(results, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating forecast rows: %w", err)
	}

	return results, nil
}

// SearchByQuery returns cities whose name or country contains query,
// case-insensitively, in insertion order.
func (r *Repository) SearchByQuery(ctx context.Context, query string) ([]weather.SuggestionRecord, error) {
	const q = `
		SELECT id, city_name, country, coordinates_lat, coordinates_lng
		FROM search_suggestion
		WHERE city_name ILIKE $1 ESCAPE '\'
		   OR country ILIKE $1 ESCAPE '\'
		ORDER BY id
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, q, containsPattern(query), suggestionLimit)
	if err != nil {
		return nil, fmt.Errorf("querying search suggestions for %q: %w", query, err)
	}
	defer rows.Close()

	var results []weather.SuggestionRecord
	for rows.Next() {
		var s weather.SuggestionRecord
		if err := rows.Scan(
			&s.ID,
			&s.CityName,
			&s.Country,
			&s.CoordinatesLat,
			&s.CoordinatesLng,
		); err != nil {
			return nil, fmt.Errorf("scanning suggestion row: %w", err)
		}
		results = append(results, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating suggestion rows: %w", err)
	}

	return results, nil
}

