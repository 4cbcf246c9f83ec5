package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/neexbeast/weatherflow/internal/weather"
)

// SeedData is a set of records to load into an empty or existing database.
// Forecast rows reference weather records by their ID within SeedData.
type SeedData struct {
	Weather     []weather.WeatherRecord
	Forecast    []weather.ForecastRecord
	Suggestions []weather.SuggestionRecord
}

// SeedResult reports how many rows were written.
type SeedResult struct {
	Weather     int
	Forecast    int
	Suggestions int
}

// Seed upserts weather records by location, replaces their forecasts and
// replaces the suggestion table, all in one transaction.
func Seed(ctx context.Context, db TxBeginner, data SeedData) (SeedResult, error) {
	var res SeedResult

	err := inTx(ctx, db, func(tx pgx.Tx) error {
		ids := make(map[int64]int64, len(data.Weather))
		for _, w := range data.Weather {
			id, err := upsertWeather(ctx, tx, w)
			if err != nil {
				return err
			}
			ids[w.ID] = id

			if _, err := tx.Exec(ctx, `DELETE FROM forecast WHERE weather_data_id = $1`, id); err != nil {
				return fmt.Errorf("clearing forecast for %s: %w", w.Location, err)
			}
			res.Weather++
		}

		for _, f := range data.Forecast {
			parent, ok := ids[f.WeatherDataID]
			if !ok {
				return fmt.Errorf("forecast %d references unknown weather record %d", f.ID, f.WeatherDataID)
			}
			const q = `
				INSERT INTO forecast (name, weather_data_id, date, temp_high, temp_low, condition, icon, precipitation)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`
			name := fmt.Sprintf("%s - %s", f.Condition, f.Date.Format("2006-01-02"))
			if _, err := tx.Exec(ctx, q, name, parent, f.Date, f.TempHigh, f.TempLow, f.Condition, f.Icon, f.Precipitation); err != nil {
				return fmt.Errorf("inserting forecast %d: %w", f.ID, err)
			}
			res.Forecast++
		}

		if _, err := tx.Exec(ctx, `DELETE FROM search_suggestion`); err != nil {
			return fmt.Errorf("clearing search suggestions: %w", err)
		}
		for _, s := range data.Suggestions {
			const q = `
				INSERT INTO search_suggestion (name, city_name, country, coordinates_lat, coordinates_lng)
				VALUES ($1, $1, $2, $3, $4)
			`
			if _, err := tx.Exec(ctx, q, s.CityName, s.Country, s.CoordinatesLat, s.CoordinatesLng); err != nil {
				return fmt.Errorf("inserting suggestion %s: %w", s.CityName, err)
			}
			res.Suggestions++
		}

		return nil
	})
	if err != nil {
		return SeedResult{}, fmt.Errorf("seeding database: %w", err)
	}

	return res, nil
}

func upsertWeather(ctx context.Context, tx pgx.Tx, w weather.WeatherRecord) (int64, error) {
	const q = `
		INSERT INTO weather_data (name, location, current_temperature, current_feels_like,
		                          current_condition, current_icon, current_humidity, current_wind_speed)
		VALUES ($1, $1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (location) DO UPDATE
		SET current_temperature = EXCLUDED.current_temperature,
		    current_feels_like  = EXCLUDED.current_feels_like,
		    current_condition   = EXCLUDED.current_condition,
		    current_icon        = EXCLUDED.current_icon,
		    current_humidity    = EXCLUDED.current_humidity,
		    current_wind_speed  = EXCLUDED.current_wind_speed,
		    updated_at          = NOW()
		RETURNING id
	`

	var id int64
	err := tx.QueryRow(ctx, q,
		w.Location,
		w.CurrentTemperature,
		w.CurrentFeelsLike,
		w.CurrentCondition,
		w.CurrentIcon,
		w.CurrentHumidity,
		w.CurrentWindSpeed,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting weather data for %s: %w", w.Location, err)
	}
	return id, nil
}
