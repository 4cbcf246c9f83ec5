package weather

import (
	"context"
	"time"
)

// WeatherRecord is a stored current-conditions row. Temperatures are
// Celsius and wind speed is km/h.
type WeatherRecord struct {
	ID                 int64   `json:"Id"`
	Location           string  `json:"location"`
	CurrentTemperature float64 `json:"current_temperature"`
	CurrentFeelsLike   float64 `json:"current_feels_like"`
	CurrentCondition   string  `json:"current_condition"`
	CurrentIcon        string  `json:"current_icon"`
	CurrentHumidity    int     `json:"current_humidity"`
	CurrentWindSpeed   float64 `json:"current_wind_speed"`
}

// ForecastRecord is a stored forecast row belonging to a WeatherRecord.
type ForecastRecord struct {
	ID            int64     `json:"Id"`
	WeatherDataID int64     `json:"weather_data_id"`
	Date          time.Time `json:"date"`
	TempHigh      float64   `json:"temp_high"`
	TempLow       float64   `json:"temp_low"`
	Condition     string    `json:"condition"`
	Icon          string    `json:"icon"`
	Precipitation int       `json:"precipitation"`
}

// SuggestionRecord is a stored city used for autocomplete.
type SuggestionRecord struct {
	ID             int64   `json:"Id"`
	CityName       string  `json:"city_name"`
	Country        string  `json:"country"`
	CoordinatesLat float64 `json:"coordinates_lat"`
	CoordinatesLng float64 `json:"coordinates_lng"`
}

// RecordStore provides raw weather and forecast records.
type RecordStore interface {
	// FetchByLocation returns the first record whose location contains
	// the given substring, case-insensitively. Returns nil, nil when
	// nothing matches.
	FetchByLocation(ctx context.Context, location string) (*WeatherRecord, error)
	// FetchForecastByParentID returns forecast rows for a weather record,
	// ordered by date ascending.
	FetchForecastByParentID(ctx context.Context, parentID int64) ([]ForecastRecord, error)
}

// SuggestionStore searches city records by city name or country.
type SuggestionStore interface {
	SearchByQuery(ctx context.Context, query string) ([]SuggestionRecord, error)
}
