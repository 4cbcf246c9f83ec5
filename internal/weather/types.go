package weather

import (
	"fmt"
	"strings"
	"time"
)

// UnitSystem selects how temperatures and wind speeds are expressed.
type UnitSystem string

const (
	Metric   UnitSystem = "metric"
	Imperial UnitSystem = "imperial"
)

// ParseUnitSystem accepts "metric"/"imperial" as well as the UI aliases
// "celsius"/"fahrenheit" (and "c"/"f"). An empty string yields Metric.
func ParseUnitSystem(s string) (UnitSystem, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "metric", "celsius", "c":
		return Metric, nil
	case "imperial", "fahrenheit", "f":
		return Imperial, nil
	default:
		return "", fmt.Errorf("%w: unknown unit system %q", ErrInvalidInput, s)
	}
}

// Symbol returns the temperature symbol for the unit system.
func (u UnitSystem) Symbol() string {
	if u == Imperial {
		return "°F"
	}
	return "°C"
}

// SpeedSymbol returns the wind speed unit for the unit system.
func (u UnitSystem) SpeedSymbol() string {
	if u == Imperial {
		return "mph"
	}
	return "km/h"
}

// CurrentConditions holds the observed weather at a location.
type CurrentConditions struct {
	Temperature     float64   `json:"temperature"`
	FeelsLike       float64   `json:"feels_like"`
	Condition       string    `json:"condition"`
	Category        Category  `json:"category"`
	Icon            string    `json:"icon,omitempty"`
	HumidityPercent int       `json:"humidity"`
	WindSpeed       float64   `json:"wind_speed"`
	ObservedAt      time.Time `json:"observed_at"`
}

// ForecastDay is a single day of a forecast.
type ForecastDay struct {
	Date                 time.Time `json:"date"`
	TempHigh             float64   `json:"temp_high"`
	TempLow              float64   `json:"temp_low"`
	Condition            string    `json:"condition"`
	Category             Category  `json:"category"`
	Icon                 string    `json:"icon,omitempty"`
	PrecipitationPercent int       `json:"precipitation"`
}

// WeatherSnapshot is the normalized result for a location.
// Forecast is ordered chronologically; day 0 is today.
type WeatherSnapshot struct {
	LocationLabel string            `json:"location"`
	Current       CurrentConditions `json:"current"`
	Forecast      []ForecastDay     `json:"forecast"`
	Units         UnitSystem        `json:"units"`
}

// SunSnapshot describes the sun arc for the current day.
type SunSnapshot struct {
	Location               string    `json:"location"`
	Sunrise                time.Time `json:"sunrise"`
	Sunset                 time.Time `json:"sunset"`
	SolarNoon              time.Time `json:"solar_noon"`
	CurrentPositionPercent int       `json:"current_position"`
	IsDaytime              bool      `json:"is_daytime"`
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CitySuggestion is a single autocomplete entry.
type CitySuggestion struct {
	CityName    string      `json:"city_name"`
	Country     string      `json:"country"`
	Coordinates Coordinates `json:"coordinates"`
}
