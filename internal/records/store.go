package records

import (
	"context"
	"fmt"
	"time"

	"github.com/neexbeast/weatherflow/internal/weather"
)

const (
	tableWeatherData = "weather_data"
	tableForecast    = "forecast"
	tableSuggestion  = "search_suggestion"

	forecastLimit   = 10
	suggestionLimit = 5
)

var (
	weatherFields    = []string{"Name", "location", "current_temperature", "current_feels_like", "current_condition", "current_icon", "current_humidity", "current_wind_speed"}
	forecastFields   = []string{"Name", "weather_data_id", "date", "temp_high", "temp_low", "condition", "icon", "precipitation"}
	suggestionFields = []string{"Name", "city_name", "country", "coordinates_lat", "coordinates_lng"}
)

// forecastRow is the wire shape of a forecast record; dates arrive as
// plain calendar dates.
type forecastRow struct {
	ID            int64   `json:"Id"`
	WeatherDataID int64   `json:"weather_data_id"`
	Date          string  `json:"date"`
	TempHigh      float64 `json:"temp_high"`
	TempLow       float64 `json:"temp_low"`
	Condition     string  `json:"condition"`
	Icon          string  `json:"icon"`
	Precipitation int     `json:"precipitation"`
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// FetchByLocation returns the first weather record whose location contains
// the given substring, or nil when none does.
func (c *Client) FetchByLocation(ctx context.Context, location string) (*weather.WeatherRecord, error) {
	q := Query{
		Fields:     weatherFields,
		Where:      []Condition{{FieldName: "location", Operator: "Contains", Values: []any{location}}},
		PagingInfo: PagingInfo{Limit: 1},
	}

	var recs []weather.WeatherRecord
	if err := c.FetchRecords(ctx, tableWeatherData, q, &recs); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

// FetchForecastByParentID returns forecast rows for a weather record,
// ordered by date ascending.
func (c *Client) FetchForecastByParentID(ctx context.Context, parentID int64) ([]weather.ForecastRecord, error) {
	q := Query{
		Fields:     forecastFields,
		Where:      []Condition{{FieldName: "weather_data_id", Operator: "ExactMatch", Values: []any{parentID}}},
		OrderBy:    []OrderBy{{FieldName: "date", SortType: "ASC"}},
		PagingInfo: PagingInfo{Limit: forecastLimit},
	}

	var rows []forecastRow
	if err := c.FetchRecords(ctx, tableForecast, q, &rows); err != nil {
		return nil, err
	}

	out := make([]weather.ForecastRecord, 0, len(rows))
	for _, r := range rows {
		date, err := parseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("forecast %d has malformed date %q: %w", r.ID, r.Date, err)
		}
		out = append(out, weather.ForecastRecord{
			ID:            r.ID,
			WeatherDataID: r.WeatherDataID,
			Date:          date,
			TempHigh:      r.TempHigh,
			TempLow:       r.TempLow,
			Condition:     r.Condition,
			Icon:          r.Icon,
			Precipitation: r.Precipitation,
		})
	}
	return out, nil
}

// SearchByQuery returns cities whose name or country contains query.
func (c *Client) SearchByQuery(ctx context.Context, query string) ([]weather.SuggestionRecord, error) {
	q := Query{
		Fields: suggestionFields,
		WhereGroups: []ConditionGroup{{
			Operator: "OR",
			Conditions: []Condition{
				{FieldName: "city_name", Operator: "Contains", Values: []any{query}},
				{FieldName: "country", Operator: "Contains", Values: []any{query}},
			},
		}},
		PagingInfo: PagingInfo{Limit: suggestionLimit},
	}

	var recs []weather.SuggestionRecord
	if err := c.FetchRecords(ctx, tableSuggestion, q, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
