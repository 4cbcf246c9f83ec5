// Package fixture serves weather, forecast and city records from static
// JSON files. The bundled data set is embedded in the binary.
package fixture

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/neexbeast/weatherflow/internal/weather"
)

//go:embed data/*.json
var bundled embed.FS

const (
	weatherFile     = "weather_data.json"
	forecastFile    = "forecast.json"
	suggestionsFile = "search_suggestions.json"
)

// Dataset is a complete set of records.
type Dataset struct {
	Weather     []weather.WeatherRecord
	Forecast    []weather.ForecastRecord
	Suggestions []weather.SuggestionRecord

	// dayOffsets parallels Forecast when the set was read by Load.
	dayOffsets []int
}

// forecastEntry is the on-disk forecast shape. Dates are stored as an
// offset from the day the data set is loaded so day 0 is always today.
type forecastEntry struct {
	weather.ForecastRecord
	DayOffset int `json:"day_offset"`
}

// Bundled loads the embedded data set with forecast dates anchored at now.
func Bundled(now time.Time) (*Dataset, error) {
	sub, err := fs.Sub(bundled, "data")
	if err != nil {
		return nil, fmt.Errorf("opening bundled fixtures: %w", err)
	}
	return Load(sub, now)
}

// Load reads a data set from fsys. Forecast dates are the midnight of now's
// calendar day plus each entry's day_offset.
func Load(fsys fs.FS, now time.Time) (*Dataset, error) {
	var ds Dataset
	if err := readJSON(fsys, weatherFile, &ds.Weather); err != nil {
		return nil, err
	}
	if err := readJSON(fsys, suggestionsFile, &ds.Suggestions); err != nil {
		return nil, err
	}

	var entries []forecastEntry
	if err := readJSON(fsys, forecastFile, &entries); err != nil {
		return nil, err
	}

	today := midnight(now)
	ds.Forecast = make([]weather.ForecastRecord, 0, len(entries))
	ds.dayOffsets = make([]int, 0, len(entries))
	for _, e := range entries {
		rec := e.ForecastRecord
		rec.Date = today.AddDate(0, 0, e.DayOffset)
		ds.Forecast = append(ds.Forecast, rec)
		ds.dayOffsets = append(ds.dayOffsets, e.DayOffset)
	}

	return &ds, nil
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func readJSON(fsys fs.FS, name string, dst any) error {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("reading fixture %s: %w", name, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decoding fixture %s: %w", name, err)
	}
	return nil
}

// Store implements weather.RecordStore and weather.SuggestionStore over
// an in-memory Dataset. It is read-only and safe for concurrent use.
type Store struct {
	data *Dataset
	now  func() time.Time
}

// NewStore constructs a Store over ds. Forecast dates of a loaded data set
// are re-anchored at now's day on every read; a nil now uses the wall clock.
func NewStore(ds *Dataset, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{data: ds, now: now}
}

// FetchByLocation returns the first record whose location contains the
// given substring, case-insensitively, or nil if none does.
func (s *Store) FetchByLocation(ctx context.Context, location string) (*weather.WeatherRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	needle := strings.ToLower(location)
	for i := range s.data.Weather {
		if strings.Contains(strings.ToLower(s.data.Weather[i].Location), needle) {
			rec := s.data.Weather[i]
			return &rec, nil
		}
	}
	return nil, nil
}

// FetchForecastByParentID returns the forecast rows of a weather record
// ordered by date ascending.
func (s *Store) FetchForecastByParentID(ctx context.Context, parentID int64) ([]weather.ForecastRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	anchored := len(s.data.dayOffsets) == len(s.data.Forecast)
	today := midnight(s.now())

	var out []weather.ForecastRecord
	for i, f := range s.data.Forecast {
		if f.WeatherDataID != parentID {
			continue
		}
		if anchored {
			f.Date = today.AddDate(0, 0, s.data.dayOffsets[i])
		}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// SearchByQuery returns cities whose name or country contains query,
// case-insensitively, in data set order.
func (s *Store) SearchByQuery(ctx context.Context, query string) ([]weather.SuggestionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var out []weather.SuggestionRecord
	for _, c := range s.data.Suggestions {
		if strings.Contains(strings.ToLower(c.CityName), q) || strings.Contains(strings.ToLower(c.Country), q) {
			out = append(out, c)
		}
	}
	return out, nil
}
