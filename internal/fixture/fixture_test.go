package fixture_test

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/weatherflow/internal/fixture"
	"github.com/neexbeast/weatherflow/internal/weather"
)

var loadedAt = time.Date(2024, time.March, 10, 15, 4, 5, 0, time.UTC)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"weather_data.json": {Data: []byte(`[
			{"Id": 1, "location": "New York, NY", "current_temperature": 22, "current_condition": "Sunny"},
			{"Id": 2, "location": "York, UK", "current_temperature": 12, "current_condition": "Rain"}
		]`)},
		"forecast.json": {Data: []byte(`[
			{"Id": 10, "weather_data_id": 1, "day_offset": 2, "temp_high": 20, "temp_low": 10, "condition": "Cloudy"},
			{"Id": 11, "weather_data_id": 1, "day_offset": 0, "temp_high": 24, "temp_low": 15, "condition": "Sunny"},
			{"Id": 12, "weather_data_id": 2, "day_offset": 0, "temp_high": 13, "temp_low": 7, "condition": "Rain"},
			{"Id": 13, "weather_data_id": 1, "day_offset": 1, "temp_high": 22, "temp_low": 14, "condition": "Fog"}
		]`)},
		"search_suggestions.json": {Data: []byte(`[
			{"Id": 1, "city_name": "London", "country": "United Kingdom", "coordinates_lat": 51.5, "coordinates_lng": -0.12},
			{"Id": 2, "city_name": "Paris", "country": "France", "coordinates_lat": 48.85, "coordinates_lng": 2.35},
			{"Id": 3, "city_name": "Londrina", "country": "Brazil", "coordinates_lat": -23.3, "coordinates_lng": -51.16},
			{"Id": 4, "city_name": "Manchester", "country": "United Kingdom", "coordinates_lat": 53.48, "coordinates_lng": -2.24}
		]`)},
	}
}

func newTestStore(t *testing.T) *fixture.Store {
	t.Helper()
	ds, err := fixture.Load(testFS(), loadedAt)
	require.NoError(t, err)
	return fixture.NewStore(ds, func() time.Time { return loadedAt })
}

func TestLoad_AnchorsForecastDates(t *testing.T) {
	ds, err := fixture.Load(testFS(), loadedAt)
	require.NoError(t, err)

	require.Len(t, ds.Forecast, 4)
	assert.Equal(t, time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC), ds.Forecast[0].Date)
	assert.Equal(t, time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), ds.Forecast[1].Date)
}

func TestLoad_MissingFile(t *testing.T) {
	fsys := testFS()
	delete(fsys, "forecast.json")

	_, err := fixture.Load(fsys, loadedAt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forecast.json")
}

func TestLoad_BadJSON(t *testing.T) {
	fsys := testFS()
	fsys["weather_data.json"] = &fstest.MapFile{Data: []byte(`{not json`)}

	_, err := fixture.Load(fsys, loadedAt)
	require.Error(t, err)
}

func TestBundled(t *testing.T) {
	ds, err := fixture.Bundled(loadedAt)
	require.NoError(t, err)

	assert.NotEmpty(t, ds.Weather)
	assert.NotEmpty(t, ds.Forecast)
	assert.NotEmpty(t, ds.Suggestions)

	store := fixture.NewStore(ds, nil)
	rec, err := store.FetchByLocation(context.Background(), weather.DefaultPlaceholderCity)
	require.NoError(t, err)
	require.NotNil(t, rec, "bundled data must cover the coordinate placeholder")
}

func TestFetchByLocation_CaseInsensitiveSubstring(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.FetchByLocation(context.Background(), "new york")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(1), rec.ID)

	// "york" matches both; the first record wins.
	rec, err = store.FetchByLocation(context.Background(), "YORK")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(1), rec.ID)
}

func TestFetchByLocation_Miss(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.FetchByLocation(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestFetchForecastByParentID_SortedByDate(t *testing.T) {
	store := newTestStore(t)

	days, err := store.FetchForecastByParentID(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, int64(11), days[0].ID)
	assert.Equal(t, int64(13), days[1].ID)
	assert.Equal(t, int64(10), days[2].ID)
}

func TestFetchForecastByParentID_FollowsClockAcrossMidnight(t *testing.T) {
	ds, err := fixture.Load(testFS(), loadedAt)
	require.NoError(t, err)

	now := loadedAt
	store := fixture.NewStore(ds, func() time.Time { return now })
	svc := weather.NewService(store, store, weather.WithClock(func() time.Time { return now }))

	snap, err := svc.ResolveWeatherByCity(context.Background(), "New York", weather.Metric)
	require.NoError(t, err)
	require.Len(t, snap.Forecast, 3)
	assert.Equal(t, time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), snap.Forecast[0].Date)

	now = loadedAt.Add(24 * time.Hour)
	snap, err = svc.ResolveWeatherByCity(context.Background(), "New York", weather.Metric)
	require.NoError(t, err)
	require.Len(t, snap.Forecast, 3)
	assert.Equal(t, time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), snap.Forecast[0].Date)
	assert.Equal(t, time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC), snap.Forecast[2].Date)

	// The loaded data set itself is left untouched.
	assert.Equal(t, time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC), ds.Forecast[0].Date)
}

func TestFetchForecastByParentID_HandBuiltDatasetKeepsDates(t *testing.T) {
	d := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	store := fixture.NewStore(&fixture.Dataset{
		Forecast: []weather.ForecastRecord{{ID: 1, WeatherDataID: 7, Date: d}},
	}, func() time.Time { return loadedAt })

	days, err := store.FetchForecastByParentID(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, d, days[0].Date)
}

func TestFetchForecastByParentID_None(t *testing.T) {
	store := newTestStore(t)

	days, err := store.FetchForecastByParentID(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestSearchByQuery_MatchesNameAndCountry(t *testing.T) {
	store := newTestStore(t)

	got, err := store.SearchByQuery(context.Background(), "lon")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "London", got[0].CityName)
	assert.Equal(t, "Londrina", got[1].CityName)

	got, err = store.SearchByQuery(context.Background(), "kingdom")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Manchester", got[1].CityName)
}

func TestStore_ServiceEndToEnd(t *testing.T) {
	store := newTestStore(t)
	svc := weather.NewService(store, store, weather.WithClock(func() time.Time { return loadedAt }))

	snap, err := svc.ResolveWeatherByCity(context.Background(), "new york", weather.Imperial)
	require.NoError(t, err)
	assert.InDelta(t, 71.6, snap.Current.Temperature, 1e-9)
	require.Len(t, snap.Forecast, 3)
	assert.Equal(t, weather.CategorySunny, snap.Forecast[0].Category)
	assert.Equal(t, weather.CategoryFoggy, snap.Forecast[1].Category)
	assert.InDelta(t, 75.2, snap.Forecast[0].TempHigh, 1e-9)

	sugg, err := svc.SearchCitySuggestions(context.Background(), "an")
	require.NoError(t, err)
	// Manchester and France both contain "an".
	require.Len(t, sugg, 2)
	assert.Equal(t, "Paris", sugg[0].CityName)
	assert.Equal(t, "Manchester", sugg[1].CityName)
}

func TestStore_CancelledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.FetchByLocation(ctx, "york")
	require.ErrorIs(t, err, context.Canceled)
}
