package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/weatherflow/internal/metrics"
	"github.com/neexbeast/weatherflow/internal/prefs"
	"github.com/neexbeast/weatherflow/internal/weather"
)

// ClientIDHeader identifies the caller whose preferences are read and written.
const ClientIDHeader = "X-Client-ID"

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	svc         WeatherService
	prefs       PrefsStore
	metrics     *metrics.Collector
	defaultCity string
	log         *slog.Logger
}

// NewHandlers constructs Handlers. prefStore may be nil, in which case
// preferences are neither read nor written.
func NewHandlers(svc WeatherService, prefStore PrefsStore, collector *metrics.Collector, defaultCity string, log *slog.Logger) *Handlers {
	return &Handlers{
		svc:         svc,
		prefs:       prefStore,
		metrics:     collector,
		defaultCity: defaultCity,
		log:         log,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handlers) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	h.metrics.RecordAPIError("invalid_input", metrics.RoutePattern(r))
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError maps domain errors onto HTTP statuses.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	route := metrics.RoutePattern(r)
	switch {
	case errors.Is(err, weather.ErrInvalidInput):
		h.metrics.RecordAPIError("invalid_input", route)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, weather.ErrNotFound):
		h.metrics.RecordAPIError("not_found", route)
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "location not found"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.log.Debug("request abandoned", "route", route, "err", err)
		h.metrics.RecordAPIError("abandoned", route)
		writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": "request cancelled or timed out"})
	case errors.Is(err, weather.ErrUpstream):
		h.log.Error("upstream failure", "route", route, "err", err)
		h.metrics.RecordAPIError("upstream", route)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "weather data is temporarily unavailable"})
	default:
		h.log.Error("request failed", "route", route, "err", err)
		h.metrics.RecordAPIError("internal", route)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func clientID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(ClientIDHeader))
}

// loadPrefs returns the caller's stored preferences, or nil when there are
// none or they cannot be read.
func (h *Handlers) loadPrefs(ctx context.Context, id string) *prefs.Preferences {
	if h.prefs == nil || id == "" {
		return nil
	}
	p, err := h.prefs.Get(ctx, id)
	if err != nil {
		h.log.Warn("prefs get failed", "client_id", id, "err", err)
		return nil
	}
	return p
}

func (h *Handlers) rememberLocation(ctx context.Context, id, location string, units weather.UnitSystem) {
	if h.prefs == nil || id == "" {
		return
	}
	if err := h.prefs.Save(ctx, id, prefs.Preferences{LastLocation: location, Units: units}); err != nil {
		h.log.Warn("prefs save failed", "client_id", id, "err", err)
	}
}

// GetWeather handles GET /api/v1/weather?city=&units=.
// A successful lookup becomes the caller's last location.
func (h *Handlers) GetWeather(w http.ResponseWriter, r *http.Request) {
	req, err := parseCityQuery(r)
	if err != nil {
		h.badRequest(w, r, validationMessage(err))
		return
	}
	units, err := weather.ParseUnitSystem(req.Units)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	snap, err := h.svc.ResolveWeatherByCity(r.Context(), req.City, units)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.rememberLocation(r.Context(), clientID(r), req.City, units)
	writeJSON(w, http.StatusOK, snap)
}

// GetWeatherByCoordinates handles GET /api/v1/weather/coords?lat=&lng=&units=.
func (h *Handlers) GetWeatherByCoordinates(w http.ResponseWriter, r *http.Request) {
	req, err := parseCoordsQuery(r)
	if err != nil {
		h.badRequest(w, r, validationMessage(err))
		return
	}
	units, err := weather.ParseUnitSystem(req.Units)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	snap, err := h.svc.ResolveWeatherByCoordinates(r.Context(), *req.Lat, *req.Lng, units)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// GetSun handles GET /api/v1/sun?location=.
func (h *Handlers) GetSun(w http.ResponseWriter, r *http.Request) {
	location := strings.TrimSpace(r.URL.Query().Get("location"))
	if location == "" {
		location = h.defaultCity
	}

	sun, err := h.svc.ResolveSunPosition(r.Context(), location)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sun)
}

// GetSuggestions handles GET /api/v1/suggestions?q=.
func (h *Handlers) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	req := suggestionQuery{Q: r.URL.Query().Get("q")}
	if err := validate.Struct(req); err != nil {
		h.badRequest(w, r, validationMessage(err))
		return
	}

	out, err := h.svc.SearchCitySuggestions(r.Context(), req.Q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type unitSymbols struct {
	Temperature string `json:"temperature"`
	WindSpeed   string `json:"wind_speed"`
}

type dashboardResponse struct {
	Weather weather.WeatherSnapshot `json:"weather"`
	Sun     weather.SunSnapshot     `json:"sun"`
	Symbols unitSymbols             `json:"symbols"`
}

// GetDashboard handles GET /api/v1/dashboard?city=&units=.
// The city falls back to the caller's last location, then to the default
// city. Weather and sun are resolved concurrently; either failing fails the
// whole response.
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := dashboardQuery{
		City:  strings.TrimSpace(q.Get("city")),
		Units: strings.ToLower(strings.TrimSpace(q.Get("units"))),
	}
	if err := validate.Struct(req); err != nil {
		h.badRequest(w, r, validationMessage(err))
		return
	}

	id := clientID(r)
	stored := h.loadPrefs(r.Context(), id)

	city := req.City
	if city == "" && stored != nil {
		city = stored.LastLocation
	}
	if city == "" {
		city = h.defaultCity
	}

	rawUnits := req.Units
	if rawUnits == "" && stored != nil {
		rawUnits = string(stored.Units)
	}
	units, err := weather.ParseUnitSystem(rawUnits)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var resp dashboardResponse
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		snap, err := h.svc.ResolveWeatherByCity(ctx, city, units)
		if err != nil {
			return err
		}
		resp.Weather = snap
		return nil
	})
	g.Go(func() error {
		sun, err := h.svc.ResolveSunPosition(ctx, city)
		if err != nil {
			return err
		}
		resp.Sun = sun
		return nil
	})
	if err := g.Wait(); err != nil {
		h.writeError(w, r, err)
		return
	}

	if req.City != "" {
		h.rememberLocation(r.Context(), id, city, units)
	}
	resp.Symbols = unitSymbols{Temperature: units.Symbol(), WindSpeed: units.SpeedSymbol()}
	writeJSON(w, http.StatusOK, resp)
}

// prefsEnabled writes a 503 and returns false when no store is configured.
func (h *Handlers) prefsEnabled(w http.ResponseWriter) bool {
	if h.prefs == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "preferences are not enabled"})
		return false
	}
	return true
}

func (h *Handlers) requireClientID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := clientID(r)
	if id == "" {
		h.badRequest(w, r, ClientIDHeader+" header is required")
		return "", false
	}
	return id, true
}

// GetPreferences handles GET /api/v1/preferences.
func (h *Handlers) GetPreferences(w http.ResponseWriter, r *http.Request) {
	if !h.prefsEnabled(w) {
		return
	}
	id, ok := h.requireClientID(w, r)
	if !ok {
		return
	}

	p, err := h.prefs.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no preferences stored"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// PutPreferences handles PUT /api/v1/preferences.
func (h *Handlers) PutPreferences(w http.ResponseWriter, r *http.Request) {
	if !h.prefsEnabled(w) {
		return
	}
	id, ok := h.requireClientID(w, r)
	if !ok {
		return
	}

	var body prefsBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
		h.badRequest(w, r, "invalid JSON body")
		return
	}
	body.LastLocation = strings.TrimSpace(body.LastLocation)
	body.Units = strings.ToLower(strings.TrimSpace(body.Units))
	if err := validate.Struct(body); err != nil {
		h.badRequest(w, r, validationMessage(err))
		return
	}
	units, err := weather.ParseUnitSystem(body.Units)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	p := prefs.Preferences{LastLocation: body.LastLocation, Units: units}
	if err := h.prefs.Save(r.Context(), id, p); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeletePreferences handles DELETE /api/v1/preferences.
func (h *Handlers) DeletePreferences(w http.ResponseWriter, r *http.Request) {
	if !h.prefsEnabled(w) {
		return
	}
	id, ok := h.requireClientID(w, r)
	if !ok {
		return
	}

	if err := h.prefs.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthHandlerFunc returns an http.HandlerFunc that pings every check.
// Returns 200 if all are ok, 503 otherwise.
func HealthHandlerFunc(checks map[string]Pinger, log *slog.Logger) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{}

		for _, name := range names {
			body[name] = "ok"
			if err := checks[name].Ping(ctx); err != nil {
				log.Error("health check: ping failed", "check", name, "err", err)
				body[name] = "error"
				status = http.StatusServiceUnavailable
			}
		}

		body["status"] = "ok"
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		writeJSON(w, status, body)
	}
}
