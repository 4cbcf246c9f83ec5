package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/weatherflow/internal/metrics"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func newRouter(c *metrics.Collector) http.Handler {
	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Get("/ok", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", c.Handler())
	return r
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	c := metrics.NewCollector("test")
	h := newRouter(c)

	for _, p := range []string{"/items/1", "/items/2"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}

	assert.Contains(t, scrape(t, h), `test_api_requests_total{method="GET",route="/items/{id}",status="418"} 2`)
}

func TestMiddleware_ImplicitOK(t *testing.T) {
	c := metrics.NewCollector("test")
	h := newRouter(c)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Contains(t, scrape(t, h), `test_api_requests_total{method="GET",route="/ok",status="200"} 1`)
}

func TestHandler_ExposesCounters(t *testing.T) {
	c := metrics.NewCollector("test")
	h := newRouter(c)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	c.RecordAPIError("not_found", "/ok")

	body := scrape(t, h)
	assert.Contains(t, body, `test_api_requests_total{method="GET",route="/ok",status="200"} 1`)
	assert.Contains(t, body, `test_api_errors_total{kind="not_found",route="/ok"} 1`)
	assert.Contains(t, body, "test_api_request_duration_seconds")
	assert.Contains(t, body, "go_goroutines")
}

func TestRoutePattern_Unmatched(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	assert.Equal(t, "unmatched", metrics.RoutePattern(r))
}

func TestNewCollector_Independent(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = metrics.NewCollector("a")
		_ = metrics.NewCollector("a")
	})
}
