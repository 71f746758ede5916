package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/de-tools/price-atlas/pkg/models/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Recorder(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveIngest(domain.IngestReport{Accepted: 10, Dropped: 3})
	m.ObserveIngest(domain.IngestReport{Accepted: 10, Dropped: 3})
	m.ObserveForecast("history")
	m.ObserveForecast("history")
	m.ObserveForecast("category")
	m.SetCommodities(7)
	m.ObserveReload(nil)
	m.ObserveReload(errors.New("boom"))

	assert.Equal(t, 10.0, testutil.ToFloat64(m.ObservationsAccepted), "reloading the same snapshot must not grow the count")
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ObservationsDropped))

	m.ObserveIngest(domain.IngestReport{Accepted: 4})
	assert.Equal(t, 4.0, testutil.ToFloat64(m.ObservationsAccepted))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ObservationsDropped))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Forecasts.WithLabelValues("history")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Forecasts.WithLabelValues("category")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.Commodities))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reloads.WithLabelValues("error")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRequest("/api/v1/commodities", http.StatusOK, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `priceatlas_http_requests_total{route="/api/v1/commodities",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), "priceatlas_http_request_duration_seconds_bucket")
}
