package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/de-tools/price-atlas/pkg/models/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the price atlas.
type Metrics struct {
	registry prometheus.Gatherer

	ObservationsAccepted prometheus.Gauge
	ObservationsDropped  prometheus.Gauge
	Forecasts            *prometheus.CounterVec
	Commodities          prometheus.Gauge
	Reloads              *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		ObservationsAccepted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "priceatlas_snapshot_observations_accepted",
			Help: "Observations accepted into the current price snapshot",
		}),
		ObservationsDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "priceatlas_snapshot_observations_dropped",
			Help: "Observations dropped from the current snapshot as invalid",
		}),
		Forecasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "priceatlas_forecasts_total",
			Help: "Forecast requests by generation mode",
		}, []string{"mode"}),
		Commodities: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "priceatlas_commodities",
			Help: "Commodities in the current snapshot",
		}),
		Reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "priceatlas_reloads_total",
			Help: "Scheduled snapshot reloads by outcome",
		}, []string{"outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "priceatlas_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "priceatlas_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		m.ObservationsAccepted,
		m.ObservationsDropped,
		m.Forecasts,
		m.Commodities,
		m.Reloads,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// ObserveIngest reports the counts of the snapshot just loaded; a reload
// replaces the previous values.
func (m *Metrics) ObserveIngest(report domain.IngestReport) {
	m.ObservationsAccepted.Set(float64(report.Accepted))
	m.ObservationsDropped.Set(float64(report.Dropped))
}

func (m *Metrics) ObserveForecast(mode string) {
	m.Forecasts.WithLabelValues(mode).Inc()
}

func (m *Metrics) SetCommodities(n int) {
	m.Commodities.Set(float64(n))
}

func (m *Metrics) ObserveReload(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Reloads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
