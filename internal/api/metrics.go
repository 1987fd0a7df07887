package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes recorded on subscriptions_requests_total.
const (
	outcomeOK           = "ok"
	outcomeInvalid      = "invalid"
	outcomeStorageError = "storage_error"
	outcomeThrottled    = "throttled"
)

// Metrics holds the ingestion collectors on a private registry so that
// several routers (one per test) can coexist in a process.
type Metrics struct {
	registry       *prometheus.Registry
	requests       *prometheus.CounterVec
	insertDuration prometheus.Histogram
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "subscriptions_requests_total",
			Help: "Subscription form submissions by outcome",
		}, []string{"outcome"}),
		insertDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "subscriptions_insert_duration_seconds",
			Help:    "Time spent executing the subscriber insert statement",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncrementOutcome(outcome string) {
	m.requests.WithLabelValues(outcome).Inc()
}

// InsertDuration is handed to the repository, which times the statement.
func (m *Metrics) InsertDuration() prometheus.Observer {
	return m.insertDuration
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
