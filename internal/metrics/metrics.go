// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors recorded by the HTTP layer.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// New creates Metrics registered on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "app_http_response",
			Help:    "Response time of HTTP requests in seconds.",
			Buckets: []float64{.001, .003, .005, .01, .02, .03, .05, .1, .2, .3, .5, .75, 1, 2, 3, 5, 10, 30},
		}, []string{"method", "path", "status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "app_http_errors_total",
			Help: "Failed HTTP requests by error family and status.",
		}, []string{"family", "status"}),
	}
	reg.MustRegister(m.requests, m.failures)

	return m
}

// ObserveRequest records the duration of a finished request. path is the
// route pattern, not the raw URL.
func (m *Metrics) ObserveRequest(method, path string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Observe(d.Seconds())
}

// RecordFailure counts a failed request.
func (m *Metrics) RecordFailure(family string, status int) {
	m.failures.WithLabelValues(family, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
