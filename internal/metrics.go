package internal

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultMetricsPath = "/metrics"

// metrics holds the request collectors. A nil *metrics records nothing.
type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	handler  http.Handler
	path     string
}

// newMetrics registers the collectors on reg and serves them from path.
func newMetrics(reg *prometheus.Registry, path string) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anvil",
			Name:      "requests_total",
			Help:      "Total number of requests by pipeline outcome",
		}, []string{"outcome"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "anvil",
			Name:      "request_duration_seconds",
			Help:      "Request handling duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),

		handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		path:    path,
	}
}

func (m *metrics) observe(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(d.Seconds())
}
