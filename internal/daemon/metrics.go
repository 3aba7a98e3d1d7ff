package daemon

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	horizon  prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "realtyai",
			Name:      "requests_total",
			Help:      "API requests served, by endpoint and status code.",
		}, []string{"endpoint", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "realtyai",
			Name:      "request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		horizon: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "realtyai",
			Name:      "forecast_horizon_months",
			Help:      "Requested forecast horizons.",
			Buckets:   []float64{1, 3, 6, 12, 24, 36},
		}),
	}
	reg.MustRegister(m.requests, m.latency, m.horizon)
	return m
}

func (m *metrics) observe(endpoint string, code int, d time.Duration) {
	m.requests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
	m.latency.WithLabelValues(endpoint).Observe(d.Seconds())
}
