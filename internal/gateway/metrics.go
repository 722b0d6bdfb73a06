package gateway

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for pipeline decisions.
type Metrics struct {
	decisionsTotal  *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	reloadsTotal    *prometheus.CounterVec
	generationGauge prometheus.Gauge
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// Pipeline decision label values.
const (
	DecisionForwarded       = "forwarded"
	DecisionUnauthenticated = "unauthenticated"
	DecisionForbidden       = "forbidden"
	DecisionNoRoute         = "no_route"
	DecisionPreflight       = "preflight"
)

// ReloadSucceeded records a successful configuration reload.
func (m *Metrics) ReloadSucceeded() {
	m.reloadsTotal.WithLabelValues("success").Inc()
}

// ReloadFailed records a rejected configuration reload.
func (m *Metrics) ReloadFailed() {
	m.reloadsTotal.WithLabelValues("failure").Inc()
}

// GetMetrics returns the singleton gateway metrics instance.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			decisionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "authgate",
					Subsystem: "gateway",
					Name:      "decisions_total",
					Help:      "Total number of pipeline decisions by route and outcome",
				},
				[]string{"route", "decision"},
			),
			upstreamLatency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "authgate",
					Subsystem: "gateway",
					Name:      "upstream_latency_seconds",
					Help:      "Upstream dispatch latency in seconds by cluster",
					Buckets:   prometheus.DefBuckets,
				},
				[]string{"cluster"},
			),
			reloadsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "authgate",
					Subsystem: "gateway",
					Name:      "config_reloads_total",
					Help:      "Total number of configuration reloads by result",
				},
				[]string{"result"},
			),
			generationGauge: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "authgate",
					Subsystem: "gateway",
					Name:      "config_generation",
					Help:      "Route table generation currently serving traffic",
				},
			),
		}
	})
	return metrics
}
