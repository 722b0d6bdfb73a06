package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics holds Prometheus metrics for the HTTP server surface.
type HTTPMetrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
	panicsRecovered  prometheus.Counter
}

var (
	httpMetrics     *HTTPMetrics
	httpMetricsOnce sync.Once
)

// GetHTTPMetrics returns the singleton HTTP metrics instance.
func GetHTTPMetrics() *HTTPMetrics {
	httpMetricsOnce.Do(func() {
		httpMetrics = &HTTPMetrics{
			requestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "authgate",
					Subsystem: "http",
					Name:      "requests_total",
					Help:      "Total number of HTTP requests by method and status",
				},
				[]string{"method", "status"},
			),
			requestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "authgate",
					Subsystem: "http",
					Name:      "request_duration_seconds",
					Help:      "HTTP request latency in seconds",
					Buckets:   prometheus.DefBuckets,
				},
				[]string{"method"},
			),
			requestsInFlight: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "authgate",
					Subsystem: "http",
					Name:      "requests_in_flight",
					Help:      "Number of HTTP requests currently being served",
				},
			),
			panicsRecovered: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "authgate",
					Subsystem: "http",
					Name:      "panics_recovered_total",
					Help:      "Total number of panics recovered by middleware",
				},
			),
		}
	})
	return httpMetrics
}

// Metrics returns a middleware that records request counts, latency and
// in-flight gauge.
func Metrics() func(http.Handler) http.Handler {
	m := GetHTTPMetrics()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.requestsInFlight.Inc()
			defer m.requestsInFlight.Dec()

			rw := &responseWriter{
				ResponseWriter: w,
				status:         http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			m.requestsTotal.WithLabelValues(r.Method, strconv.Itoa(rw.status)).Inc()
			m.requestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
		})
	}
}
