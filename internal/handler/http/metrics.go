package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crljhnmngs/portfolio-admin/internal/handler/http/pathutil"
	"github.com/crljhnmngs/portfolio-admin/internal/handler/http/responsewriter"
)

var requestLabels = []string{"method", "path", "status"}

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served, by normalized path and status",
	}, requestLabels)

	// 5ms to 10s covers cached reads as well as login, which hashes.
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, requestLabels)

	httpRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "HTTP requests currently being served",
	})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_size_bytes",
		Help:    "HTTP response body size",
		Buckets: prometheus.ExponentialBuckets(64, 4, 8),
	}, []string{"method", "path"})
)

// MetricsMiddleware counts and times every request. Paths are normalized
// (/api/skills/:id) so IDs do not become label values.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		rw := responsewriter.Wrap(w)
		defer func() {
			httpRequestsInFlight.Dec()
			path := pathutil.NormalizePath(r.URL.Path)
			status := strconv.Itoa(rw.StatusCode())
			httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
			httpResponseSize.WithLabelValues(r.Method, path).Observe(float64(rw.BytesWritten()))
		}()

		next.ServeHTTP(rw, r)
	})
}

// MetricsHandler serves the default Prometheus registry, which also carries
// the auth, rate limit and database metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
