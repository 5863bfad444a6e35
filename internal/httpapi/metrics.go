package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hikepredict",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hikepredict",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	httpInflight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "hikepredict",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "In-flight HTTP requests",
		},
		[]string{"method"},
	)

	uploadBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hikepredict",
			Subsystem: "http",
			Name:      "upload_bytes",
			Help:      "Size of uploaded route files",
			Buckets:   prometheus.ExponentialBuckets(1<<10, 4, 8),
		},
		[]string{"endpoint"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, httpInflight, uploadBytes)
}

// MetricsMiddleware instruments requests for Prometheus. Mounted inside a chi
// router it labels by route pattern.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInflight.WithLabelValues(r.Method).Inc()
		defer httpInflight.WithLabelValues(r.Method).Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		// The pattern is only complete once routing has finished.
		path := routePatternOrPath(r)
		code := strconv.Itoa(status)
		httpRequestsTotal.WithLabelValues(path, r.Method, code).Inc()
		httpRequestDuration.WithLabelValues(path, r.Method, code).Observe(time.Since(start).Seconds())
	})
}

// routePatternOrPath returns the chi route pattern if available, otherwise
// falls back to URL path. This avoids high-cardinality label values.
func routePatternOrPath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// NewMetricsMux serves /metrics and /healthz for processes that have no API of
// their own, such as the CLI with --metrics-addr.
func NewMetricsMux() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", healthz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	return r
}
