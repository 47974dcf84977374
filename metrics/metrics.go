// Package metrics exposes Prometheus instrumentation for the web server and
// the imagery/export layers.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "areamanager",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "areamanager",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Domain metrics
	AreaOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "areamanager",
		Subsystem: "aoi",
		Name:      "operations_total",
		Help:      "Total successful area storage mutations",
	}, []string{"operation"})

	PreviewsRequested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "areamanager",
		Subsystem: "sar",
		Name:      "previews_total",
		Help:      "Total SAR preview tile layers requested",
	})

	ExportsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "areamanager",
		Subsystem: "sar",
		Name:      "exports_started_total",
		Help:      "Total export operations started",
	}, []string{"destination"})

	PlatformErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "areamanager",
		Subsystem: "sar",
		Name:      "platform_errors_total",
		Help:      "Total failures returned by the geospatial platform API",
	})
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// Middleware records request metrics; mount it on the router with mux.Use
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if template, err := route.GetPathTemplate(); err == nil {
				path = template
			}
		}
		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// Handler returns the /metrics endpoint handler
func Handler() http.Handler {
	return promhttp.Handler()
}
