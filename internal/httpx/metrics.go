package httpx

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricHTTPRequests        = "requests_total"
	MetricHTTPRequestDuration = "request_duration_seconds"
	MetricHTTPRateLimited     = "rate_limited_total"
)

var CounterHTTPRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "http",
		Name:      MetricHTTPRequests,
		Help:      "HTTP requests by route pattern, method and status.",
	},
	[]string{"route", "method", "status"},
)

var HistogramHTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "http",
		Name:      MetricHTTPRequestDuration,
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route", "method"},
)

var CounterRateLimited = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "http",
		Name:      MetricHTTPRateLimited,
		Help:      "Requests rejected by the rate limiter.",
	},
	[]string{"path"},
)

func init() {
	prometheus.MustRegister(CounterHTTPRequests)
	prometheus.MustRegister(HistogramHTTPRequestDuration)
	prometheus.MustRegister(CounterRateLimited)
}

// MetricsMiddleware must wrap the ServeMux directly so r.Pattern is populated
// once the mux has matched the request.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := wrap(w)

		next.ServeHTTP(rw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		CounterHTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(rw.statusCode)).Inc()
		HistogramHTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
