// Package metrics exposes the application's Prometheus instruments.
//
// Instruments are registered once on the default registry when the package
// is loaded; callers use the Observe/Record helpers rather than touching the
// vectors directly.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "visitdesk"

var (
	// Backend API calls made through the gateway.
	GatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Total number of backend API calls by resource, operation and outcome",
		},
		[]string{"resource", "op", "outcome"},
	)

	GatewayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "Duration of backend API calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"resource", "op"},
	)

	// Inbound HTTP requests served by this app.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Per-session application state held in memory.
	StateSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "state_sessions",
		Help:      "Number of live per-session state containers",
	})

	// Debounced list fetches that actually fired.
	DebouncedFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "debounced_fetches_total",
			Help:      "Total number of debounced search fetches that fired",
		},
		[]string{"resource"},
	)

	// OTP requests rejected by the rate limiter.
	OTPRateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_rate_limited_total",
		Help:      "Total number of OTP requests rejected by rate limiting",
	})
)

// ObserveGateway records one backend call.
func ObserveGateway(resource, op, outcome string, d time.Duration) {
	GatewayRequests.With(prometheus.Labels{
		"resource": resource,
		"op":       op,
		"outcome":  outcome,
	}).Inc()
	GatewayDuration.With(prometheus.Labels{
		"resource": resource,
		"op":       op,
	}).Observe(d.Seconds())
}

// Middleware tracks request durations labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RequestDuration.With(prometheus.Labels{
			"method": r.Method,
			"route":  route,
			"status": strconv.Itoa(status),
		}).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
