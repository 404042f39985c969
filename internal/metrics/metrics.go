// Package metrics exposes Prometheus collectors for HTTP traffic and the sales pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	activeRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Number of in-flight HTTP requests",
		},
	)

	leadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "winsales_leads_total",
			Help: "Lead mutations by operation",
		},
		[]string{"operation"},
	)

	salesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "winsales_sales_created_total",
			Help: "Sales registered by advisors",
		},
	)

	salesReviewed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "winsales_sales_reviewed_total",
			Help: "Backoffice reviews by resulting request status",
		},
		[]string{"request_status"},
	)

	actionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "winsales_action_errors_total",
			Help: "Mutations that failed with an unclassified error",
		},
		[]string{"action"},
	)

	notifyErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "winsales_notify_errors_total",
			Help: "Failed outbound notifications by channel",
		},
		[]string{"channel"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware labels requests by chi route pattern so ids do not explode cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeRequests.Inc()
		defer activeRequests.Dec()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func RecordLead(operation string) {
	leadsTotal.WithLabelValues(operation).Inc()
}

func RecordSaleCreated() {
	salesCreated.Inc()
}

func RecordSaleReviewed(requestStatus string) {
	salesReviewed.WithLabelValues(requestStatus).Inc()
}

func RecordActionError(action string) {
	actionErrors.WithLabelValues(action).Inc()
}

func RecordNotifyError(channel string) {
	notifyErrors.WithLabelValues(channel).Inc()
}
