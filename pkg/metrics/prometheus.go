package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	ToursWritten    *prometheus.CounterVec
	BookingsCreated prometheus.Counter
	BookingTriage   *prometheus.CounterVec
	GuestsResolved  *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
	ErrorsCount     *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers the metrics on reg. A nil reg uses a private registry,
// which keeps repeated construction in tests from colliding.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status",
		}, []string{"route", "method", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken to serve HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		ToursWritten: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tour_writes_total",
			Help:      "Tour package cascade writes by operation",
		}, []string{"operation"}),
		BookingsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "The total number of booking requests received",
		}),
		BookingTriage: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_status_changes_total",
			Help:      "Booking status transitions by target status",
		}, []string{"status"}),
		GuestsResolved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guest_resolutions_total",
			Help:      "Guest user resolutions by outcome",
		}, []string{"outcome"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Tour listing cache lookups by result",
		}, []string{"result"}),
		ErrorsCount: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
		gatherer: reg,
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
