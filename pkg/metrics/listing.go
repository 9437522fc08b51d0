package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ListingMetrics records listing traffic and request metadata.
type ListingMetrics struct {
	views     *prometheus.CounterVec
	inquiries *prometheus.CounterVec
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewListingMetrics registers the listing metrics on the provided registerer.
func NewListingMetrics(reg prometheus.Registerer) *ListingMetrics {
	if reg == nil {
		return &ListingMetrics{}
	}
	views := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "listing_views_total",
		Help: "Recorded listing detail views.",
	}, []string{"property_type"})
	inquiries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "listing_inquiries_total",
		Help: "Recorded listing inquiries.",
	}, []string{"property_type"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route and status class.",
	}, []string{"route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	reg.MustRegister(views, inquiries, requests, duration)
	return &ListingMetrics{
		views:     views,
		inquiries: inquiries,
		requests:  requests,
		duration:  duration,
	}
}

// IncView increments the view counter for the given property type.
func (m *ListingMetrics) IncView(propertyType string) {
	if m == nil || m.views == nil {
		return
	}
	m.views.WithLabelValues(normalizeLabel(propertyType)).Inc()
}

// IncInquiry increments the inquiry counter for the given property type.
func (m *ListingMetrics) IncInquiry(propertyType string) {
	if m == nil || m.inquiries == nil {
		return
	}
	m.inquiries.WithLabelValues(normalizeLabel(propertyType)).Inc()
}

// ObserveRequest records an HTTP request outcome for the named route.
func (m *ListingMetrics) ObserveRequest(route, status string, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(normalizeLabel(route), normalizeLabel(status)).Inc()
	m.duration.WithLabelValues(normalizeLabel(route)).Observe(elapsed.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
