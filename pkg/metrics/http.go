package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request-level metadata for the API surface.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// NewHTTPMetrics registers the request metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests served.",
	}, []string{"method", "route", "status"})
	reg.MustRegister(duration, requests)
	return &HTTPMetrics{
		duration: duration,
		requests: requests,
	}
}

// Observe records one completed request.
func (h *HTTPMetrics) Observe(method, route, status string, elapsed time.Duration) {
	if h == nil || h.duration == nil {
		return
	}
	method = normalizeLabel(method)
	route = normalizeLabel(route)
	status = normalizeLabel(status)
	h.duration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
	h.requests.WithLabelValues(method, route, status).Inc()
}

// CheckoutMetrics tracks quotation and order outcomes.
type CheckoutMetrics struct {
	quotations *prometheus.CounterVec
	orders     *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	quotations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quotations_total",
		Help: "Quotations transitioned, labeled by resulting status.",
	}, []string{"status"})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rental_orders_total",
		Help: "Rental orders created from confirmed quotations.",
	}, []string{"fulfillment"})
	reg.MustRegister(quotations, orders)
	return &CheckoutMetrics{
		quotations: quotations,
		orders:     orders,
	}
}

// IncQuotation increments the quotation counter for the given status.
func (c *CheckoutMetrics) IncQuotation(status string) {
	if c == nil || c.quotations == nil {
		return
	}
	c.quotations.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncOrder increments the order counter for the given fulfillment type.
func (c *CheckoutMetrics) IncOrder(fulfillment string) {
	if c == nil || c.orders == nil {
		return
	}
	c.orders.WithLabelValues(normalizeLabel(fulfillment)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
