package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the gateway's collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	checkouts    *prometheus.CounterVec
	cartSessions prometheus.Gauge
	cartUpdates  prometheus.Counter
	feedCache    *prometheus.CounterVec
}

// New registers the gateway metrics on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served, by method, route and status.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_total",
		Help: "Checkout attempts by result.",
	}, []string{"result"})
	cartSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cart_sessions",
		Help: "Open cart sessions.",
	})
	cartUpdates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_updates_total",
		Help: "Cart mutations across all sessions.",
	})
	feedCache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "external_feed_cache_total",
		Help: "External feed cache lookups by result.",
	}, []string{"result"})
	reg.MustRegister(requests, duration, checkouts, cartSessions, cartUpdates, feedCache)
	return &Metrics{
		requests:     requests,
		duration:     duration,
		checkouts:    checkouts,
		cartSessions: cartSessions,
		cartUpdates:  cartUpdates,
		feedCache:    feedCache,
	}
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	route = normalizeLabel(route)
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// IncCheckout counts a checkout attempt; result is "success", "rejected" or "failed".
func (m *Metrics) IncCheckout(result string) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(result)).Inc()
}

// SetCartSessions reports the number of open cart sessions.
func (m *Metrics) SetCartSessions(n int) {
	if m == nil || m.cartSessions == nil {
		return
	}
	m.cartSessions.Set(float64(n))
}

// IncCartUpdate counts one cart mutation.
func (m *Metrics) IncCartUpdate() {
	if m == nil || m.cartUpdates == nil {
		return
	}
	m.cartUpdates.Inc()
}

// IncFeedCache counts an external feed cache lookup.
func (m *Metrics) IncFeedCache(hit bool) {
	if m == nil || m.feedCache == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.feedCache.WithLabelValues(result).Inc()
}

// Middleware records every request handled by the app. Routes are labelled
// by their pattern so path parameters do not explode cardinality.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		m.ObserveRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
