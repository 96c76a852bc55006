package metrics_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"capristore/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	families := make(map[string]*dto.MetricFamily, len(mfs))
	for _, mf := range mfs {
		families[mf.GetName()] = mf
	}
	return families
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200, time.Millisecond)
		m.IncCheckout("success")
		m.SetCartSessions(3)
		m.IncCartUpdate()
		m.IncFeedCache(true)
	})

	empty := metrics.New(nil)
	assert.NotPanics(t, func() { empty.IncCheckout("failed") })
}

func TestMetrics_MiddlewareCountsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/products/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for _, path := range []string{"/products/1", "/products/2"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	families := gather(t, reg)
	require.Contains(t, families, "http_requests_total")
	samples := families["http_requests_total"].GetMetric()
	require.Len(t, samples, 1)
	assert.Equal(t, 2.0, samples[0].GetCounter().GetValue())
}

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.IncCheckout("success")
	m.IncCheckout("success")
	m.IncFeedCache(false)
	m.SetCartSessions(4)
	m.IncCartUpdate()

	families := gather(t, reg)
	assert.Equal(t, 2.0, families["checkouts_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 1.0, families["external_feed_cache_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 1.0, families["cart_updates_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 4.0, families["cart_sessions"].GetMetric()[0].GetGauge().GetValue())
}
