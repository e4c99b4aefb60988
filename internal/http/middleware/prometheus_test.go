package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMiddleware(t *testing.T) {
	// Use a fresh registry for each test to avoid "duplicate registration" panic
	reg := prometheus.NewRegistry()
	promMiddleware, err := NewPrometheusMiddleware(reg)
	if err != nil {
		t.Fatalf("failed to create middleware: %v", err)
	}

	app := fiber.New()
	app.Use(promMiddleware.Handler())

	app.Post("/files/sign", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	app.Get("/error", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "bad request")
	})

	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	// Normal request increments the counter with the route pattern label.
	req := httptest.NewRequest("POST", "/files/sign", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	count := testutil.ToFloat64(promMiddleware.requestCount.WithLabelValues("POST", "/files/sign", "200"))
	if count != 1 {
		t.Errorf("expected count 1, got %f", count)
	}

	// Handler errors are labeled with the error status.
	reqErr := httptest.NewRequest("GET", "/error", nil)
	app.Test(reqErr)

	countErr := testutil.ToFloat64(promMiddleware.requestCount.WithLabelValues("GET", "/error", "400"))
	if countErr != 1 {
		t.Errorf("expected count 1 for error route, got %f", countErr)
	}

	// /metrics itself is not counted.
	reqMetrics := httptest.NewRequest("GET", "/metrics", nil)
	app.Test(reqMetrics)

	countMetrics := testutil.ToFloat64(promMiddleware.requestCount.WithLabelValues("GET", "/metrics", "200"))
	if countMetrics != 0 {
		t.Errorf("expected /metrics to be excluded, got %f", countMetrics)
	}

	// Histogram collected at least one observation.
	histCount := testutil.CollectAndCount(promMiddleware.requestDuration)
	if histCount == 0 {
		t.Error("expected histogram metrics to be collected, got 0")
	}
}
