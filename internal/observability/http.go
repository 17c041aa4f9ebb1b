package observability

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler mounts the Prometheus scrape endpoint on a Fiber route.
// Registration happens here so the endpoint works even when no grading
// request has touched a counter yet.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	handler := adaptor.HTTPHandler(promhttp.Handler())
	return handler
}
