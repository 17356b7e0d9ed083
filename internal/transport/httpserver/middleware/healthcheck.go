// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
)

const readinessTimeout = 2 * time.Second

// ReadinessProbe reports whether a dependency can serve traffic.
type ReadinessProbe func(ctx context.Context) error

// NewHealthCheck serves GET /livez and GET /readyz. Readiness requires every
// probe to pass. Register it before the other middleware so probes answer
// under load.
func NewHealthCheck(probes ...ReadinessProbe) fiber.Handler {
	return healthcheck.New(healthcheck.Config{
		LivenessEndpoint: "/livez",
		LivenessProbe: func(_ *fiber.Ctx) bool {
			return true
		},

		ReadinessEndpoint: "/readyz",
		ReadinessProbe: func(c *fiber.Ctx) bool {
			ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
			defer cancel()

			for _, probe := range probes {
				if err := probe(ctx); err != nil {
					return false
				}
			}
			return true
		},
	})
}
