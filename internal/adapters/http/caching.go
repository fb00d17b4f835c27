package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		// Only set on GET requests
		if c.Method() != fiber.MethodGet {
			return err
		}

		// Don't override if already set
		if existing := string(c.Response().Header.Peek(fiber.HeaderCacheControl)); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		case strings.HasPrefix(path, "/v1/simulations"):
			// Snapshots move every tick.
			ttl = "no-store"

		case strings.HasPrefix(path, "/v1/bookings"):
			ttl = "private, max-age=30"

		case strings.HasPrefix(path, "/v1/places/nearby"):
			ttl = "public, max-age=300"

		case strings.HasPrefix(path, "/v1/places"):
			ttl = "public, max-age=600" // directory changes rarely

		case strings.HasPrefix(path, "/docs"):
			ttl = "public, max-age=3600"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=60"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
