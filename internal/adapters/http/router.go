package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/viajaperu/tripsim/internal/pkg/metrics"
)

const requestTimeout = 10 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 300 requests per minute per IP. Polling clients hit
	// GET /v1/simulations/:id a few times per second while a run is live.
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/metrics" || c.Path() == "/ws"
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness, no timeout
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	// Places
	v1.Get("/places", ListPlacesHandler(deps))
	v1.Get("/places/nearby", NearbyPlacesHandler(deps))
	v1.Get("/places/:name", GetPlaceHandler(deps))
	v1.Put("/places/:name", timeout.NewWithContext(UpsertPlaceHandler(deps), requestTimeout))

	// Simulations
	v1.Post("/simulations", timeout.NewWithContext(CreateSimulationHandler(deps), requestTimeout))
	v1.Get("/simulations", ListSimulationsHandler(deps))
	v1.Get("/simulations/:id", GetSimulationHandler(deps))
	v1.Get("/simulations/:id/route", SimulationRouteHandler(deps))
	v1.Get("/simulations/:id/annotations", SimulationAnnotationsHandler(deps))
	v1.Post("/simulations/:id/start", StartSimulationHandler(deps))
	v1.Post("/simulations/:id/reset", ResetSimulationHandler(deps))
	v1.Post("/simulations/:id/camera/:op", CameraHandler(deps))
	v1.Delete("/simulations/:id", DeleteSimulationHandler(deps))

	// Bookings
	v1.Get("/bookings/:id/runs", timeout.NewWithContext(BookingRunsHandler(deps), requestTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps)))
}
