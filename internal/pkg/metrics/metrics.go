package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tripsim",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tripsim",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tripsim",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Simulation metrics
	SimulationsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tripsim",
		Subsystem: "simulation",
		Name:      "active",
		Help:      "Simulations currently running",
	})

	SimulationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tripsim",
		Subsystem: "simulation",
		Name:      "created_total",
		Help:      "Total simulations created",
	})

	SimulationsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tripsim",
		Subsystem: "simulation",
		Name:      "started_total",
		Help:      "Total simulation runs started",
	})

	SimulationsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tripsim",
		Subsystem: "simulation",
		Name:      "completed_total",
		Help:      "Total simulation runs that reached the destination",
	})

	SimulationResets = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tripsim",
		Subsystem: "simulation",
		Name:      "resets_total",
		Help:      "Total simulation resets",
	})

	SimulationTicks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tripsim",
		Subsystem: "simulation",
		Name:      "ticks_total",
		Help:      "Total motion ticks processed",
	})

	PlaceFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tripsim",
		Subsystem: "places",
		Name:      "fallbacks_total",
		Help:      "Place names that fell back to the default coordinate",
	}, []string{"role"})

	RatingPromptsScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tripsim",
		Subsystem: "rating",
		Name:      "prompts_scheduled_total",
		Help:      "Rating workflows started after a completed simulation",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tripsim",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tripsim",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tripsim",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tripsim",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tripsim",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tripsim",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// PoolStat is the subset of pgxpool.Stat the pool gauges read.
type PoolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
}

// UpdateDBPoolMetrics copies pool stats into the gauges.
func UpdateDBPoolMetrics(s PoolStat) {
	DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
	DBPoolConnsIdle.Set(float64(s.IdleConns()))
	DBPoolConnsOpen.Set(float64(s.TotalConns()))
}
