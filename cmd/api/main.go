package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/viajaperu/tripsim/internal/adapters/http"
	natsadapter "github.com/viajaperu/tripsim/internal/adapters/nats"
	"github.com/viajaperu/tripsim/internal/adapters/postgres"
	"github.com/viajaperu/tripsim/internal/adapters/valkey"
	"github.com/viajaperu/tripsim/internal/core/ports"
	"github.com/viajaperu/tripsim/internal/core/usecases"
	"github.com/viajaperu/tripsim/internal/jobs"
	"github.com/viajaperu/tripsim/internal/pkg/config"
	"github.com/viajaperu/tripsim/internal/pkg/logging"
	"github.com/viajaperu/tripsim/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("tripsim-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup("tripsim-api", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database. Without it the service runs on the built-in place table.
	var (
		placeRepo   ports.PlaceRepository
		bookingRepo ports.BookingRepository
		runRepo     ports.SimulationRunRepository
	)
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		slog.Warn("database unavailable, using built-in places", "error", err)
		db = nil
	} else {
		defer db.Close()
		go db.ReportPoolStats(ctx, 15*time.Second)
		placeRepo = postgres.NewPlaceRepo(db)
		bookingRepo = postgres.NewBookingRepo(db)
		runRepo = postgres.NewSimulationRunRepo(db)
	}

	// Cache
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// NATS
	var publisher ports.EventPublisher
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer nc.Close()
		publisher = nc
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	// Use cases
	placeSvc := usecases.NewPlaceService(placeRepo, cacheSvc)
	loadCtx, loadCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := placeSvc.Load(loadCtx); err != nil {
		slog.Warn("place directory load failed, using built-in places", "error", err)
	}
	loadCancel()
	slog.Info("place directory ready", "places", placeSvc.Directory().Len())

	simSvc := usecases.NewSimulationService(placeSvc, bookingRepo, runRepo, publisher, cfg.Simulation.Options())
	defer simSvc.Close()

	// Background maintenance
	jobsCfg := jobs.Config{
		SimulationGC:   cfg.Jobs.SimulationGC,
		SimulationIdle: time.Duration(cfg.Jobs.SimulationIdleMins) * time.Minute,
	}
	if db != nil {
		jobsCfg.PlaceRefresh = cfg.Jobs.PlaceRefresh
	}
	runner := jobs.New(placeSvc, simSvc, jobsCfg)
	if err := runner.Start(); err != nil {
		log.Fatalf("jobs: %v", err)
	}
	defer runner.Stop()

	deps := &http.Dependencies{
		Places:      placeSvc,
		Simulations: simSvc,
		NATS:        natsConn,
		DB:          db,
		Cache:       cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    256 * 1024,
		AppName:      "Trip Simulator API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.viajaperu.pe",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
