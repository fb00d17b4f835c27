package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// PlaceLoader reloads the place directory.
type PlaceLoader interface {
	Load(ctx context.Context) error
}

// Sweeper drops idle simulations.
type Sweeper interface {
	Sweep(maxIdle time.Duration) int
}

// Config holds the cron specs. An empty spec disables that job.
type Config struct {
	PlaceRefresh   string
	SimulationGC   string
	SimulationIdle time.Duration
}

// Runner owns the background maintenance jobs of the API process.
type Runner struct {
	cron   *cron.Cron
	places PlaceLoader
	sims   Sweeper
	cfg    Config
}

// New creates a runner. Jobs are registered by Start.
func New(places PlaceLoader, sims Sweeper, cfg Config) *Runner {
	return &Runner{
		cron:   cron.New(),
		places: places,
		sims:   sims,
		cfg:    cfg,
	}
}

// Start registers the configured jobs and starts the scheduler.
func (r *Runner) Start() error {
	if r.cfg.PlaceRefresh != "" {
		if _, err := r.cron.AddFunc(r.cfg.PlaceRefresh, r.RefreshPlaces); err != nil {
			return fmt.Errorf("schedule place refresh %q: %w", r.cfg.PlaceRefresh, err)
		}
	}
	if r.cfg.SimulationGC != "" {
		if _, err := r.cron.AddFunc(r.cfg.SimulationGC, r.SweepSimulations); err != nil {
			return fmt.Errorf("schedule simulation sweep %q: %w", r.cfg.SimulationGC, err)
		}
	}

	r.cron.Start()
	slog.Info("maintenance jobs started", "jobs", len(r.cron.Entries()))
	return nil
}

// Stop halts the scheduler and waits for a running job to return.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
}

// RefreshPlaces picks up places added to the database since startup.
func (r *Runner) RefreshPlaces() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := r.places.Load(ctx); err != nil {
		slog.Warn("place refresh failed", "error", err)
	}
}

// SweepSimulations removes simulations idle for longer than SimulationIdle.
func (r *Runner) SweepSimulations() {
	r.sims.Sweep(r.cfg.SimulationIdle)
}
