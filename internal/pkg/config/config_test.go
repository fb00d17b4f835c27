package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/viajaperu/tripsim/internal/core/tripsim"
	"github.com/viajaperu/tripsim/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("tripsim-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Telemetry.ServiceName != "tripsim-test" {
		t.Errorf("expected service name tripsim-test, got %s", cfg.Telemetry.ServiceName)
	}

	opts := cfg.Simulation.Options()
	if opts.Duration != 15*time.Second {
		t.Errorf("expected 15s duration, got %v", opts.Duration)
	}
	if opts.MotionInterval != 30*time.Millisecond {
		t.Errorf("expected 30ms motion tick, got %v", opts.MotionInterval)
	}
	if opts.Segments != 150 {
		t.Errorf("expected 150 segments, got %d", opts.Segments)
	}
	if *opts.Fallback != tripsim.HomeCity {
		t.Errorf("expected fallback at home city, got %v", *opts.Fallback)
	}
	if cfg.Jobs.PlaceRefresh != "@every 10m" || cfg.Jobs.SimulationIdleMins != 60 {
		t.Errorf("unexpected jobs defaults %+v", cfg.Jobs)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TRIPSIM_SIMULATION_DURATION_SECONDS", "30")
	t.Setenv("TRIPSIM_DATABASE_HOST", "db.internal")

	cfg, err := config.Load("tripsim-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("expected db.internal, got %s", cfg.Database.Host)
	}
	if d := cfg.Simulation.Options().Duration; d != 30*time.Second {
		t.Errorf("expected 30s, got %v", d)
	}
}

func TestValidate_Errors(t *testing.T) {
	cfg, err := config.Load("tripsim-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Server.Port = 0
	cfg.Simulation.RouteSegments = 0
	cfg.Simulation.DefaultLat = 120

	err = cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "route_segments", "default place"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err.Error())
		}
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := config.DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	if got := d.DSN(); got != "postgres://u:p@h:5432/n?sslmode=disable" {
		t.Errorf("unexpected DSN %s", got)
	}
}
