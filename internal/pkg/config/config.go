package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/viajaperu/tripsim/internal/core/domain"
	"github.com/viajaperu/tripsim/internal/core/tripsim"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Valkey     ValkeyConfig     `mapstructure:"valkey"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Temporal   TemporalConfig   `mapstructure:"temporal"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Jobs       JobsConfig       `mapstructure:"jobs"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// JobsConfig holds cron specs for background maintenance. Empty disables a job.
type JobsConfig struct {
	PlaceRefresh       string `mapstructure:"place_refresh"`
	SimulationGC       string `mapstructure:"simulation_gc"`
	SimulationIdleMins int    `mapstructure:"simulation_idle_minutes"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SimulationConfig tunes every simulator the service creates.
type SimulationConfig struct {
	DurationSeconds   float64 `mapstructure:"duration_seconds"`
	MotionIntervalMs  int     `mapstructure:"motion_interval_ms"`
	SpinnerIntervalMs int     `mapstructure:"spinner_interval_ms"`
	AverageSpeedKmh   float64 `mapstructure:"average_speed_kmh"`
	RouteSegments     int     `mapstructure:"route_segments"`
	DefaultLat        float64 `mapstructure:"default_lat"`
	DefaultLon        float64 `mapstructure:"default_lon"`
}

// Options converts the settings into simulator options on the real clock.
func (s SimulationConfig) Options() tripsim.Options {
	fallback := s.DefaultPlace()
	return tripsim.Options{
		Duration:        time.Duration(s.DurationSeconds * float64(time.Second)),
		MotionInterval:  time.Duration(s.MotionIntervalMs) * time.Millisecond,
		SpinnerInterval: time.Duration(s.SpinnerIntervalMs) * time.Millisecond,
		AverageSpeedKmh: s.AverageSpeedKmh,
		Segments:        s.RouteSegments,
		Fallback:        &fallback,
	}
}

// DefaultPlace is where unknown place names resolve.
func (s SimulationConfig) DefaultPlace() domain.GeoPoint {
	return domain.GeoPoint{Lat: s.DefaultLat, Lon: s.DefaultLon}
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "tripsim")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "tripsim")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "trip-rating")
	v.SetDefault("jobs.place_refresh", "@every 10m")
	v.SetDefault("jobs.simulation_gc", "@every 5m")
	v.SetDefault("jobs.simulation_idle_minutes", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("simulation.duration_seconds", tripsim.DefaultDuration.Seconds())
	v.SetDefault("simulation.motion_interval_ms", tripsim.DefaultMotionInterval.Milliseconds())
	v.SetDefault("simulation.spinner_interval_ms", tripsim.DefaultSpinnerInterval.Milliseconds())
	v.SetDefault("simulation.average_speed_kmh", tripsim.DefaultAverageSpeedKmh)
	v.SetDefault("simulation.route_segments", tripsim.DefaultSegments)
	v.SetDefault("simulation.default_lat", tripsim.HomeCity.Lat)
	v.SetDefault("simulation.default_lon", tripsim.HomeCity.Lon)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: TRIPSIM_DATABASE_HOST → database.host
	v.SetEnvPrefix("TRIPSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required")
	}

	if c.Jobs.SimulationGC != "" && c.Jobs.SimulationIdleMins <= 0 {
		errs = append(errs, "jobs.simulation_idle_minutes must be positive when jobs.simulation_gc is set")
	}

	s := c.Simulation
	if s.DurationSeconds <= 0 {
		errs = append(errs, "simulation.duration_seconds must be positive")
	}
	if s.MotionIntervalMs <= 0 || s.SpinnerIntervalMs <= 0 {
		errs = append(errs, "simulation tick intervals must be positive")
	}
	if s.AverageSpeedKmh <= 0 {
		errs = append(errs, "simulation.average_speed_kmh must be positive")
	}
	if s.RouteSegments < 1 {
		errs = append(errs, fmt.Sprintf("simulation.route_segments must be at least 1, got %d", s.RouteSegments))
	}
	if s.DefaultLat < -90 || s.DefaultLat > 90 || s.DefaultLon < -180 || s.DefaultLon > 180 {
		errs = append(errs, "simulation default place is out of range")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
