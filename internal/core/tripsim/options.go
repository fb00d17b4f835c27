package tripsim

import (
	"time"

	"github.com/viajaperu/tripsim/internal/core/domain"
)

// Defaults for a simulated trip.
const (
	DefaultDuration        = 15 * time.Second
	DefaultMotionInterval  = 30 * time.Millisecond
	DefaultSpinnerInterval = 50 * time.Millisecond
	DefaultSpinnerStep     = 12.0 // degrees per spinner tick
	DefaultAverageSpeedKmh = 55.0
	DefaultSegments        = 150
)

// HomeCity is where unresolved place names land (Trujillo).
var HomeCity = domain.GeoPoint{Lat: -8.1116, Lon: -79.0288}

// Options tunes a Simulator. Zero fields take the package defaults.
type Options struct {
	Duration        time.Duration
	MotionInterval  time.Duration
	SpinnerInterval time.Duration
	SpinnerStep     float64
	AverageSpeedKmh float64
	Segments        int
	Fallback        *domain.GeoPoint

	Clock     Clock
	Scheduler Scheduler
}

// DefaultOptions returns the reference timing: a 15 s run ticking every 30 ms.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.Duration <= 0 {
		o.Duration = DefaultDuration
	}
	if o.MotionInterval <= 0 {
		o.MotionInterval = DefaultMotionInterval
	}
	if o.SpinnerInterval <= 0 {
		o.SpinnerInterval = DefaultSpinnerInterval
	}
	if o.SpinnerStep == 0 {
		o.SpinnerStep = DefaultSpinnerStep
	}
	if o.AverageSpeedKmh <= 0 {
		o.AverageSpeedKmh = DefaultAverageSpeedKmh
	}
	if o.Segments <= 0 {
		o.Segments = DefaultSegments
	}
	if o.Fallback == nil {
		home := HomeCity
		o.Fallback = &home
	}
	if o.Clock == nil {
		o.Clock = SystemClock{}
	}
	if o.Scheduler == nil {
		o.Scheduler = TickerScheduler{}
	}
	return o
}
