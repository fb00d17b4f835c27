// Package tripsim animates a vehicle along a decorative route between two
// places over a fixed wall-clock budget, and frames the map camera around it.
//
// A Simulator is a small state machine: at rest -> running -> completed, with
// Reset returning to rest from any state. Motion is driven by a Scheduler and
// measured against a Clock so that tests can step time by hand.
package tripsim

import (
	"math"
	"sync"
	"time"

	"github.com/viajaperu/tripsim/internal/core/domain"
	"github.com/viajaperu/tripsim/internal/pkg/geospatial"
)

// Directory resolves place names to coordinates.
type Directory interface {
	Resolve(name string) (domain.GeoPoint, bool)
}

// Endpoint roles.
const (
	RoleOrigin      = "origin"
	RoleDestination = "destination"
)

// Fallback records an endpoint whose name was not in the directory.
type Fallback struct {
	Role string
	Name string
}

// EventKind classifies simulator notifications.
type EventKind string

const (
	EventStarted   EventKind = "started"
	EventTick      EventKind = "tick"
	EventCompleted EventKind = "completed"
	EventReset     EventKind = "reset"
)

// Event carries the snapshot taken when the state changed.
type Event struct {
	Kind     EventKind
	Snapshot domain.SimulationSnapshot
}

// Listener receives events after the simulator lock is released.
type Listener func(Event)

// Simulator owns the lifecycle of one simulated trip.
type Simulator struct {
	opts Options

	origin      string
	destination string
	originPt    domain.GeoPoint
	destPt      domain.GeoPoint
	unresolved  []Fallback
	route       domain.GeoLineString
	totalKm     float64
	estMinutes  int

	mu                  sync.Mutex
	progress            float64
	vehicle             domain.GeoPoint
	running             bool
	completed           bool
	startedAt           *time.Time
	spinner             float64
	viewport            domain.ViewportRegion
	distanceRemainingKm float64
	motion              Timer
	spin                Timer
	generation          uint64
	listener            Listener
}

// New resolves both place names, builds the route and leaves the simulator at rest.
// Unknown names fall back to opts.Fallback (Trujillo by default).
func New(origin, destination string, dir Directory, opts Options) *Simulator {
	opts = opts.withDefaults()

	s := &Simulator{
		opts:        opts,
		origin:      origin,
		destination: destination,
	}
	s.originPt = s.resolve(dir, origin, RoleOrigin)
	s.destPt = s.resolve(dir, destination, RoleDestination)

	s.totalKm = distanceKm(s.originPt, s.destPt)
	s.estMinutes = EstimateMinutes(s.totalKm, opts.AverageSpeedKmh)
	s.route = GenerateRoute(s.originPt, s.destPt, opts.Segments)

	s.restLocked()
	return s
}

func (s *Simulator) resolve(dir Directory, name, role string) domain.GeoPoint {
	if dir != nil {
		if p, ok := dir.Resolve(name); ok {
			return p
		}
	}
	s.unresolved = append(s.unresolved, Fallback{Role: role, Name: name})
	return *s.opts.Fallback
}

// restLocked puts every derived field back to its construction value.
func (s *Simulator) restLocked() {
	s.progress = 0
	s.running = false
	s.completed = false
	s.startedAt = nil
	s.spinner = 0
	s.vehicle = s.route.First()
	s.distanceRemainingKm = distanceKm(s.vehicle, s.route.Last())
	s.viewport = OverviewRegion(s.originPt, s.destPt)
}

// OnUpdate registers the listener for state changes. Spinner ticks are not reported.
func (s *Simulator) OnUpdate(l Listener) {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
}

// Start begins the run. It returns false when there is nothing to do: an empty
// route, a run already in progress, or a finished run that has not been reset.
func (s *Simulator) Start() bool {
	s.mu.Lock()
	if s.route.Len() == 0 || s.running || s.completed {
		s.mu.Unlock()
		return false
	}

	now := s.opts.Clock.Now()
	s.startedAt = &now
	s.running = true
	s.generation++
	gen := s.generation
	s.motion = s.opts.Scheduler.Every(s.opts.MotionInterval, func() { s.tick(gen) })
	s.spin = s.opts.Scheduler.Every(s.opts.SpinnerInterval, func() { s.spinTick(gen) })

	ev := Event{Kind: EventStarted, Snapshot: s.snapshotLocked()}
	l := s.listener
	s.mu.Unlock()

	notify(l, ev)
	return true
}

// Reset stops any run and restores the construction state.
func (s *Simulator) Reset() {
	s.mu.Lock()
	s.stopTimersLocked()
	s.generation++
	s.restLocked()
	ev := Event{Kind: EventReset, Snapshot: s.snapshotLocked()}
	l := s.listener
	s.mu.Unlock()

	notify(l, ev)
}

// Stop cancels timers without touching progress. Used when a simulation is discarded.
func (s *Simulator) Stop() {
	s.mu.Lock()
	s.stopTimersLocked()
	s.generation++
	s.running = false
	s.mu.Unlock()
}

func (s *Simulator) tick(gen uint64) {
	s.mu.Lock()
	if gen != s.generation || !s.running || s.startedAt == nil {
		s.mu.Unlock()
		return
	}

	elapsed := s.opts.Clock.Now().Sub(*s.startedAt)
	progress := math.Min(float64(elapsed)/float64(s.opts.Duration), 1)
	if progress < s.progress {
		// clocks can step backwards; progress cannot
		progress = s.progress
	}
	s.progress = progress
	s.vehicle = s.route.Coordinates[indexAt(progress, s.route.Len())]
	s.distanceRemainingKm = distanceKm(s.vehicle, s.route.Last())

	events := []Event{{Kind: EventTick, Snapshot: s.snapshotLocked()}}
	if progress >= 1 {
		s.stopTimersLocked()
		s.progress = 1
		s.running = false
		s.completed = true
		events = append(events, Event{Kind: EventCompleted, Snapshot: s.snapshotLocked()})
	}
	l := s.listener
	s.mu.Unlock()

	for _, ev := range events {
		notify(l, ev)
	}
}

func (s *Simulator) spinTick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || !s.running {
		return
	}
	s.spinner = math.Mod(s.spinner+s.opts.SpinnerStep, 360)
}

func (s *Simulator) stopTimersLocked() {
	if s.motion != nil {
		s.motion.Stop()
		s.motion = nil
	}
	if s.spin != nil {
		s.spin.Stop()
		s.spin = nil
	}
}

// Camera applies a viewport operation and returns the new region.
func (s *Simulator) Camera(op CameraOp) domain.ViewportRegion {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch op {
	case CameraOverview:
		s.viewport = OverviewRegion(s.originPt, s.destPt)
	case CameraFollow:
		s.viewport = FollowRegion(s.vehicle)
	case CameraZoomIn:
		s.viewport = ZoomIn(s.viewport)
	case CameraZoomOut:
		s.viewport = ZoomOut(s.viewport)
	}
	return s.viewport
}

// Snapshot returns the current observable state.
func (s *Simulator) Snapshot() domain.SimulationSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Simulator) snapshotLocked() domain.SimulationSnapshot {
	snap := domain.SimulationSnapshot{
		Origin:            s.origin,
		Destination:       s.destination,
		Progress:          s.progress,
		Vehicle:           s.vehicle,
		Running:           s.running,
		Completed:         s.completed,
		TotalDistance:     FormatDistance(s.totalKm),
		TotalDistanceKm:   s.totalKm,
		EstimatedDuration: FormatDuration(s.estMinutes),
		DistanceRemaining: FormatDistance(s.distanceRemainingKm),
		ETA:               formatETA(s.progress, s.estMinutes, s.completed),
		TimeRemaining:     formatTimeRemaining(s.progress, s.opts.Duration),
		SpinnerAngle:      s.spinner,
		Viewport:          s.viewport,
	}
	if s.startedAt != nil {
		t := *s.startedAt
		snap.StartedAt = &t
	}
	return snap
}

// Route returns a copy of the generated polyline.
func (s *Simulator) Route() domain.GeoLineString {
	pts := make([]domain.GeoPoint, len(s.route.Coordinates))
	copy(pts, s.route.Coordinates)
	return domain.GeoLineString{Coordinates: pts}
}

// Annotations returns the origin, destination and live vehicle markers.
func (s *Simulator) Annotations() []domain.Annotation {
	s.mu.Lock()
	vehicle := s.vehicle
	s.mu.Unlock()

	return []domain.Annotation{
		{Kind: "origin", Title: s.origin, Location: s.originPt},
		{Kind: "destination", Title: s.destination, Location: s.destPt},
		{Kind: "vehicle", Title: "Bus", Location: vehicle},
	}
}

// Endpoints returns the resolved origin and destination.
func (s *Simulator) Endpoints() (origin, destination domain.GeoPoint) {
	return s.originPt, s.destPt
}

// Unresolved lists the endpoints that fell back to the default point, origin first.
func (s *Simulator) Unresolved() []Fallback {
	out := make([]Fallback, len(s.unresolved))
	copy(out, s.unresolved)
	return out
}

// Duration is the wall-clock length of a full run.
func (s *Simulator) Duration() time.Duration { return s.opts.Duration }

func distanceKm(a, b domain.GeoPoint) float64 {
	return geospatial.HaversineKm(a.Lat, a.Lon, b.Lat, b.Lon)
}

func notify(l Listener, ev Event) {
	if l != nil {
		l(ev)
	}
}
