package tripsim_test

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/viajaperu/tripsim/internal/core/tripsim"
)

func TestNew_TrujilloOtuzco(t *testing.T) {
	sim, _, _ := newTestSimulator("Trujillo", "Otuzco")
	snap := sim.Snapshot()

	if snap.TotalDistance != "55.7 km" {
		t.Errorf("expected 55.7 km, got %s", snap.TotalDistance)
	}
	if snap.EstimatedDuration != "1h 1min" {
		t.Errorf("expected 1h 1min, got %s", snap.EstimatedDuration)
	}
	if snap.ETA != snap.EstimatedDuration {
		t.Errorf("expected initial ETA %s, got %s", snap.EstimatedDuration, snap.ETA)
	}
	if snap.TimeRemaining != "15 s" {
		t.Errorf("expected 15 s, got %s", snap.TimeRemaining)
	}
	if snap.Running || snap.Completed || snap.Progress != 0 || snap.StartedAt != nil {
		t.Errorf("expected simulator at rest, got %+v", snap)
	}
	if snap.Vehicle != sim.Route().First() {
		t.Errorf("expected vehicle on first route point, got %+v", snap.Vehicle)
	}
	if len(sim.Unresolved()) != 0 {
		t.Errorf("expected no fallbacks, got %v", sim.Unresolved())
	}
}

func TestNew_InitialViewport(t *testing.T) {
	sim, _, _ := newTestSimulator("Trujillo", "Otuzco")
	vp := sim.Snapshot().Viewport

	if math.Abs(vp.Center.Lat-(-8.0072)) > 1e-9 || math.Abs(vp.Center.Lon-(-78.7987)) > 1e-9 {
		t.Errorf("unexpected center %+v", vp.Center)
	}
	// |Δlat| * 3.2 = 0.668, |Δlon| * 3.2 = 1.473
	if math.Abs(vp.Span.LatDelta-0.2088*3.2) > 1e-9 {
		t.Errorf("unexpected lat span %f", vp.Span.LatDelta)
	}
	if math.Abs(vp.Span.LonDelta-0.4602*3.2) > 1e-9 {
		t.Errorf("unexpected lon span %f", vp.Span.LonDelta)
	}
}

func TestNew_UnresolvedFallsBack(t *testing.T) {
	sim, _, _ := newTestSimulator("Lima", "Atlantis")

	_, dest := sim.Endpoints()
	if dest != tripsim.HomeCity {
		t.Errorf("expected fallback to home city, got %+v", dest)
	}
	want := tripsim.Fallback{Role: tripsim.RoleDestination, Name: "Atlantis"}
	if got := sim.Unresolved(); len(got) != 1 || got[0] != want {
		t.Errorf("expected [%v], got %v", want, got)
	}

	snap := sim.Snapshot()
	// Lima -> Trujillo is roughly 485 km
	if snap.TotalDistanceKm < 480 || snap.TotalDistanceKm > 490 {
		t.Errorf("unexpected distance %f", snap.TotalDistanceKm)
	}
}

func TestNew_NilDirectory(t *testing.T) {
	sim := tripsim.New("A", "B", nil, tripsim.Options{Scheduler: &manualScheduler{}})
	if sim.Snapshot().TotalDistanceKm != 0 {
		t.Error("expected zero distance when both ends fall back")
	}
	if len(sim.Unresolved()) != 2 {
		t.Errorf("expected two fallbacks, got %v", sim.Unresolved())
	}
}

func TestNew_SameUnknownNameReportsBothRoles(t *testing.T) {
	sim, _, _ := newTestSimulator("Atlantis", "Atlantis")

	got := sim.Unresolved()
	want := []tripsim.Fallback{
		{Role: tripsim.RoleOrigin, Name: "Atlantis"},
		{Role: tripsim.RoleDestination, Name: "Atlantis"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fallback %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestStart_SchedulesTwoTimers(t *testing.T) {
	sim, _, sched := newTestSimulator("Trujillo", "Otuzco")
	if !sim.Start() {
		t.Fatal("expected start to succeed")
	}
	if sched.active() != 2 {
		t.Fatalf("expected 2 active timers, got %d", sched.active())
	}
	if sched.timers[0].interval != 30*time.Millisecond || sched.timers[1].interval != 50*time.Millisecond {
		t.Errorf("unexpected intervals %s / %s", sched.timers[0].interval, sched.timers[1].interval)
	}
	if sim.Start() {
		t.Error("second start while running should be a no-op")
	}
	if len(sched.timers) != 2 {
		t.Errorf("expected no new timers, got %d", len(sched.timers))
	}
}

func TestTick_HalfwayReachesMiddleOfRoute(t *testing.T) {
	sim, clock, sched := newTestSimulator("Trujillo", "Otuzco")
	sim.Start()

	clock.Advance(7500 * time.Millisecond)
	sched.fire()

	snap := sim.Snapshot()
	if snap.Progress != 0.5 {
		t.Errorf("expected progress 0.5, got %f", snap.Progress)
	}
	if snap.Vehicle != sim.Route().Coordinates[75] {
		t.Errorf("expected route[75], got %+v", snap.Vehicle)
	}
	if snap.TimeRemaining != "8 s" {
		t.Errorf("expected 8 s, got %s", snap.TimeRemaining)
	}
	if snap.ETA != "31 min" {
		t.Errorf("expected 31 min, got %s", snap.ETA)
	}
	if !snap.Running || snap.Completed {
		t.Errorf("expected running, got %+v", snap)
	}
}

func TestTick_ProgressMonotonicAndCompletesOnce(t *testing.T) {
	sim, clock, sched := newTestSimulator("Trujillo", "Otuzco")

	var mu sync.Mutex
	completions := 0
	sim.OnUpdate(func(ev tripsim.Event) {
		if ev.Kind == tripsim.EventCompleted {
			mu.Lock()
			completions++
			mu.Unlock()
		}
	})
	sim.Start()

	last := 0.0
	for i := 0; i < 700; i++ {
		clock.Advance(30 * time.Millisecond)
		sched.fire()
		p := sim.Snapshot().Progress
		if p < last {
			t.Fatalf("progress went backwards: %f -> %f", last, p)
		}
		if p > 1 {
			t.Fatalf("progress exceeded 1: %f", p)
		}
		last = p
	}

	snap := sim.Snapshot()
	if !snap.Completed || snap.Running || snap.Progress != 1 {
		t.Errorf("expected completed state, got %+v", snap)
	}
	if completions != 1 {
		t.Errorf("expected exactly one completion, got %d", completions)
	}
	if sched.active() != 0 {
		t.Errorf("expected timers stopped, %d still active", sched.active())
	}
	if snap.Vehicle != sim.Route().Last() {
		t.Errorf("expected vehicle at destination, got %+v", snap.Vehicle)
	}
	if snap.ETA != "Arrived" || snap.DistanceRemaining != "0.0 km" {
		t.Errorf("unexpected arrival text: %s / %s", snap.ETA, snap.DistanceRemaining)
	}
	if sim.Start() {
		t.Error("start after completion should wait for reset")
	}
}

func TestTick_ClockStepBackDoesNotRewind(t *testing.T) {
	sim, clock, sched := newTestSimulator("Trujillo", "Otuzco")
	sim.Start()

	clock.Advance(6 * time.Second)
	sched.fire()
	before := sim.Snapshot().Progress

	clock.Advance(-3 * time.Second)
	sched.fire()
	if got := sim.Snapshot().Progress; got != before {
		t.Errorf("expected progress to hold at %f, got %f", before, got)
	}
}

func TestSpinner_WrapsAt360(t *testing.T) {
	sim, _, sched := newTestSimulator("Trujillo", "Otuzco")
	sim.Start()

	spin := sched.timers[1]
	for i := 0; i < 31; i++ {
		spin.fn()
	}
	if got := sim.Snapshot().SpinnerAngle; got != 12 {
		t.Errorf("expected 12 after wrapping, got %f", got)
	}
}

func TestReset_RestoresConstructionState(t *testing.T) {
	sim, clock, sched := newTestSimulator("Trujillo", "Otuzco")
	initial := sim.Snapshot()

	sim.Start()
	clock.Advance(9 * time.Second)
	sched.fire()
	sim.Camera(tripsim.CameraFollow)
	sim.Reset()

	if sched.active() != 0 {
		t.Errorf("expected timers stopped after reset, %d active", sched.active())
	}
	after := sim.Snapshot()
	if after.Vehicle != initial.Vehicle || after.Progress != 0 || after.Running || after.Completed {
		t.Errorf("expected construction state, got %+v", after)
	}
	if after.StartedAt != nil || after.SpinnerAngle != 0 {
		t.Errorf("expected cleared start and spinner, got %+v", after)
	}
	if after.Viewport != initial.Viewport {
		t.Errorf("expected overview viewport, got %+v", after.Viewport)
	}
	if after.DistanceRemaining != initial.DistanceRemaining || after.ETA != initial.ETA {
		t.Errorf("derived text differs after reset: %+v vs %+v", after, initial)
	}
}

func TestReset_RerunIsDeterministic(t *testing.T) {
	sim, clock, sched := newTestSimulator("Trujillo", "Otuzco")
	routeBefore := sim.Route()

	run := func() (halfETA string, end string) {
		sim.Start()
		clock.Advance(7500 * time.Millisecond)
		sched.fire()
		halfETA = sim.Snapshot().ETA
		clock.Advance(8 * time.Second)
		sched.fire()
		end = sim.Snapshot().ETA
		return halfETA, end
	}

	h1, e1 := run()
	sim.Reset()
	h2, e2 := run()

	if h1 != h2 || e1 != e2 {
		t.Errorf("ETAs differ between runs: %s/%s vs %s/%s", h1, e1, h2, e2)
	}
	routeAfter := sim.Route()
	for i := range routeBefore.Coordinates {
		if routeBefore.Coordinates[i] != routeAfter.Coordinates[i] {
			t.Fatalf("route point %d changed", i)
		}
	}
}

func TestReset_StaleTimerIgnored(t *testing.T) {
	sim, clock, sched := newTestSimulator("Trujillo", "Otuzco")
	sim.Start()
	stale := sched.timers[0]

	sim.Reset()
	clock.Advance(5 * time.Second)
	stale.fn() // a tick already in flight when reset ran

	if p := sim.Snapshot().Progress; p != 0 {
		t.Errorf("expected stale tick to be ignored, got progress %f", p)
	}
}

func TestCamera_DoesNotTouchSimulation(t *testing.T) {
	sim, clock, sched := newTestSimulator("Trujillo", "Otuzco")
	sim.Start()
	clock.Advance(3 * time.Second)
	sched.fire()
	before := sim.Snapshot()

	follow := sim.Camera(tripsim.CameraFollow)
	if follow.Center != before.Vehicle || follow.Span.LatDelta != 0.15 {
		t.Errorf("unexpected follow region %+v", follow)
	}
	zoomed := sim.Camera(tripsim.CameraZoomIn)
	if zoomed.Span.LatDelta != 0.075 {
		t.Errorf("expected 0.075, got %f", zoomed.Span.LatDelta)
	}
	overview := sim.Camera(tripsim.CameraOverview)
	if overview != before.Viewport {
		t.Errorf("expected overview %+v, got %+v", before.Viewport, overview)
	}

	after := sim.Snapshot()
	if after.Progress != before.Progress || after.Vehicle != before.Vehicle || after.Running != before.Running {
		t.Error("camera operation changed simulation state")
	}
}

func TestAnnotations(t *testing.T) {
	sim, _, _ := newTestSimulator("Trujillo", "Otuzco")
	ann := sim.Annotations()
	if len(ann) != 3 {
		t.Fatalf("expected 3 annotations, got %d", len(ann))
	}
	if ann[0].Kind != "origin" || ann[0].Location != peru["Trujillo"] {
		t.Errorf("unexpected origin annotation %+v", ann[0])
	}
	if ann[1].Kind != "destination" || ann[1].Location != peru["Otuzco"] {
		t.Errorf("unexpected destination annotation %+v", ann[1])
	}
	if ann[2].Kind != "vehicle" || ann[2].Location != sim.Route().First() {
		t.Errorf("unexpected vehicle annotation %+v", ann[2])
	}
}

func TestTickerScheduler_StopsCallbacks(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	timer := tripsim.TickerScheduler{}.Every(time.Millisecond, func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	time.Sleep(20 * time.Millisecond)
	timer.Stop()
	timer.Stop() // idempotent

	mu.Lock()
	seen := calls
	mu.Unlock()
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if seen == 0 {
		t.Error("expected at least one callback")
	}
	if calls > seen+1 {
		t.Errorf("callbacks continued after stop: %d -> %d", seen, calls)
	}
}
