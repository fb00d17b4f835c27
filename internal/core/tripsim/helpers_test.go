package tripsim_test

import (
	"sync"
	"time"

	"github.com/viajaperu/tripsim/internal/core/domain"
	"github.com/viajaperu/tripsim/internal/core/tripsim"
)

// --- Manual clock & scheduler ---

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type manualTimer struct {
	interval time.Duration
	fn       func()
	stopped  bool
}

func (t *manualTimer) Stop() { t.stopped = true }

type manualScheduler struct {
	timers []*manualTimer
}

func (s *manualScheduler) Every(d time.Duration, fn func()) tripsim.Timer {
	t := &manualTimer{interval: d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// fire runs every live timer once.
func (s *manualScheduler) fire() {
	for _, t := range s.timers {
		if !t.stopped {
			t.fn()
		}
	}
}

func (s *manualScheduler) active() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// --- Directory ---

type mapDirectory map[string]domain.GeoPoint

func (m mapDirectory) Resolve(name string) (domain.GeoPoint, bool) {
	p, ok := m[name]
	return p, ok
}

var peru = mapDirectory{
	"Trujillo": {Lat: -8.1116, Lon: -79.0288},
	"Otuzco":   {Lat: -7.9028, Lon: -78.5686},
	"Lima":     {Lat: -12.0464, Lon: -77.0428},
}

func newTestSimulator(origin, destination string) (*tripsim.Simulator, *fakeClock, *manualScheduler) {
	clock := newFakeClock()
	sched := &manualScheduler{}
	sim := tripsim.New(origin, destination, peru, tripsim.Options{Clock: clock, Scheduler: sched})
	return sim, clock, sched
}
