package usecases_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/viajaperu/tripsim/internal/core/domain"
	"github.com/viajaperu/tripsim/internal/core/tripsim"
)

// --- Mock PlaceRepository ---

type mockPlaceRepo struct {
	listFn   func(ctx context.Context) ([]domain.Place, error)
	upsertFn func(ctx context.Context, place *domain.Place) error
}

func (m *mockPlaceRepo) Upsert(ctx context.Context, place *domain.Place) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, place)
	}
	return nil
}

func (m *mockPlaceRepo) UpsertBatch(ctx context.Context, places []domain.Place) error { return nil }

func (m *mockPlaceRepo) GetByName(ctx context.Context, name string) (*domain.Place, error) {
	return nil, domain.ErrNotFound
}

func (m *mockPlaceRepo) List(ctx context.Context) ([]domain.Place, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newMockCache() *mockCache { return &mockCache{data: make(map[string][]byte)} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.deleted = append(m.deleted, key)
	return nil
}

// --- Mock BookingRepository ---

type mockBookingRepo struct {
	getByIDFn func(ctx context.Context, id string) (*domain.Booking, error)
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

// --- Mock SimulationRunRepository ---

type mockRunRepo struct {
	listByBookingFn func(ctx context.Context, bookingID string, limit int) ([]domain.SimulationRun, error)
}

func (m *mockRunRepo) Insert(ctx context.Context, run *domain.SimulationRun) error { return nil }

func (m *mockRunRepo) ListByBooking(ctx context.Context, bookingID string, limit int) ([]domain.SimulationRun, error) {
	if m.listByBookingFn != nil {
		return m.listByBookingFn(ctx, bookingID, limit)
	}
	return nil, nil
}

// --- Recording EventPublisher ---

type recordingPublisher struct {
	mu        sync.Mutex
	snapshots []domain.SimulationSnapshot
	completed []domain.SimulationCompleted
	ratings   []domain.RatingRequest
}

func (p *recordingPublisher) PublishSnapshot(ctx context.Context, snap *domain.SimulationSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, *snap)
	return nil
}

func (p *recordingPublisher) PublishCompleted(ctx context.Context, event *domain.SimulationCompleted) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed = append(p.completed, *event)
	return nil
}

func (p *recordingPublisher) PublishRatingRequest(ctx context.Context, req *domain.RatingRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ratings = append(p.ratings, *req)
	return nil
}

// --- Manual clock & scheduler ---

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
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
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() { t.stopped = true }

type manualScheduler struct {
	timers []*manualTimer
}

func (s *manualScheduler) Every(d time.Duration, fn func()) tripsim.Timer {
	t := &manualTimer{fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) fire() {
	for _, t := range s.timers {
		if !t.stopped {
			t.fn()
		}
	}
}

func testOptions() (tripsim.Options, *fakeClock, *manualScheduler) {
	clock := &fakeClock{now: time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)}
	sched := &manualScheduler{}
	return tripsim.Options{Clock: clock, Scheduler: sched}, clock, sched
}
