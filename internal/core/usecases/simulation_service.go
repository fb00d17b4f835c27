package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/viajaperu/tripsim/internal/core/domain"
	"github.com/viajaperu/tripsim/internal/core/ports"
	"github.com/viajaperu/tripsim/internal/core/tripsim"
	"github.com/viajaperu/tripsim/internal/pkg/metrics"
)

var tracer = otel.Tracer("github.com/viajaperu/tripsim/usecases")

// session is one registered simulator.
type session struct {
	id        string
	bookingID string
	createdAt time.Time
	sim       *tripsim.Simulator
	running   atomic.Bool
	touched   atomic.Int64 // unix nanos of the last event
}

// SimulationService keeps the independent simulators the app has opened.
type SimulationService struct {
	places    *PlaceService
	bookings  ports.BookingRepository
	runs      ports.SimulationRunRepository
	publisher ports.EventPublisher
	opts      tripsim.Options

	mu       sync.RWMutex
	sessions map[string]*session
	order    []string
}

// NewSimulationService creates a new SimulationService.
// bookings, runs and publisher may be nil.
func NewSimulationService(
	places *PlaceService,
	bookings ports.BookingRepository,
	runs ports.SimulationRunRepository,
	publisher ports.EventPublisher,
	opts tripsim.Options,
) *SimulationService {
	return &SimulationService{
		places:    places,
		bookings:  bookings,
		runs:      runs,
		publisher: publisher,
		opts:      opts,
		sessions:  make(map[string]*session),
	}
}

// Create opens a simulation between two place names.
func (s *SimulationService) Create(ctx context.Context, origin, destination string) (*domain.SimulationSnapshot, error) {
	return s.create(ctx, "", origin, destination)
}

// CreateForBooking opens a simulation for a stored booking's origin and destination.
func (s *SimulationService) CreateForBooking(ctx context.Context, bookingID string) (*domain.SimulationSnapshot, error) {
	if s.bookings == nil {
		return nil, fmt.Errorf("booking repository: %w", domain.ErrUnavailable)
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking %s: %w", bookingID, err)
	}
	return s.create(ctx, b.ID, b.Origin, b.Destination)
}

func (s *SimulationService) create(ctx context.Context, bookingID, origin, destination string) (*domain.SimulationSnapshot, error) {
	_, span := tracer.Start(ctx, "SimulationService.Create")
	defer span.End()

	origin = strings.TrimSpace(origin)
	destination = strings.TrimSpace(destination)
	if origin == "" || destination == "" {
		return nil, fmt.Errorf("origin and destination are required: %w", domain.ErrInvalidInput)
	}

	sim := tripsim.New(origin, destination, s.places.Directory(), s.opts)
	sess := &session{
		id:        uuid.NewString(),
		bookingID: bookingID,
		createdAt: s.now(),
		sim:       sim,
	}
	sess.touched.Store(sess.createdAt.UnixNano())
	sim.OnUpdate(s.listener(sess))

	for _, f := range sim.Unresolved() {
		metrics.PlaceFallbacks.WithLabelValues(f.Role).Inc()
		slog.Debug("place not in directory, using default", "name", f.Name, "role", f.Role)
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.order = append(s.order, sess.id)
	s.mu.Unlock()

	metrics.SimulationsCreated.Inc()
	span.SetAttributes(
		attribute.String("simulation.id", sess.id),
		attribute.String("simulation.origin", origin),
		attribute.String("simulation.destination", destination),
	)
	slog.Info("simulation created", "id", sess.id, "origin", origin, "destination", destination, "booking_id", bookingID)

	snap := sess.snapshot()
	return &snap, nil
}

func (s *SimulationService) listener(sess *session) tripsim.Listener {
	return func(ev tripsim.Event) {
		snap := ev.Snapshot
		snap.ID = sess.id
		snap.BookingID = sess.bookingID
		ctx := context.Background()
		sess.touched.Store(s.now().UnixNano())

		switch ev.Kind {
		case tripsim.EventStarted:
			sess.running.Store(true)
			metrics.SimulationsStarted.Inc()
			metrics.SimulationsActive.Inc()
		case tripsim.EventTick:
			metrics.SimulationTicks.Inc()
		case tripsim.EventReset:
			if sess.running.Swap(false) {
				metrics.SimulationsActive.Dec()
			}
			metrics.SimulationResets.Inc()
		case tripsim.EventCompleted:
			if sess.running.Swap(false) {
				metrics.SimulationsActive.Dec()
			}
			metrics.SimulationsCompleted.Inc()
			slog.Info("simulation completed", "id", sess.id, "booking_id", sess.bookingID)
			s.publishCompleted(ctx, sess, snap)
		}

		if s.publisher != nil {
			if err := s.publisher.PublishSnapshot(ctx, &snap); err != nil {
				slog.Debug("publish snapshot failed", "id", sess.id, "error", err)
			}
		}
	}
}

func (s *SimulationService) publishCompleted(ctx context.Context, sess *session, snap domain.SimulationSnapshot) {
	if s.publisher == nil {
		return
	}
	event := &domain.SimulationCompleted{
		SimulationID:    sess.id,
		BookingID:       sess.bookingID,
		Origin:          snap.Origin,
		Destination:     snap.Destination,
		TotalDistanceKm: snap.TotalDistanceKm,
		CompletedAt:     s.now(),
	}
	if snap.StartedAt != nil {
		event.StartedAt = *snap.StartedAt
	}
	if err := s.publisher.PublishCompleted(ctx, event); err != nil {
		slog.Warn("publish completion failed", "id", sess.id, "error", err)
	}
}

func (s *SimulationService) get(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("simulation %s: %w", id, domain.ErrNotFound)
	}
	return sess, nil
}

// Get returns the current state of a simulation.
func (s *SimulationService) Get(id string) (*domain.SimulationSnapshot, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	snap := sess.snapshot()
	return &snap, nil
}

// List returns one page of simulations in creation order and the total count.
func (s *SimulationService) List(offset, limit int) ([]domain.SimulationSnapshot, int) {
	s.mu.RLock()
	ids := page(s.order, offset, limit)
	total := len(s.order)
	sessions := make([]*session, 0, len(ids))
	for _, id := range ids {
		sessions = append(sessions, s.sessions[id])
	}
	s.mu.RUnlock()

	out := make([]domain.SimulationSnapshot, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sess.snapshot())
	}
	return out, total
}

// Count returns the number of registered simulations.
func (s *SimulationService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Route returns the generated polyline.
func (s *SimulationService) Route(id string) (domain.GeoLineString, error) {
	sess, err := s.get(id)
	if err != nil {
		return domain.GeoLineString{}, err
	}
	return sess.sim.Route(), nil
}

// Annotations returns the origin, destination and vehicle markers.
func (s *SimulationService) Annotations(id string) ([]domain.Annotation, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return sess.sim.Annotations(), nil
}

// Start begins a run. started is false if the simulation was already running or finished.
func (s *SimulationService) Start(ctx context.Context, id string) (snap *domain.SimulationSnapshot, started bool, err error) {
	_, span := tracer.Start(ctx, "SimulationService.Start", trace.WithAttributes(attribute.String("simulation.id", id)))
	defer span.End()

	sess, err := s.get(id)
	if err != nil {
		return nil, false, err
	}
	// Touched before starting; Sweep must not remove a session mid-start.
	sess.touched.Store(s.now().UnixNano())
	started = sess.sim.Start()
	if started {
		slog.Info("simulation started", "id", id)
	}
	out := sess.snapshot()
	return &out, started, nil
}

// Reset returns a simulation to its initial state.
func (s *SimulationService) Reset(ctx context.Context, id string) (*domain.SimulationSnapshot, error) {
	_, span := tracer.Start(ctx, "SimulationService.Reset", trace.WithAttributes(attribute.String("simulation.id", id)))
	defer span.End()

	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.sim.Reset()
	slog.Info("simulation reset", "id", id)
	out := sess.snapshot()
	return &out, nil
}

// Camera applies a viewport operation.
func (s *SimulationService) Camera(id string, op tripsim.CameraOp) (domain.ViewportRegion, error) {
	sess, err := s.get(id)
	if err != nil {
		return domain.ViewportRegion{}, err
	}
	return sess.sim.Camera(op), nil
}

// Delete stops and forgets a simulation.
func (s *SimulationService) Delete(id string) error {
	if !s.remove(id, nil) {
		return fmt.Errorf("simulation %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// deleteIfIdle removes the simulation only if, under the write lock, it is
// still not running and was last touched before cutoff (unix nanos).
func (s *SimulationService) deleteIfIdle(id string, cutoff int64) bool {
	return s.remove(id, func(sess *session) bool {
		return !sess.running.Load() && sess.touched.Load() < cutoff
	})
}

// remove drops the session when it exists and cond (if any) holds, then stops it.
func (s *SimulationService) remove(id string, cond func(*session) bool) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok && cond != nil && !cond(sess) {
		ok = false
	}
	if ok {
		delete(s.sessions, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if !ok {
		return false
	}
	sess.sim.Stop()
	if sess.running.Swap(false) {
		metrics.SimulationsActive.Dec()
	}
	return true
}

// Close stops every simulation. Called on shutdown.
func (s *SimulationService) Close() {
	s.mu.RLock()
	ids := append([]string(nil), s.order...)
	s.mu.RUnlock()
	for _, id := range ids {
		_ = s.Delete(id)
	}
}

// Sweep deletes simulations that are not running and have seen no event for
// longer than maxIdle. It returns how many were removed.
func (s *SimulationService) Sweep(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle).UnixNano()

	s.mu.RLock()
	var stale []string
	for _, id := range s.order {
		sess := s.sessions[id]
		if !sess.running.Load() && sess.touched.Load() < cutoff {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()

	removed := 0
	for _, id := range stale {
		if s.deleteIfIdle(id, cutoff) {
			removed++
		}
	}
	if removed > 0 {
		slog.Info("idle simulations swept", "removed", removed)
	}
	return removed
}

func (s *SimulationService) now() time.Time {
	if s.opts.Clock != nil {
		return s.opts.Clock.Now()
	}
	return time.Now()
}

// History returns finished runs recorded for a booking.
func (s *SimulationService) History(ctx context.Context, bookingID string, limit int) ([]domain.SimulationRun, error) {
	if s.runs == nil {
		return nil, fmt.Errorf("run repository: %w", domain.ErrUnavailable)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.runs.ListByBooking(ctx, bookingID, limit)
}

func (sess *session) snapshot() domain.SimulationSnapshot {
	snap := sess.sim.Snapshot()
	snap.ID = sess.id
	snap.BookingID = sess.bookingID
	return snap
}
