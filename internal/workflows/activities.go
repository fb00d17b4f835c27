package workflows

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/viajaperu/tripsim/internal/core/domain"
	"github.com/viajaperu/tripsim/internal/core/ports"
)

// RatingActivities holds the activity implementations for the rating workflow.
type RatingActivities struct {
	Runs      ports.SimulationRunRepository
	Publisher ports.EventPublisher
	Now       func() time.Time
}

func (a *RatingActivities) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// RecordSimulationRun writes the finished run. A replay of the same run keeps
// the existing row; a rerun after reset is stored as a new one.
func (a *RatingActivities) RecordSimulationRun(ctx context.Context, event domain.SimulationCompleted) error {
	run := &domain.SimulationRun{
		SimulationID:    event.SimulationID,
		BookingID:       event.BookingID,
		Origin:          event.Origin,
		Destination:     event.Destination,
		TotalDistanceKm: event.TotalDistanceKm,
		StartedAt:       event.StartedAt,
		CompletedAt:     event.CompletedAt,
	}
	if err := a.Runs.Insert(ctx, run); err != nil {
		return fmt.Errorf("record run %s: %w", event.SimulationID, err)
	}
	slog.Info("simulation run recorded", "simulation", event.SimulationID, "run", run.ID)
	return nil
}

// RequestRating publishes the rating prompt for the booking.
func (a *RatingActivities) RequestRating(ctx context.Context, event domain.SimulationCompleted) error {
	if a.Publisher == nil {
		slog.Info("rating prompt (no publisher)", "booking", event.BookingID, "destination", event.Destination)
		return nil
	}
	req := &domain.RatingRequest{
		BookingID:    event.BookingID,
		SimulationID: event.SimulationID,
		Destination:  event.Destination,
		StartedAt:    event.StartedAt,
		RequestedAt:  a.now(),
	}
	if err := a.Publisher.PublishRatingRequest(ctx, req); err != nil {
		return fmt.Errorf("request rating for booking %s: %w", event.BookingID, err)
	}
	return nil
}
