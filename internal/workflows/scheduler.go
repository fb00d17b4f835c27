package workflows

import (
	"context"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/client"

	"github.com/viajaperu/tripsim/internal/core/domain"
	"github.com/viajaperu/tripsim/internal/core/ports"
	"github.com/viajaperu/tripsim/internal/pkg/metrics"
)

// RatingScheduler starts RatingPromptWorkflow on a Temporal task queue.
type RatingScheduler struct {
	client    client.Client
	taskQueue string
}

// NewRatingScheduler creates a scheduler bound to one task queue.
func NewRatingScheduler(c client.Client, taskQueue string) *RatingScheduler {
	return &RatingScheduler{client: c, taskQueue: taskQueue}
}

// WorkflowID names the workflow for one run of a simulation. A redelivered
// completion event maps onto the same ID and joins the existing execution.
func WorkflowID(event *domain.SimulationCompleted) string {
	return fmt.Sprintf("rating-%s-%d", event.SimulationID, event.StartedAt.UnixMilli())
}

// ScheduleRating implements ports.RatingScheduler.
func (s *RatingScheduler) ScheduleRating(ctx context.Context, event *domain.SimulationCompleted) error {
	opts := client.StartWorkflowOptions{
		ID:        WorkflowID(event),
		TaskQueue: s.taskQueue,
	}
	run, err := s.client.ExecuteWorkflow(ctx, opts, RatingPromptWorkflow, *event)
	if err != nil {
		return fmt.Errorf("start rating workflow: %w", err)
	}
	metrics.RatingPromptsScheduled.Inc()
	slog.Info("rating workflow started", "workflow_id", run.GetID(), "run_id", run.GetRunID())
	return nil
}

// Relay schedules a rating for every completion event the subscriber delivers.
// A scheduling error is returned to the subscriber so the event is redelivered.
func Relay(ctx context.Context, sub ports.EventSubscriber, scheduler ports.RatingScheduler) error {
	return sub.SubscribeCompleted(ctx, func(ctx context.Context, event *domain.SimulationCompleted) error {
		return scheduler.ScheduleRating(ctx, event)
	})
}
