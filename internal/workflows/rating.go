package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/viajaperu/tripsim/internal/core/domain"
)

// Activity names, registered from RatingActivities method names.
const (
	ActivityRecordSimulationRun = "RecordSimulationRun"
	ActivityRequestRating       = "RequestRating"
)

// RatingPromptWorkflow stores the finished run, then asks the app to show the
// rating screen. Simulations without a booking are recorded but never prompted.
func RatingPromptWorkflow(ctx workflow.Context, event domain.SimulationCompleted) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting rating prompt workflow", "simulation", event.SimulationID, "booking", event.BookingID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Persist the run
	if err := workflow.ExecuteActivity(ctx, ActivityRecordSimulationRun, event).Get(ctx, nil); err != nil {
		return err
	}

	if event.BookingID == "" {
		logger.Info("No booking attached, skipping rating prompt", "simulation", event.SimulationID)
		return nil
	}

	// Step 2: Prompt for a rating
	if err := workflow.ExecuteActivity(ctx, ActivityRequestRating, event).Get(ctx, nil); err != nil {
		return err
	}

	logger.Info("Rating prompt sent", "booking", event.BookingID)
	return nil
}
