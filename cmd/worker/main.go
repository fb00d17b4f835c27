package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/viajaperu/tripsim/internal/adapters/nats"
	"github.com/viajaperu/tripsim/internal/adapters/postgres"
	"github.com/viajaperu/tripsim/internal/pkg/config"
	"github.com/viajaperu/tripsim/internal/pkg/logging"
	"github.com/viajaperu/tripsim/internal/workflows"
)

func main() {
	cfg, err := config.Load("tripsim-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("tripsim-worker", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database for run history
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Publisher for rating prompts
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer pub.Close()

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.RatingPromptWorkflow)
	w.RegisterActivity(&workflows.RatingActivities{
		Runs:      postgres.NewSimulationRunRepo(db),
		Publisher: pub,
	})

	// Completion events start the rating workflow
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	scheduler := workflows.NewRatingScheduler(c, cfg.Temporal.TaskQueue)
	if err := workflows.Relay(ctx, sub, scheduler); err != nil {
		log.Fatalf("subscribe completions: %v", err)
	}

	slog.Info("rating worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
