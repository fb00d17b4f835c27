package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	natsadapter "github.com/viajaperu/tripsim/internal/adapters/nats"
	"github.com/viajaperu/tripsim/internal/core/domain"
	"github.com/viajaperu/tripsim/internal/core/places"
	"github.com/viajaperu/tripsim/internal/core/tripsim"
	"github.com/viajaperu/tripsim/internal/pkg/config"
	"github.com/viajaperu/tripsim/internal/pkg/logging"
)

func main() {
	var (
		natsURL  = pflag.String("nats", "", "publish snapshots to this NATS server")
		step     = pflag.Float64("step", 0.1, "print a line every time progress advances by this much")
		duration = pflag.Duration("duration", 0, "override the run duration (e.g. 30s)")
	)
	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: simulate [flags] <origin> <destination>")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if pflag.NArg() != 2 {
		pflag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load("tripsim-simulate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("tripsim-simulate", cfg.Log.Level, "text")

	opts := cfg.Simulation.Options()
	if *duration > 0 {
		opts.Duration = *duration
	}

	dir := places.NewStaticDirectory(places.Seed())
	sim := tripsim.New(pflag.Arg(0), pflag.Arg(1), dir, opts)
	for _, f := range sim.Unresolved() {
		slog.Warn("place not in directory, using default", "name", f.Name, "role", f.Role)
	}

	var pub *natsadapter.Publisher
	if *natsURL != "" {
		pub, err = natsadapter.NewPublisher(*natsURL)
		if err != nil {
			log.Fatalf("nats: %v", err)
		}
		defer pub.Close()
	}

	id := fmt.Sprintf("cli-%d", time.Now().UnixNano())
	done := make(chan domain.SimulationSnapshot, 1)
	nextMark := 0.0

	sim.OnUpdate(func(ev tripsim.Event) {
		snap := ev.Snapshot
		snap.ID = id
		if pub != nil {
			if err := pub.PublishSnapshot(context.Background(), &snap); err != nil {
				slog.Debug("publish failed", "error", err)
			}
		}
		switch ev.Kind {
		case tripsim.EventTick:
			if snap.Progress >= nextMark {
				printLine(snap)
				nextMark += *step
			}
		case tripsim.EventCompleted:
			done <- snap
		}
	})

	first := sim.Snapshot()
	fmt.Printf("%s -> %s  %s  ~%s\n", first.Origin, first.Destination, first.TotalDistance, first.EstimatedDuration)
	sim.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case snap := <-done:
		printLine(snap)
		fmt.Println("arrived")
	case <-quit:
		sim.Stop()
		fmt.Println("interrupted")
	}
}

func printLine(s domain.SimulationSnapshot) {
	fmt.Printf("%5.1f%%  bus at %.4f,%.4f  left %-9s  eta %-8s  %s\n",
		s.Progress*100, s.Vehicle.Lat, s.Vehicle.Lon, s.DistanceRemaining, s.ETA, s.TimeRemaining)
}
