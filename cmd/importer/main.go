package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/viajaperu/tripsim/internal/adapters/postgres"
	"github.com/viajaperu/tripsim/internal/adapters/valkey"
	"github.com/viajaperu/tripsim/internal/core/domain"
	"github.com/viajaperu/tripsim/internal/core/places"
	"github.com/viajaperu/tripsim/internal/core/usecases"
	"github.com/viajaperu/tripsim/internal/pkg/config"
)

const batchSize = 500

func main() {
	path := "places.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.Load("tripsim-importer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	repo := postgres.NewPlaceRepo(db)

	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	log.Printf("importing places from %s", path)
	stats, err := places.ReadCSV(f, batchSize, func(batch []domain.Place) error {
		return repo.UpsertBatch(ctx, batch)
	})
	if err != nil {
		log.Fatalf("import: %v", err)
	}
	log.Printf("places: %d imported, %d skipped", stats.Imported, stats.Skipped)

	// Drop the cached directory so API instances reload on their next refresh.
	if cache, err := valkey.New(cfg.Valkey.Addr); err == nil {
		defer cache.Close()
		if err := cache.Delete(ctx, usecases.PlacesCacheKey); err != nil {
			log.Printf("cache invalidation failed: %v", err)
		}
	}
	log.Println("import complete")
}
