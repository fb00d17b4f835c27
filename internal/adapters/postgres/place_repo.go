package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/viajaperu/tripsim/internal/core/domain"
)

// PlaceRepo implements ports.PlaceRepository with pgx.
type PlaceRepo struct {
	db *DB
}

// NewPlaceRepo creates a new PlaceRepo.
func NewPlaceRepo(db *DB) *PlaceRepo {
	return &PlaceRepo{db: db}
}

const upsertPlaceSQL = `
	INSERT INTO places (name, lat, lon, kind, region)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (name) DO UPDATE
	SET lat = EXCLUDED.lat, lon = EXCLUDED.lon,
	    kind = EXCLUDED.kind, region = EXCLUDED.region,
	    updated_at = now()
`

// Upsert inserts or updates a single place.
func (r *PlaceRepo) Upsert(ctx context.Context, p *domain.Place) error {
	_, err := r.db.Pool.Exec(ctx, upsertPlaceSQL,
		p.Name, p.Location.Lat, p.Location.Lon, p.Kind, p.Region)
	return err
}

// UpsertBatch inserts many places using pgx.Batch.
func (r *PlaceRepo) UpsertBatch(ctx context.Context, places []domain.Place) error {
	batch := &pgx.Batch{}
	for _, p := range places {
		batch.Queue(upsertPlaceSQL, p.Name, p.Location.Lat, p.Location.Lon, p.Kind, p.Region)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range places {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// GetByName returns a place by exact name.
func (r *PlaceRepo) GetByName(ctx context.Context, name string) (*domain.Place, error) {
	var p domain.Place
	err := r.db.Pool.QueryRow(ctx, `
		SELECT name, lat, lon, kind, COALESCE(region, '')
		FROM places WHERE name = $1
	`, name).Scan(&p.Name, &p.Location.Lat, &p.Location.Lon, &p.Kind, &p.Region)
	if err != nil {
		return nil, notFound(err, "place "+name)
	}
	return &p, nil
}

// List returns every place ordered by name.
func (r *PlaceRepo) List(ctx context.Context) ([]domain.Place, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT name, lat, lon, kind, COALESCE(region, '')
		FROM places
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var places []domain.Place
	for rows.Next() {
		var p domain.Place
		if err := rows.Scan(&p.Name, &p.Location.Lat, &p.Location.Lon, &p.Kind, &p.Region); err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	return places, rows.Err()
}
