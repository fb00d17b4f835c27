package postgres

import (
	"context"

	"github.com/viajaperu/tripsim/internal/core/domain"
)

// SimulationRunRepo implements ports.SimulationRunRepository.
type SimulationRunRepo struct {
	db *DB
}

func NewSimulationRunRepo(db *DB) *SimulationRunRepo {
	return &SimulationRunRepo{db: db}
}

// Insert records a finished run. A run is keyed by simulation id and start time,
// so a replayed event keeps the existing row and a rerun after reset adds one.
func (r *SimulationRunRepo) Insert(ctx context.Context, run *domain.SimulationRun) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO simulation_runs (simulation_id, booking_id, origin, destination, total_distance_km, started_at, completed_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7)
		ON CONFLICT (simulation_id, started_at) DO UPDATE SET simulation_id = EXCLUDED.simulation_id
		RETURNING id, created_at
	`, run.SimulationID, run.BookingID, run.Origin, run.Destination,
		run.TotalDistanceKm, run.StartedAt, run.CompletedAt,
	).Scan(&run.ID, &run.CreatedAt)
}

// ListByBooking returns the most recent runs for a booking.
func (r *SimulationRunRepo) ListByBooking(ctx context.Context, bookingID string, limit int) ([]domain.SimulationRun, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, simulation_id, COALESCE(booking_id, ''), origin, destination,
		       total_distance_km, started_at, completed_at, created_at
		FROM simulation_runs
		WHERE booking_id = $1
		ORDER BY completed_at DESC
		LIMIT $2
	`, bookingID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.SimulationRun
	for rows.Next() {
		var run domain.SimulationRun
		if err := rows.Scan(
			&run.ID, &run.SimulationID, &run.BookingID, &run.Origin, &run.Destination,
			&run.TotalDistanceKm, &run.StartedAt, &run.CompletedAt, &run.CreatedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
