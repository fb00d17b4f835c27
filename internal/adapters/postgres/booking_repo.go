package postgres

import (
	"context"

	"github.com/viajaperu/tripsim/internal/core/domain"
)

// BookingRepo implements ports.BookingRepository. It only reads.
type BookingRepo struct {
	db *DB
}

func NewBookingRepo(db *DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// GetByID returns a booking by id.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, passenger_name, origin, destination, departure_at, seat, status
		FROM bookings WHERE id = $1
	`, id).Scan(&b.ID, &b.PassengerName, &b.Origin, &b.Destination, &b.DepartureAt, &b.Seat, &b.Status)
	if err != nil {
		return nil, notFound(err, "booking "+id)
	}
	return &b, nil
}
