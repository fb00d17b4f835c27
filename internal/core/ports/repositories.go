package ports

import (
	"context"

	"github.com/viajaperu/tripsim/internal/core/domain"
)

// PlaceRepository persists the place directory.
type PlaceRepository interface {
	Upsert(ctx context.Context, place *domain.Place) error
	UpsertBatch(ctx context.Context, places []domain.Place) error
	GetByName(ctx context.Context, name string) (*domain.Place, error)
	List(ctx context.Context) ([]domain.Place, error)
}

// BookingRepository reads booking records. Bookings are never written here.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
}

// SimulationRunRepository persists finished simulations.
type SimulationRunRepository interface {
	Insert(ctx context.Context, run *domain.SimulationRun) error
	ListByBooking(ctx context.Context, bookingID string, limit int) ([]domain.SimulationRun, error)
}
