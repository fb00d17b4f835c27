package http

import (
	"github.com/nats-io/nats.go"

	"github.com/viajaperu/tripsim/internal/adapters/postgres"
	"github.com/viajaperu/tripsim/internal/adapters/valkey"
	"github.com/viajaperu/tripsim/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
// Everything except Places and Simulations may be nil.
type Dependencies struct {
	Places      *usecases.PlaceService
	Simulations *usecases.SimulationService
	NATS        *nats.Conn
	DB          *postgres.DB
	Cache       *valkey.Cache
}
