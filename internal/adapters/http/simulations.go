package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/viajaperu/tripsim/internal/core/domain"
	"github.com/viajaperu/tripsim/internal/core/tripsim"
)

// createSimulationRequest names either a booking or an origin/destination pair.
type createSimulationRequest struct {
	BookingID   string `json:"booking_id" validate:"max=64"`
	Origin      string `json:"origin" validate:"max=80"`
	Destination string `json:"destination" validate:"max=80"`
}

// startResponse wraps the snapshot with whether a new run began.
type startResponse struct {
	Started    bool                       `json:"started"`
	Simulation *domain.SimulationSnapshot `json:"simulation"`
}

// CreateSimulationHandler opens a new simulation at rest.
func CreateSimulationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createSimulationRequest
		if msg := bindJSON(c, &req); msg != "" {
			return errBadRequest(c, msg)
		}

		var (
			snap *domain.SimulationSnapshot
			err  error
		)
		switch {
		case strings.TrimSpace(req.BookingID) != "":
			snap, err = deps.Simulations.CreateForBooking(c.UserContext(), strings.TrimSpace(req.BookingID))
		case req.Origin != "" && req.Destination != "":
			snap, err = deps.Simulations.Create(c.UserContext(), req.Origin, req.Destination)
		default:
			return errBadRequest(c, "booking_id or origin and destination are required")
		}
		if err != nil {
			return errFromDomain(c, err)
		}

		c.Location("/v1/simulations/" + snap.ID)
		return c.Status(fiber.StatusCreated).JSON(snap)
	}
}

// ListSimulationsHandler returns open simulations in creation order.
func ListSimulationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageParams(c, 20, 100)

		sims, total := deps.Simulations.List(offset, limit)

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: sims, Pagination: pg})
	}
}

// GetSimulationHandler returns the current snapshot.
func GetSimulationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := deps.Simulations.Get(c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(snap)
	}
}

// SimulationRouteHandler returns the decorative route polyline.
func SimulationRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		route, err := deps.Simulations.Route(c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		// The route never changes for a simulation.
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(route)
	}
}

// SimulationAnnotationsHandler returns origin, destination and vehicle markers.
func SimulationAnnotationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ann, err := deps.Simulations.Annotations(c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(ann)
	}
}

// StartSimulationHandler begins a run. A running or finished simulation is left alone
// and answered with 409.
func StartSimulationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, started, err := deps.Simulations.Start(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		if !started {
			if snap.Completed {
				return errConflict(c, "simulation already completed, reset it first")
			}
			return errConflict(c, "simulation already running")
		}
		return c.Status(fiber.StatusAccepted).JSON(startResponse{Started: true, Simulation: snap})
	}
}

// ResetSimulationHandler returns a simulation to its initial state.
func ResetSimulationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := deps.Simulations.Reset(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(snap)
	}
}

// CameraHandler applies overview, follow, zoom-in or zoom-out.
func CameraHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		op, err := tripsim.ParseCameraOp(c.Params("op"))
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		region, err := deps.Simulations.Camera(c.Params("id"), op)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(region)
	}
}

// DeleteSimulationHandler stops and discards a simulation.
func DeleteSimulationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Simulations.Delete(c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// BookingRunsHandler lists finished simulations recorded for a booking.
func BookingRunsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		runs, err := deps.Simulations.History(c.UserContext(), c.Params("id"), c.QueryInt("limit", 20))
		if err != nil {
			return errFromDomain(c, err)
		}
		if runs == nil {
			runs = []domain.SimulationRun{}
		}
		return c.JSON(runs)
	}
}
