package http

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/viajaperu/tripsim/internal/core/domain"
)

// ListPlacesHandler returns the place directory, paginated.
func ListPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageParams(c, 50, 200)

		places, total := deps.Places.List(offset, limit)

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: places, Pagination: pg})
	}
}

// NearbyPlacesHandler returns places within radius_km of a point.
func NearbyPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return errBadRequest(c, "lat/lon out of range")
		}
		radius := c.QueryFloat("radius_km", 25)
		limit := c.QueryInt("limit", 20)

		places, err := deps.Places.Nearby(lat, lon, radius, limit)
		if err != nil {
			return errFromDomain(c, err)
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(places)
	}
}

// GetPlaceHandler returns a single place by exact name.
func GetPlaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, err := url.PathUnescape(c.Params("name"))
		if err != nil || name == "" {
			return errBadRequest(c, "place name is required")
		}

		place, err := deps.Places.Get(name)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(place)
	}
}

type upsertPlaceRequest struct {
	Lat    *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon    *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	Kind   string   `json:"kind" validate:"omitempty,oneof=city tourist"`
	Region string   `json:"region" validate:"max=80"`
}

// UpsertPlaceHandler adds or moves a place and reloads the directory.
func UpsertPlaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, err := url.PathUnescape(c.Params("name"))
		if err != nil || name == "" {
			return errBadRequest(c, "place name is required")
		}
		var req upsertPlaceRequest
		if msg := bindJSON(c, &req); msg != "" {
			return errBadRequest(c, msg)
		}
		if req.Kind == "" {
			req.Kind = "city"
		}

		place := &domain.Place{
			Name:     name,
			Location: domain.GeoPoint{Lat: *req.Lat, Lon: *req.Lon},
			Kind:     req.Kind,
			Region:   req.Region,
		}
		if err := deps.Places.Upsert(c.UserContext(), place); err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(place)
	}
}
