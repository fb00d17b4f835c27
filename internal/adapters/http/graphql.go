package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/viajaperu/tripsim/internal/core/domain"
	"github.com/viajaperu/tripsim/internal/core/tripsim"
)

// buildSchema creates the GraphQL schema wired to our services.
// Field names follow the JSON tags of the domain types.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	viewportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Viewport",
		Fields: graphql.Fields{
			"center": &graphql.Field{Type: geoPointType},
			"span": &graphql.Field{Type: graphql.NewObject(graphql.ObjectConfig{
				Name: "Span",
				Fields: graphql.Fields{
					"lat_delta": &graphql.Field{Type: graphql.Float},
					"lon_delta": &graphql.Field{Type: graphql.Float},
				},
			})},
		},
	})

	placeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Place",
		Fields: graphql.Fields{
			"name":        &graphql.Field{Type: graphql.String},
			"location":    &graphql.Field{Type: geoPointType},
			"kind":        &graphql.Field{Type: graphql.String},
			"region":      &graphql.Field{Type: graphql.String},
			"distance_km": &graphql.Field{Type: graphql.Float},
		},
	})

	annotationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Annotation",
		Fields: graphql.Fields{
			"kind":     &graphql.Field{Type: graphql.String},
			"title":    &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
		},
	})

	simulationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Simulation",
		Fields: graphql.Fields{
			"id":                 &graphql.Field{Type: graphql.String},
			"booking_id":         &graphql.Field{Type: graphql.String},
			"origin":             &graphql.Field{Type: graphql.String},
			"destination":        &graphql.Field{Type: graphql.String},
			"progress":           &graphql.Field{Type: graphql.Float},
			"vehicle":            &graphql.Field{Type: geoPointType},
			"running":            &graphql.Field{Type: graphql.Boolean},
			"completed":          &graphql.Field{Type: graphql.Boolean},
			"total_distance":     &graphql.Field{Type: graphql.String},
			"total_distance_km":  &graphql.Field{Type: graphql.Float},
			"estimated_duration": &graphql.Field{Type: graphql.String},
			"distance_remaining": &graphql.Field{Type: graphql.String},
			"eta":                &graphql.Field{Type: graphql.String},
			"time_remaining":     &graphql.Field{Type: graphql.String},
			"viewport":           &graphql.Field{Type: viewportType},
			"started_at": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					snap, ok := p.Source.(*domain.SimulationSnapshot)
					if !ok || snap.StartedAt == nil {
						return nil, nil
					}
					return snap.StartedAt.Format("2006-01-02T15:04:05.000Z07:00"), nil
				},
			},
			"annotations": &graphql.Field{
				Type: graphql.NewList(annotationType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					snap, ok := p.Source.(*domain.SimulationSnapshot)
					if !ok {
						return nil, nil
					}
					return deps.Simulations.Annotations(snap.ID)
				},
			},
			"route": &graphql.Field{
				Type:        graphql.NewList(geoPointType),
				Description: "Route polyline, 151 points by default",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					snap, ok := p.Source.(*domain.SimulationSnapshot)
					if !ok {
						return nil, nil
					}
					route, err := deps.Simulations.Route(snap.ID)
					if err != nil {
						return nil, err
					}
					return route.Coordinates, nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"places": &graphql.Field{
				Type:        graphql.NewList(placeType),
				Description: "List the place directory",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					places, _ := deps.Places.List(p.Args["offset"].(int), p.Args["limit"].(int))
					return places, nil
				},
			},
			"placesNearby": &graphql.Field{
				Type:        graphql.NewList(placeType),
				Description: "Find places near a location",
				Args: graphql.FieldConfigArgument{
					"lat":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius_km": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 25.0},
					"limit":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Places.Nearby(
						p.Args["lat"].(float64),
						p.Args["lon"].(float64),
						p.Args["radius_km"].(float64),
						p.Args["limit"].(int),
					)
				},
			},
			"simulation": &graphql.Field{
				Type:        simulationType,
				Description: "Get a simulation by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Simulations.Get(p.Args["id"].(string))
				},
			},
			"simulations": &graphql.Field{
				Type:        graphql.NewList(simulationType),
				Description: "List open simulations",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sims, _ := deps.Simulations.List(p.Args["offset"].(int), p.Args["limit"].(int))
					out := make([]*domain.SimulationSnapshot, len(sims))
					for i := range sims {
						out[i] = &sims[i]
					}
					return out, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createSimulation": &graphql.Field{
				Type:        simulationType,
				Description: "Open a simulation between two places, or for a booking",
				Args: graphql.FieldConfigArgument{
					"origin":      &graphql.ArgumentConfig{Type: graphql.String},
					"destination": &graphql.ArgumentConfig{Type: graphql.String},
					"booking_id":  &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if bookingID, _ := p.Args["booking_id"].(string); bookingID != "" {
						return deps.Simulations.CreateForBooking(p.Context, bookingID)
					}
					origin, _ := p.Args["origin"].(string)
					destination, _ := p.Args["destination"].(string)
					return deps.Simulations.Create(p.Context, origin, destination)
				},
			},
			"startSimulation": &graphql.Field{
				Type: simulationType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					snap, _, err := deps.Simulations.Start(p.Context, p.Args["id"].(string))
					return snap, err
				},
			},
			"resetSimulation": &graphql.Field{
				Type: simulationType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Simulations.Reset(p.Context, p.Args["id"].(string))
				},
			},
			"camera": &graphql.Field{
				Type: viewportType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"op": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					op, err := tripsim.ParseCameraOp(p.Args["op"].(string))
					if err != nil {
						return nil, err
					}
					return deps.Simulations.Camera(p.Args["id"].(string), op)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
