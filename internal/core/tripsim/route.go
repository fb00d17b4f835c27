package tripsim

import (
	"math"

	"github.com/viajaperu/tripsim/internal/core/domain"
)

// Winding-road perturbation applied on top of the straight line.
const (
	wiggleLatAmplitude = 0.012
	wiggleLatCycles    = 8.0
	wiggleLonAmplitude = 0.008
	wiggleLonCycles    = 6.0
)

// GenerateRoute builds a decorative curved polyline of segments+1 points from
// origin to destination. It is a pure function of its inputs.
func GenerateRoute(origin, destination domain.GeoPoint, segments int) domain.GeoLineString {
	if segments <= 0 {
		segments = DefaultSegments
	}

	dLat := destination.Lat - origin.Lat
	dLon := destination.Lon - origin.Lon

	points := make([]domain.GeoPoint, segments+1)
	for i := 0; i <= segments; i++ {
		fraction := float64(i) / float64(segments)
		points[i] = domain.GeoPoint{
			Lat: origin.Lat + dLat*fraction + math.Sin(fraction*math.Pi*wiggleLatCycles)*wiggleLatAmplitude,
			Lon: origin.Lon + dLon*fraction + math.Cos(fraction*math.Pi*wiggleLonCycles)*wiggleLonAmplitude,
		}
	}
	return domain.GeoLineString{Coordinates: points}
}

// indexAt maps progress onto a route index, clamped to the route bounds.
func indexAt(progress float64, length int) int {
	if length == 0 {
		return 0
	}
	idx := int(math.Floor(progress * float64(length-1)))
	if idx < 0 {
		return 0
	}
	if idx > length-1 {
		return length - 1
	}
	return idx
}
