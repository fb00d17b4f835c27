package geospatial

import "math"

const earthRadiusKm = 6371.0

// HaversineKm calculates the great-circle distance in kilometres between two points.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// asin form; clamp guards rounding just above 1 for antipodal points
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(math.Min(a, 1)))
}

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	return HaversineKm(lat1, lon1, lat2, lon2) * 1000
}

// Midpoint returns the arithmetic midpoint of two coordinates. Good enough for
// framing a camera over regional distances; not a great-circle midpoint.
func Midpoint(lat1, lon1, lat2, lon2 float64) (lat, lon float64) {
	return (lat1 + lat2) / 2, (lon1 + lon2) / 2
}

// BoundingBox returns a bounding box around a point with the given radius in meters.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / 111320.0
	lonDelta := radiusMeters / (111320.0 * math.Cos(toRad(lat)))

	return lat - latDelta, lon - lonDelta, lat + latDelta, lon + lonDelta
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
