package places

import "github.com/viajaperu/tripsim/internal/core/domain"

// Seed is the built-in directory used when no database is configured.
func Seed() []domain.Place {
	return []domain.Place{
		// Cities served by the intercity network.
		{Name: "Trujillo", Location: domain.GeoPoint{Lat: -8.1116, Lon: -79.0288}, Kind: "city", Region: "La Libertad"},
		{Name: "Otuzco", Location: domain.GeoPoint{Lat: -7.9028, Lon: -78.5686}, Kind: "city", Region: "La Libertad"},
		{Name: "Huamachuco", Location: domain.GeoPoint{Lat: -7.8153, Lon: -78.0486}, Kind: "city", Region: "La Libertad"},
		{Name: "Pacasmayo", Location: domain.GeoPoint{Lat: -7.4006, Lon: -79.5714}, Kind: "city", Region: "La Libertad"},
		{Name: "Chiclayo", Location: domain.GeoPoint{Lat: -6.7714, Lon: -79.8409}, Kind: "city", Region: "Lambayeque"},
		{Name: "Piura", Location: domain.GeoPoint{Lat: -5.1945, Lon: -80.6328}, Kind: "city", Region: "Piura"},
		{Name: "Cajamarca", Location: domain.GeoPoint{Lat: -7.1638, Lon: -78.5003}, Kind: "city", Region: "Cajamarca"},
		{Name: "Chimbote", Location: domain.GeoPoint{Lat: -9.0745, Lon: -78.5936}, Kind: "city", Region: "Áncash"},
		{Name: "Huaraz", Location: domain.GeoPoint{Lat: -9.5278, Lon: -77.5278}, Kind: "city", Region: "Áncash"},
		{Name: "Lima", Location: domain.GeoPoint{Lat: -12.0464, Lon: -77.0428}, Kind: "city", Region: "Lima"},

		// Excursion destinations.
		{Name: "Huanchaco", Location: domain.GeoPoint{Lat: -8.0794, Lon: -79.1214}, Kind: "tourist", Region: "La Libertad"},
		{Name: "Chan Chan", Location: domain.GeoPoint{Lat: -8.1059, Lon: -79.0747}, Kind: "tourist", Region: "La Libertad"},
		{Name: "Huacas del Sol y de la Luna", Location: domain.GeoPoint{Lat: -8.1336, Lon: -78.9919}, Kind: "tourist", Region: "La Libertad"},
		{Name: "El Brujo", Location: domain.GeoPoint{Lat: -7.9153, Lon: -79.3036}, Kind: "tourist", Region: "La Libertad"},
		{Name: "Marcahuamachuco", Location: domain.GeoPoint{Lat: -7.8061, Lon: -78.0869}, Kind: "tourist", Region: "La Libertad"},
		{Name: "Puerto Chicama", Location: domain.GeoPoint{Lat: -7.6967, Lon: -79.4394}, Kind: "tourist", Region: "La Libertad"},
	}
}
