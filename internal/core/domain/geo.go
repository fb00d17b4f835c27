package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GeoLineString represents an ordered sequence of geographic coordinates.
type GeoLineString struct {
	Coordinates []GeoPoint `json:"coordinates"`
}

// Len returns the number of points in the line.
func (l GeoLineString) Len() int { return len(l.Coordinates) }

// First returns the first point, or the zero point for an empty line.
func (l GeoLineString) First() GeoPoint {
	if len(l.Coordinates) == 0 {
		return GeoPoint{}
	}
	return l.Coordinates[0]
}

// Last returns the last point, or the zero point for an empty line.
func (l GeoLineString) Last() GeoPoint {
	if len(l.Coordinates) == 0 {
		return GeoPoint{}
	}
	return l.Coordinates[len(l.Coordinates)-1]
}

// Span is the angular extent of a map camera, in degrees.
type Span struct {
	LatDelta float64 `json:"lat_delta"`
	LonDelta float64 `json:"lon_delta"`
}

// ViewportRegion describes a map camera: where it looks and how much it shows.
type ViewportRegion struct {
	Center GeoPoint `json:"center"`
	Span   Span     `json:"span"`
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether p lies inside the box (edges included).
func (b Bounds) Contains(p GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}
