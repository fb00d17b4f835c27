// Package places holds the read-only place-name directory the simulator
// resolves origins and destinations against.
package places

import (
	"sort"

	"github.com/viajaperu/tripsim/internal/core/domain"
	"github.com/viajaperu/tripsim/internal/pkg/geospatial"
)

// StaticDirectory is an immutable name -> place table. Lookups are exact-match;
// what a miss degrades to is up to the caller.
type StaticDirectory struct {
	byName  map[string]domain.Place
	ordered []domain.Place
}

// NewStaticDirectory indexes places by name. Later duplicates win.
func NewStaticDirectory(places []domain.Place) *StaticDirectory {
	d := &StaticDirectory{
		byName: make(map[string]domain.Place, len(places)),
	}
	for _, p := range places {
		d.byName[p.Name] = p
	}
	for _, p := range d.byName {
		d.ordered = append(d.ordered, p)
	}
	sort.Slice(d.ordered, func(i, j int) bool { return d.ordered[i].Name < d.ordered[j].Name })
	return d
}

// Resolve implements tripsim.Directory.
func (d *StaticDirectory) Resolve(name string) (domain.GeoPoint, bool) {
	p, ok := d.byName[name]
	if !ok {
		return domain.GeoPoint{}, false
	}
	return p.Location, true
}

// Get returns the place with the given name.
func (d *StaticDirectory) Get(name string) (domain.Place, bool) {
	p, ok := d.byName[name]
	return p, ok
}

// List returns all places sorted by name.
func (d *StaticDirectory) List() []domain.Place {
	out := make([]domain.Place, len(d.ordered))
	copy(out, d.ordered)
	return out
}

// Len returns the number of places.
func (d *StaticDirectory) Len() int { return len(d.ordered) }

// Nearby returns places within radiusKm of the point, closest first.
func (d *StaticDirectory) Nearby(lat, lon, radiusKm float64, limit int) []domain.Place {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusKm*1000)
	box := domain.Bounds{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}

	var out []domain.Place
	for _, p := range d.ordered {
		if !box.Contains(p.Location) {
			continue
		}
		dist := geospatial.HaversineKm(lat, lon, p.Location.Lat, p.Location.Lon)
		if dist > radiusKm {
			continue
		}
		p.Distance = &dist
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].Distance < *out[j].Distance })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
