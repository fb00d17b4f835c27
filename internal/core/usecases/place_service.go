package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/viajaperu/tripsim/internal/core/domain"
	"github.com/viajaperu/tripsim/internal/core/places"
	"github.com/viajaperu/tripsim/internal/core/ports"
	"github.com/viajaperu/tripsim/internal/pkg/metrics"
)

// PlacesCacheKey is where the serialized directory is cached.
const PlacesCacheKey = "places:all"

// PlaceService owns the place directory the simulators resolve against.
type PlaceService struct {
	places ports.PlaceRepository
	cache  ports.CacheService

	mu  sync.RWMutex
	dir *places.StaticDirectory
}

// NewPlaceService starts from the built-in seed table; call Load to pick up the database.
// repo and cache may be nil.
func NewPlaceService(repo ports.PlaceRepository, cache ports.CacheService) *PlaceService {
	return &PlaceService{
		places: repo,
		cache:  cache,
		dir:    places.NewStaticDirectory(places.Seed()),
	}
}

// Load replaces the directory with the stored places (cache first, then repository).
// On failure the current directory is kept.
func (s *PlaceService) Load(ctx context.Context) error {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, PlacesCacheKey); err == nil {
			var list []domain.Place
			if err := json.Unmarshal(data, &list); err == nil && len(list) > 0 {
				metrics.CacheHits.WithLabelValues("places").Inc()
				s.swap(list)
				return nil
			}
		}
		metrics.CacheMisses.WithLabelValues("places").Inc()
	}

	if s.places == nil {
		return nil
	}

	list, err := s.places.List(ctx)
	if err != nil {
		return fmt.Errorf("list places: %w", err)
	}
	if len(list) == 0 {
		slog.Warn("place table is empty, keeping built-in directory")
		return nil
	}
	s.swap(list)

	// Places change rarely; 10 minutes is plenty.
	if s.cache != nil {
		if data, err := json.Marshal(list); err == nil {
			_ = s.cache.Set(ctx, PlacesCacheKey, data, 600)
		}
	}
	return nil
}

func (s *PlaceService) swap(list []domain.Place) {
	dir := places.NewStaticDirectory(list)
	s.mu.Lock()
	s.dir = dir
	s.mu.Unlock()
	slog.Info("place directory loaded", "places", dir.Len())
}

// Directory returns the current immutable directory.
func (s *PlaceService) Directory() *places.StaticDirectory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir
}

// List returns one page of places and the total count.
func (s *PlaceService) List(offset, limit int) ([]domain.Place, int) {
	all := s.Directory().List()
	return page(all, offset, limit), len(all)
}

// Get returns a place by exact name.
func (s *PlaceService) Get(name string) (*domain.Place, error) {
	p, ok := s.Directory().Get(name)
	if !ok {
		return nil, fmt.Errorf("place %q: %w", name, domain.ErrNotFound)
	}
	return &p, nil
}

// Nearby returns places within radiusKm of a point.
func (s *PlaceService) Nearby(lat, lon, radiusKm float64, limit int) ([]domain.Place, error) {
	if radiusKm <= 0 || radiusKm > 1000 {
		return nil, fmt.Errorf("radius must be between 0 and 1000 km: %w", domain.ErrInvalidInput)
	}
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	return s.Directory().Nearby(lat, lon, radiusKm, limit), nil
}

// Upsert stores a place and refreshes the directory.
func (s *PlaceService) Upsert(ctx context.Context, p *domain.Place) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("place name is required: %w", domain.ErrInvalidInput)
	}
	if p.Location.Lat < -90 || p.Location.Lat > 90 || p.Location.Lon < -180 || p.Location.Lon > 180 {
		return fmt.Errorf("coordinates out of range: %w", domain.ErrInvalidInput)
	}
	if s.places == nil {
		return fmt.Errorf("place repository: %w", domain.ErrUnavailable)
	}
	if err := s.places.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert place: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, PlacesCacheKey)
	}
	return s.Load(ctx)
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
