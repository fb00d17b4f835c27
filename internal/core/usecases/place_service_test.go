package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/viajaperu/tripsim/internal/core/domain"
	"github.com/viajaperu/tripsim/internal/core/usecases"
)

func TestPlaceService_SeedWithoutRepo(t *testing.T) {
	svc := usecases.NewPlaceService(nil, nil)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := svc.Get("Otuzco")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Location.Lat != -7.9028 {
		t.Errorf("expected Otuzco lat -7.9028, got %f", p.Location.Lat)
	}
}

func TestPlaceService_Get_NotFound(t *testing.T) {
	svc := usecases.NewPlaceService(nil, nil)
	_, err := svc.Get("Atlantis")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPlaceService_Load_FromRepoFillsCache(t *testing.T) {
	repo := &mockPlaceRepo{
		listFn: func(ctx context.Context) ([]domain.Place, error) {
			return []domain.Place{
				{Name: "Sausal", Location: domain.GeoPoint{Lat: -7.7, Lon: -79.0}, Kind: "city"},
			}, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewPlaceService(repo, cache)

	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get("Sausal"); err != nil {
		t.Errorf("expected Sausal after load: %v", err)
	}
	if _, err := svc.Get("Trujillo"); err == nil {
		t.Error("expected seed to be replaced by the stored table")
	}
	if _, ok := cache.data["places:all"]; !ok {
		t.Error("expected directory to be cached")
	}
}

func TestPlaceService_Load_CacheHitSkipsRepo(t *testing.T) {
	cache := newMockCache()
	data, _ := json.Marshal([]domain.Place{{Name: "Casa Grande", Kind: "city"}})
	cache.data["places:all"] = data

	repo := &mockPlaceRepo{
		listFn: func(ctx context.Context) ([]domain.Place, error) {
			t.Error("repo should not be called on cache hit")
			return nil, nil
		},
	}
	svc := usecases.NewPlaceService(repo, cache)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get("Casa Grande"); err != nil {
		t.Errorf("expected cached place: %v", err)
	}
}

func TestPlaceService_Load_EmptyTableKeepsSeed(t *testing.T) {
	repo := &mockPlaceRepo{
		listFn: func(ctx context.Context) ([]domain.Place, error) { return nil, nil },
	}
	svc := usecases.NewPlaceService(repo, nil)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get("Trujillo"); err != nil {
		t.Errorf("expected seed to survive empty table: %v", err)
	}
}

func TestPlaceService_Load_RepoError(t *testing.T) {
	repo := &mockPlaceRepo{
		listFn: func(ctx context.Context) ([]domain.Place, error) { return nil, errors.New("db down") },
	}
	svc := usecases.NewPlaceService(repo, nil)
	if err := svc.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if _, err := svc.Get("Trujillo"); err != nil {
		t.Errorf("expected seed to survive repo failure: %v", err)
	}
}

func TestPlaceService_List_Pagination(t *testing.T) {
	svc := usecases.NewPlaceService(nil, nil)

	first, total := svc.List(0, 5)
	if total != 16 {
		t.Fatalf("expected 16 seed places, got %d", total)
	}
	if len(first) != 5 {
		t.Fatalf("expected page of 5, got %d", len(first))
	}

	last, _ := svc.List(15, 5)
	if len(last) != 1 {
		t.Errorf("expected 1 place on last page, got %d", len(last))
	}

	none, _ := svc.List(100, 5)
	if len(none) != 0 {
		t.Errorf("expected empty page past the end, got %d", len(none))
	}
}

func TestPlaceService_Nearby_RadiusValidation(t *testing.T) {
	svc := usecases.NewPlaceService(nil, nil)

	for _, r := range []float64{0, -1, 1001} {
		if _, err := svc.Nearby(-8.11, -79.03, r, 10); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("radius %v: expected ErrInvalidInput, got %v", r, err)
		}
	}
}

func TestPlaceService_Nearby(t *testing.T) {
	svc := usecases.NewPlaceService(nil, nil)
	got, err := svc.Nearby(-8.1116, -79.0288, 15, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) == 0 || got[0].Name != "Trujillo" {
		t.Fatalf("expected Trujillo first, got %+v", got)
	}
	if got[0].Distance == nil || *got[0].Distance != 0 {
		t.Errorf("expected zero distance for Trujillo")
	}
}

func TestPlaceService_Upsert(t *testing.T) {
	var stored []domain.Place
	repo := &mockPlaceRepo{
		upsertFn: func(ctx context.Context, place *domain.Place) error {
			stored = append(stored, *place)
			return nil
		},
		listFn: func(ctx context.Context) ([]domain.Place, error) { return stored, nil },
	}
	cache := newMockCache()
	svc := usecases.NewPlaceService(repo, cache)

	err := svc.Upsert(context.Background(), &domain.Place{
		Name:     "  Santiago de Chuco ",
		Location: domain.GeoPoint{Lat: -8.1453, Lon: -78.1733},
		Kind:     "city",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get("Santiago de Chuco"); err != nil {
		t.Errorf("expected trimmed name in directory: %v", err)
	}
	if len(cache.deleted) == 0 || cache.deleted[0] != "places:all" {
		t.Errorf("expected cache invalidation, got %v", cache.deleted)
	}
}

func TestPlaceService_Upsert_Invalid(t *testing.T) {
	svc := usecases.NewPlaceService(&mockPlaceRepo{}, nil)

	cases := []domain.Place{
		{Name: ""},
		{Name: "North", Location: domain.GeoPoint{Lat: 91}},
		{Name: "East", Location: domain.GeoPoint{Lon: 181}},
	}
	for _, p := range cases {
		p := p
		if err := svc.Upsert(context.Background(), &p); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("%q: expected ErrInvalidInput, got %v", p.Name, err)
		}
	}
}
