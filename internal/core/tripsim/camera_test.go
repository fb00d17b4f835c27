package tripsim_test

import (
	"math"
	"testing"

	"github.com/viajaperu/tripsim/internal/core/domain"
	"github.com/viajaperu/tripsim/internal/core/tripsim"
)

func region(lat, lon float64) domain.ViewportRegion {
	return domain.ViewportRegion{Span: domain.Span{LatDelta: lat, LonDelta: lon}}
}

func TestOverviewRegion_Scaled(t *testing.T) {
	r := tripsim.OverviewRegion(peru["Trujillo"], peru["Lima"])
	if math.Abs(r.Span.LatDelta-math.Abs(-8.1116+12.0464)*3.2) > 1e-9 {
		t.Errorf("unexpected lat span %f", r.Span.LatDelta)
	}
	if math.Abs(r.Span.LonDelta-math.Abs(-79.0288+77.0428)*3.2) > 1e-9 {
		t.Errorf("unexpected lon span %f", r.Span.LonDelta)
	}
	if math.Abs(r.Center.Lat-(-10.079)) > 1e-9 {
		t.Errorf("unexpected center %+v", r.Center)
	}
}

func TestOverviewRegion_MinimumSpan(t *testing.T) {
	a := domain.GeoPoint{Lat: -8.11, Lon: -79.02}
	b := domain.GeoPoint{Lat: -8.10, Lon: -79.01}
	r := tripsim.OverviewRegion(a, b)
	if r.Span.LatDelta != 0.6 || r.Span.LonDelta != 0.6 {
		t.Errorf("expected 0.6 minimum span, got %+v", r.Span)
	}
}

func TestFollowRegion(t *testing.T) {
	p := domain.GeoPoint{Lat: -8, Lon: -79}
	r := tripsim.FollowRegion(p)
	if r.Center != p || r.Span.LatDelta != 0.15 || r.Span.LonDelta != 0.15 {
		t.Errorf("unexpected follow region %+v", r)
	}
}

func TestZoom_RoundTripInterior(t *testing.T) {
	start := region(0.6, 1.2)
	got := tripsim.ZoomOut(tripsim.ZoomIn(start))
	if got.Span != start.Span {
		t.Errorf("expected %+v, got %+v", start.Span, got.Span)
	}
}

func TestZoomIn_FloorClamp(t *testing.T) {
	got := tripsim.ZoomIn(region(0.08, 0.06))
	if got.Span.LatDelta != 0.05 || got.Span.LonDelta != 0.05 {
		t.Errorf("expected 0.05 floor, got %+v", got.Span)
	}
	back := tripsim.ZoomOut(got)
	if back.Span.LatDelta != 0.1 {
		t.Errorf("clamped zoom should not round trip, got %+v", back.Span)
	}
}

func TestZoomOut_CeilingClamp(t *testing.T) {
	got := tripsim.ZoomOut(region(3, 4))
	if got.Span.LatDelta != 5 || got.Span.LonDelta != 5 {
		t.Errorf("expected 5.0 ceiling, got %+v", got.Span)
	}
	back := tripsim.ZoomIn(got)
	if back.Span.LatDelta != 2.5 {
		t.Errorf("clamped zoom should not round trip, got %+v", back.Span)
	}
}

func TestParseCameraOp(t *testing.T) {
	for _, s := range []string{"overview", "follow", "zoom-in", "zoom-out"} {
		if _, err := tripsim.ParseCameraOp(s); err != nil {
			t.Errorf("%s: unexpected error %v", s, err)
		}
	}
	if _, err := tripsim.ParseCameraOp("tilt"); err == nil {
		t.Error("expected error for unknown op")
	}
}
