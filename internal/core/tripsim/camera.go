package tripsim

import (
	"fmt"
	"math"

	"github.com/viajaperu/tripsim/internal/core/domain"
	"github.com/viajaperu/tripsim/internal/pkg/geospatial"
)

const (
	overviewScale   = 3.2
	overviewMinSpan = 0.6
	followSpan      = 0.15
	zoomMinSpan     = 0.05
	zoomMaxSpan     = 5.0
)

// CameraOp names a viewport adjustment.
type CameraOp string

const (
	CameraOverview CameraOp = "overview"
	CameraFollow   CameraOp = "follow"
	CameraZoomIn   CameraOp = "zoom-in"
	CameraZoomOut  CameraOp = "zoom-out"
)

// ParseCameraOp validates an operation name.
func ParseCameraOp(s string) (CameraOp, error) {
	switch op := CameraOp(s); op {
	case CameraOverview, CameraFollow, CameraZoomIn, CameraZoomOut:
		return op, nil
	}
	return "", fmt.Errorf("unknown camera operation %q: %w", s, domain.ErrInvalidInput)
}

// OverviewRegion frames both trip endpoints.
func OverviewRegion(a, b domain.GeoPoint) domain.ViewportRegion {
	lat, lon := geospatial.Midpoint(a.Lat, a.Lon, b.Lat, b.Lon)
	return domain.ViewportRegion{
		Center: domain.GeoPoint{Lat: lat, Lon: lon},
		Span: domain.Span{
			LatDelta: math.Max(math.Abs(a.Lat-b.Lat)*overviewScale, overviewMinSpan),
			LonDelta: math.Max(math.Abs(a.Lon-b.Lon)*overviewScale, overviewMinSpan),
		},
	}
}

// FollowRegion is a tight frame centred on the vehicle.
func FollowRegion(vehicle domain.GeoPoint) domain.ViewportRegion {
	return domain.ViewportRegion{
		Center: vehicle,
		Span:   domain.Span{LatDelta: followSpan, LonDelta: followSpan},
	}
}

// ZoomIn halves the span, never below 0.05°.
func ZoomIn(r domain.ViewportRegion) domain.ViewportRegion {
	r.Span.LatDelta = math.Max(r.Span.LatDelta/2, zoomMinSpan)
	r.Span.LonDelta = math.Max(r.Span.LonDelta/2, zoomMinSpan)
	return r
}

// ZoomOut doubles the span, never above 5°.
func ZoomOut(r domain.ViewportRegion) domain.ViewportRegion {
	r.Span.LatDelta = math.Min(r.Span.LatDelta*2, zoomMaxSpan)
	r.Span.LonDelta = math.Min(r.Span.LonDelta*2, zoomMaxSpan)
	return r
}
