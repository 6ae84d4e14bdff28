package geom

import (
	"math"
	"testing"

	"github.com/routeblend/routeblend/internal/types"
)

func rawPoints(latlng ...float64) []types.RawPoint {
	out := make([]types.RawPoint, 0, len(latlng)/2)
	for i := 0; i+1 < len(latlng); i += 2 {
		out = append(out, types.RawPoint{Lat: latlng[i], Lon: latlng[i+1]})
	}
	return out
}

func TestNormalizeOriginIsZero(t *testing.T) {
	tests := []struct {
		name string
		raw  []types.RawPoint
	}{
		{"hannover loop", rawPoints(52.37, 9.73, 52.38, 9.74, 52.375, 9.75)},
		{"southern hemisphere", rawPoints(-33.9, 18.4, -33.91, 18.41)},
		{"across meridian", rawPoints(51.5, -0.1, 51.5, 0.1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track, ok := Normalize(types.Activity{ID: "a"}, tt.raw)
			if !ok {
				t.Fatal("expected a track")
			}
			first := track.Points[0]
			if first.X != 0 || first.Y != 0 {
				t.Errorf("first point = (%f, %f), want (0, 0)", first.X, first.Y)
			}
			if len(track.Points) != len(tt.raw) {
				t.Errorf("point count = %d, want %d", len(track.Points), len(tt.raw))
			}
		})
	}
}

func TestNormalizeAxes(t *testing.T) {
	// Moving north-east: x positive (east), y negative (up on screen).
	track, ok := Normalize(types.Activity{}, rawPoints(52.0, 9.0, 52.01, 9.02))
	if !ok {
		t.Fatal("expected a track")
	}

	p := track.Points[1]
	wantX := 0.02 * Scale
	wantY := -0.01 * Scale
	if math.Abs(p.X-wantX) > 1e-9 {
		t.Errorf("x = %f, want %f", p.X, wantX)
	}
	if math.Abs(p.Y-wantY) > 1e-9 {
		t.Errorf("y = %f, want %f", p.Y, wantY)
	}
}

func TestNormalizeTooShort(t *testing.T) {
	if _, ok := Normalize(types.Activity{}, nil); ok {
		t.Error("nil stream should not produce a track")
	}
	if _, ok := Normalize(types.Activity{}, rawPoints(52.0, 9.0)); ok {
		t.Error("single-point stream should not produce a track")
	}
}

func TestNormalizeDistanceFromStreamChannel(t *testing.T) {
	raw := rawPoints(52.0, 9.0, 52.01, 9.0)
	d := 1234.5
	raw[1].Distance = &d

	track, _ := Normalize(types.Activity{}, raw)
	if track.Distance != 1234.5 {
		t.Errorf("distance = %f, want 1234.5", track.Distance)
	}
}

func TestNormalizeDistanceFallback(t *testing.T) {
	// 0.01 degrees of latitude is roughly 1.11 km.
	track, _ := Normalize(types.Activity{}, rawPoints(52.0, 9.0, 52.01, 9.0))
	if track.Distance < 1000 || track.Distance > 1300 {
		t.Errorf("great-circle fallback distance = %f, want ~1112", track.Distance)
	}
}

func TestNormalizeKeepsProvidedDistance(t *testing.T) {
	track, _ := Normalize(types.Activity{Distance: 5000}, rawPoints(52.0, 9.0, 52.01, 9.0))
	if track.Distance != 5000 {
		t.Errorf("distance = %f, want the API-provided 5000", track.Distance)
	}
}

func TestSimplifyTrack(t *testing.T) {
	// Collinear middle points collapse; endpoints survive.
	track := types.Track{Points: []types.Point{
		{X: 0, Y: 0},
		{X: 10, Y: 0.001},
		{X: 20, Y: -0.001},
		{X: 30, Y: 0},
	}}

	got := SimplifyTrack(track, 1.0)
	if len(got.Points) != 2 {
		t.Fatalf("simplified to %d points, want 2", len(got.Points))
	}
	if got.Points[0] != (types.Point{X: 0, Y: 0}) {
		t.Errorf("origin anchor lost: %v", got.Points[0])
	}

	// Zero tolerance is a no-op.
	same := SimplifyTrack(track, 0)
	if len(same.Points) != 4 {
		t.Errorf("tolerance 0 should not simplify, got %d points", len(same.Points))
	}
}
