package view

import (
	"math"
	"testing"

	"github.com/routeblend/routeblend/internal/types"
)

func TestRoundTrip(t *testing.T) {
	states := []State{
		{Scale: 1, PanX: 0, PanY: 0},
		{Scale: 2.5, PanX: 400, PanY: 300},
		{Scale: 0.01, PanX: -120, PanY: 9000},
	}
	points := [][2]float64{{0, 0}, {123.456, -789.01}, {-0.0001, 42}}

	for _, s := range states {
		for _, p := range points {
			sx, sy := s.WorldToScreen(p[0], p[1])
			wx, wy := s.ScreenToWorld(sx, sy)
			if math.Abs(wx-p[0]) > 1e-9 || math.Abs(wy-p[1]) > 1e-9 {
				t.Errorf("round trip (%f,%f) via %+v = (%f,%f)", p[0], p[1], s, wx, wy)
			}
		}
	}
}

func TestZoomAtKeepsAnchorFixed(t *testing.T) {
	s := State{Scale: 1.5, PanX: 100, PanY: 50}
	anchorX, anchorY := 320.0, 240.0

	wx, wy := s.ScreenToWorld(anchorX, anchorY)
	zoomed := s.ZoomAt(anchorX, anchorY, 1.3)

	sx, sy := zoomed.WorldToScreen(wx, wy)
	if math.Abs(sx-anchorX) > 1e-9 || math.Abs(sy-anchorY) > 1e-9 {
		t.Errorf("anchor moved to (%f, %f), want (%f, %f)", sx, sy, anchorX, anchorY)
	}
	if math.Abs(zoomed.Scale-1.95) > 1e-12 {
		t.Errorf("scale = %f, want 1.95", zoomed.Scale)
	}
}

func TestZoomClamped(t *testing.T) {
	s := State{Scale: 50, PanX: 0, PanY: 0}
	if got := s.ZoomAt(0, 0, 1000).Scale; got != MaxZoom {
		t.Errorf("scale = %f, want clamped to %f", got, MaxZoom)
	}

	s = State{Scale: 0.02, PanX: 0, PanY: 0}
	if got := s.ZoomAt(0, 0, 0.0001).Scale; got != MinZoom {
		t.Errorf("scale = %f, want clamped to %f", got, MinZoom)
	}
}

func TestPanBy(t *testing.T) {
	s := State{Scale: 2, PanX: 10, PanY: 20}
	s = s.PanBy(-3, 7)
	if s.PanX != 7 || s.PanY != 27 {
		t.Errorf("pan = (%f, %f), want (7, 27)", s.PanX, s.PanY)
	}
	if s.Scale != 2 {
		t.Errorf("pan changed scale to %f", s.Scale)
	}
}

func TestFitToData(t *testing.T) {
	bounds := types.BoundingBox{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 500}
	s := FitToData(bounds, 800, 600)

	// Width is the limiting axis: 800/1000.
	if math.Abs(s.Scale-0.8) > 1e-12 {
		t.Errorf("scale = %f, want 0.8", s.Scale)
	}

	// The bounds center must land on the canvas center.
	sx, sy := s.WorldToScreen(500, 250)
	if math.Abs(sx-400) > 1e-9 || math.Abs(sy-300) > 1e-9 {
		t.Errorf("bounds center maps to (%f, %f), want (400, 300)", sx, sy)
	}
}

func TestFitToDataCapsScale(t *testing.T) {
	// A tiny dataset must not zoom past MaxFitScale.
	bounds := types.BoundingBox{MinX: 0, MinY: 0, MaxX: 2, MaxY: 2}
	s := FitToData(bounds, 800, 600)
	if s.Scale != MaxFitScale {
		t.Errorf("scale = %f, want capped at %f", s.Scale, MaxFitScale)
	}
}

func TestFitToDataSinglePoint(t *testing.T) {
	// Zero-size bounds: no division by zero, default scale, point centered.
	bounds := types.EmptyBounds().Extend(types.Point{X: 42, Y: -7})
	s := FitToData(bounds, 800, 600)

	if s.Scale != 1 {
		t.Errorf("scale = %f, want default 1", s.Scale)
	}
	sx, sy := s.WorldToScreen(42, -7)
	if math.Abs(sx-400) > 1e-9 || math.Abs(sy-300) > 1e-9 {
		t.Errorf("single point maps to (%f, %f), want canvas center", sx, sy)
	}
}

func TestFitToDataEmpty(t *testing.T) {
	s := FitToData(types.EmptyBounds(), 800, 600)
	if s != Default(800, 600) {
		t.Errorf("empty bounds = %+v, want default view", s)
	}
}
