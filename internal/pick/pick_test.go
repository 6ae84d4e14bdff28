package pick

import (
	"math"
	"testing"

	"github.com/routeblend/routeblend/internal/render"
	"github.com/routeblend/routeblend/internal/style"
	"github.com/routeblend/routeblend/internal/types"
	"github.com/routeblend/routeblend/internal/view"
)

func buildBuffer(t *testing.T, tracks []types.Track, segments []types.Segment, filters *style.Filters) *render.Buffer {
	t.Helper()
	if filters == nil {
		filters = style.NewFilters()
	}
	return render.Build(segments, tracks, filters, style.DefaultConfig())
}

func twoTracks() ([]types.Track, []types.Segment) {
	tracks := []types.Track{
		{Activity: types.Activity{ID: "A", Type: "Run"}, Points: []types.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}},
		{Activity: types.Activity{ID: "B", Type: "Ride"}, Points: []types.Point{{X: 0, Y: 50}, {X: 100, Y: 50}}},
	}
	segments := []types.Segment{
		{P1: tracks[0].Points[0], P2: tracks[0].Points[1], Overlap: 1, TrackID: "A", TrackIdx: 0},
		{P1: tracks[1].Points[0], P2: tracks[1].Points[1], Overlap: 1, TrackID: "B", TrackIdx: 1},
	}
	return tracks, segments
}

func TestPickAtMidpoint(t *testing.T) {
	tracks, segments := twoTracks()
	buf := buildBuffer(t, tracks, segments, nil)
	vs := view.State{Scale: 1, PanX: 0, PanY: 0}

	// Click exactly on A's midpoint.
	hit, ok := At(buf, vs, 50, 0, 10)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.TrackID != "A" {
		t.Errorf("hit %s, want A", hit.TrackID)
	}
	if hit.Distance > 1e-12 {
		t.Errorf("distance = %f, want 0", hit.Distance)
	}
}

func TestPickNearestWins(t *testing.T) {
	tracks, segments := twoTracks()
	buf := buildBuffer(t, tracks, segments, nil)
	// Zoomed out so the 10px tolerance covers both tracks in world units.
	vs := view.State{Scale: 0.1, PanX: 0, PanY: 0}

	// World (50, 20): 20 from A, 30 from B. Screen = (5, 2).
	hit, ok := At(buf, vs, 5, 2, 10)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.TrackID != "A" {
		t.Errorf("hit %s, want the nearer A", hit.TrackID)
	}
}

func TestPickToleranceScalesWithZoom(t *testing.T) {
	tracks, segments := twoTracks()
	buf := buildBuffer(t, tracks, segments, nil)

	// 5 world units from A. At scale 1 the 10px tolerance reaches it.
	if _, ok := At(buf, view.State{Scale: 1}, 50, 5, 10); !ok {
		t.Error("expected a hit at scale 1")
	}
	// At scale 4 the same click is 20px off screen-wise, beyond tolerance.
	vs := view.State{Scale: 4}
	sx, sy := vs.WorldToScreen(50, 5)
	if _, ok := At(buf, vs, sx, sy, 10); ok {
		t.Error("expected no hit once zoomed in")
	}
}

func TestPickRespectsFilters(t *testing.T) {
	tracks, segments := twoTracks()
	filters := style.NewFilters()
	filters.Set("Run", false)
	buf := buildBuffer(t, tracks, segments, filters)

	// A is filtered out, so a click on A's line must fall through to
	// nothing (B is 50 world units away).
	if hit, ok := At(buf, view.State{Scale: 1}, 50, 0, 10); ok {
		t.Errorf("picked filtered-out track %s", hit.TrackID)
	}
}

func TestPickMiss(t *testing.T) {
	tracks, segments := twoTracks()
	buf := buildBuffer(t, tracks, segments, nil)

	if _, ok := At(buf, view.State{Scale: 1}, 500, 500, 10); ok {
		t.Error("expected a miss far away from all segments")
	}
}

func TestPickEmptyBuffer(t *testing.T) {
	if _, ok := At(&render.Buffer{}, view.State{Scale: 1}, 0, 0, 10); ok {
		t.Error("expected no hit on empty buffer")
	}
}

func TestPointSegmentDistance(t *testing.T) {
	a := types.Point{X: 0, Y: 0}
	b := types.Point{X: 10, Y: 0}

	tests := []struct {
		name   string
		px, py float64
		want   float64
	}{
		{"on segment", 5, 0, 0},
		{"above middle", 5, 3, 3},
		{"beyond end clamps to endpoint", 14, 3, 5},
		{"before start clamps to start", -3, 4, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pointSegmentDistance(tt.px, tt.py, a, b)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("distance = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestPointSegmentDistanceDegenerate(t *testing.T) {
	// Zero-length segment measures plain point distance.
	p := types.Point{X: 2, Y: 2}
	if got := pointSegmentDistance(5, 6, p, p); math.Abs(got-5) > 1e-12 {
		t.Errorf("distance = %f, want 5", got)
	}
}
