// Package pick resolves a screen click back to the track that owns the
// nearest renderable segment.
package pick

import (
	"math"

	"github.com/routeblend/routeblend/internal/render"
	"github.com/routeblend/routeblend/internal/types"
	"github.com/routeblend/routeblend/internal/view"
)

// DefaultTolerancePx is the screen-space pick radius.
const DefaultTolerancePx = 10.0

// Hit is a successful pick.
type Hit struct {
	TrackID  string
	TrackIdx int
	Distance float64 // world units from click to segment
}

// At converts the click to world space and linearly scans the renderable
// segments for the closest one within tolerance. The tolerance is fixed in
// screen pixels, so it shrinks in world units as the view zooms in. Ties go
// to the first segment encountered. Returns ok=false when nothing is close
// enough.
//
// Clicks are human-rate events; the linear scan is deliberate and keeps the
// buffer free of any extra pick acceleration structure.
func At(buf *render.Buffer, vs view.State, sx, sy, tolerancePx float64) (Hit, bool) {
	if buf.Empty() || vs.Scale <= 0 {
		return Hit{}, false
	}
	if tolerancePx <= 0 {
		tolerancePx = DefaultTolerancePx
	}

	wx, wy := vs.ScreenToWorld(sx, sy)
	tolerance := tolerancePx / vs.Scale

	best := Hit{Distance: math.Inf(1)}
	found := false
	for _, seg := range buf.Segments {
		d := pointSegmentDistance(wx, wy, seg.P1, seg.P2)
		if d <= tolerance && d < best.Distance {
			best = Hit{TrackID: seg.TrackID, TrackIdx: seg.TrackIdx, Distance: d}
			found = true
		}
	}
	return best, found
}

// pointSegmentDistance projects the point onto the infinite line through the
// segment, clamps the projection parameter to [0,1] and measures Euclidean
// distance to the clamped point.
func pointSegmentDistance(px, py float64, a, b types.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-a.X, py-a.Y)
	}

	t := ((px-a.X)*dx + (py-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))

	cx := a.X + t*dx
	cy := a.Y + t*dy
	return math.Hypot(px-cx, py-cy)
}
