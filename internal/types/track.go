package types

// Point is a normalized position in the shared planar world space.
// It is computed once when a track is loaded and immutable thereafter.
type Point struct {
	X float64
	Y float64
}

// Track is one activity's ordered normalized point sequence plus metadata.
// A Track always has at least two points; shorter streams never become tracks.
type Track struct {
	Activity
	Points []Point
}

// SegmentCount returns the number of line segments the track produces.
func (t *Track) SegmentCount() int {
	if len(t.Points) < 2 {
		return 0
	}
	return len(t.Points) - 1
}

// Segment is the line between two consecutive points of one track,
// annotated with the number of distinct tracks passing near its midpoint.
// Segments are derived state: they are regenerated whenever the track set
// or the classification changes.
type Segment struct {
	P1       Point
	P2       Point
	Overlap  int    // distinct tracks near the midpoint, including the owner
	TrackID  string // owning activity id
	TrackIdx int    // index into the engine's track slice
}

// Midpoint returns the segment midpoint, the sample position used for
// overlap classification.
func (s Segment) Midpoint() Point {
	return Point{
		X: (s.P1.X + s.P2.X) / 2,
		Y: (s.P1.Y + s.P2.Y) / 2,
	}
}
