// Package render turns classified segments into flat vertex buffers and
// rasterizes them under the current view transform.
package render

import (
	"github.com/routeblend/routeblend/internal/style"
	"github.com/routeblend/routeblend/internal/types"
)

// Buffer holds the flattened render attributes of the currently visible
// segments: two vertices per segment, both carrying the same color and
// thickness, plus the owning track index for picking. It is rebuilt when the
// dataset or the filter set changes, never per frame.
type Buffer struct {
	Positions []float32 // x,y per vertex
	Colors    []float32 // r,g,b per vertex
	Thickness []float32 // per vertex, both vertices of a segment identical
	TrackIdx  []int32   // per vertex
	Indices   []uint32  // monotonically increasing pair per segment

	// Segments is the filter-passing subset backing the buffer, in emission
	// order. The picker scans exactly this slice.
	Segments []types.Segment
}

// VertexCount returns the number of vertices in the buffer.
func (b *Buffer) VertexCount() int {
	return len(b.Positions) / 2
}

// SegmentCount returns the number of renderable segments.
func (b *Buffer) SegmentCount() int {
	return len(b.Segments)
}

// Empty reports whether there is nothing to draw.
func (b *Buffer) Empty() bool {
	return b == nil || len(b.Indices) == 0
}

// Build flattens the filter-passing segments into a Buffer. The track slice
// resolves each segment's activity type for filtering; segment overlap
// values are taken as stored, so toggling a filter changes visibility only.
func Build(segments []types.Segment, tracks []types.Track, filters *style.Filters, cfg style.Config) *Buffer {
	buf := &Buffer{}

	for _, seg := range segments {
		if seg.TrackIdx < 0 || seg.TrackIdx >= len(tracks) {
			continue
		}
		if filters != nil && !filters.Enabled(tracks[seg.TrackIdx].Type) {
			continue
		}

		thickness, color := cfg.Map(seg.Overlap)
		base := uint32(buf.VertexCount())

		for _, p := range [2]types.Point{seg.P1, seg.P2} {
			buf.Positions = append(buf.Positions, float32(p.X), float32(p.Y))
			buf.Colors = append(buf.Colors, float32(color[0]), float32(color[1]), float32(color[2]))
			buf.Thickness = append(buf.Thickness, float32(thickness))
			buf.TrackIdx = append(buf.TrackIdx, int32(seg.TrackIdx))
		}
		buf.Indices = append(buf.Indices, base, base+1)
		buf.Segments = append(buf.Segments, seg)
	}

	return buf
}
