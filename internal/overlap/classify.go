package overlap

import (
	"github.com/routeblend/routeblend/internal/types"
)

// Classify walks every track's consecutive point pairs and assigns each
// resulting segment the number of distinct tracks near its midpoint,
// including the segment's own track. The minimum overlap is therefore 1.
//
// The midpoint is a sample, not a segment-vs-segment intersection test: long
// segments can over- or under-count near their endpoints. That imprecision is
// part of the contract; classification cost stays linear in point count.
func Classify(tracks []types.Track, idx *Index) []types.Segment {
	var total int
	for i := range tracks {
		total += tracks[i].SegmentCount()
	}

	segments := make([]types.Segment, 0, total)
	for ti := range tracks {
		track := &tracks[ti]
		for i := 1; i < len(track.Points); i++ {
			seg := types.Segment{
				P1:       track.Points[i-1],
				P2:       track.Points[i],
				TrackID:  track.ID,
				TrackIdx: ti,
			}
			mid := seg.Midpoint()
			seg.Overlap = idx.QueryCount(mid.X, mid.Y)
			// A segment spanning more than the query neighborhood can miss
			// even its own endpoints at the midpoint sample. The owning
			// track is still there, so the count never drops below 1.
			if seg.Overlap < 1 {
				seg.Overlap = 1
			}
			segments = append(segments, seg)
		}
	}
	return segments
}
