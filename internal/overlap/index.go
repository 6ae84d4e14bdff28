// Package overlap detects spatial co-occurrence of tracks with a uniform
// proximity grid. Two points count as overlapping when they fall within one
// grid cell of each other in either axis; grid adjacency, not a true
// Euclidean radius, is the proximity test. That keeps queries O(1) amortized
// instead of pairwise over all points.
package overlap

import (
	"math"

	"github.com/routeblend/routeblend/internal/types"
)

// DefaultProx is the grid cell size in world units.
const DefaultProx = 50.0

// CellKey identifies one grid cell.
type CellKey struct {
	X int
	Y int
}

// Index maps grid cells to the set of tracks with at least one normalized
// point in that cell. Occupancy is tracked at track granularity: a track
// visiting the same cell twice counts once.
type Index struct {
	cells map[CellKey]map[string]struct{}
	prox  float64
}

// NewIndex creates an empty index with the given cell size.
// A non-positive size falls back to DefaultProx.
func NewIndex(prox float64) *Index {
	if prox <= 0 {
		prox = DefaultProx
	}
	return &Index{
		cells: make(map[CellKey]map[string]struct{}),
		prox:  prox,
	}
}

// CellSize returns the grid cell size in world units.
func (idx *Index) CellSize() float64 { return idx.prox }

// Cells returns the number of occupied grid cells.
func (idx *Index) Cells() int { return len(idx.cells) }

func (idx *Index) key(x, y float64) CellKey {
	return CellKey{
		X: int(math.Floor(x / idx.prox)),
		Y: int(math.Floor(y / idx.prox)),
	}
}

// Insert records trackID as present in the cell containing (x, y).
// Idempotent per (cell, track) pair.
func (idx *Index) Insert(trackID string, x, y float64) {
	k := idx.key(x, y)
	set, ok := idx.cells[k]
	if !ok {
		set = make(map[string]struct{})
		idx.cells[k] = set
	}
	set[trackID] = struct{}{}
}

// InsertTrack records every point of the track.
func (idx *Index) InsertTrack(track *types.Track) {
	for _, p := range track.Points {
		idx.Insert(track.ID, p.X, p.Y)
	}
}

// Query returns the distinct track ids present in the 3x3 cell block around
// (x, y).
func (idx *Index) Query(x, y float64) map[string]struct{} {
	center := idx.key(x, y)
	found := make(map[string]struct{})
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			k := CellKey{X: center.X + dx, Y: center.Y + dy}
			for id := range idx.cells[k] {
				found[id] = struct{}{}
			}
		}
	}
	return found
}

// QueryCount returns the number of distinct tracks near (x, y) without
// materializing the id set.
func (idx *Index) QueryCount(x, y float64) int {
	return len(idx.Query(x, y))
}

// Build indexes every normalized point of every track.
func Build(tracks []types.Track, prox float64) *Index {
	idx := NewIndex(prox)
	for i := range tracks {
		idx.InsertTrack(&tracks[i])
	}
	return idx
}
