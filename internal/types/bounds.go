package types

import (
	"fmt"
	"math"
)

// BoundingBox is an axis-aligned rectangle in world space.
type BoundingBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// EmptyBounds returns a bounding box that expands to fit the first point
// added to it.
func EmptyBounds() BoundingBox {
	return BoundingBox{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
}

// IsEmpty reports whether the box has never been extended.
func (b BoundingBox) IsEmpty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

// Extend grows the box to include p.
func (b BoundingBox) Extend(p Point) BoundingBox {
	return BoundingBox{
		MinX: math.Min(b.MinX, p.X),
		MinY: math.Min(b.MinY, p.Y),
		MaxX: math.Max(b.MaxX, p.X),
		MaxY: math.Max(b.MaxY, p.Y),
	}
}

// Union merges two boxes.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	if b.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return b
	}
	return BoundingBox{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// Width returns the horizontal extent of the box in world units.
func (b BoundingBox) Width() float64 {
	return b.MaxX - b.MinX
}

// Height returns the vertical extent of the box in world units.
func (b BoundingBox) Height() float64 {
	return b.MaxY - b.MinY
}

// Center returns the center point of the box.
func (b BoundingBox) Center() Point {
	return Point{
		X: (b.MinX + b.MaxX) / 2,
		Y: (b.MinY + b.MaxY) / 2,
	}
}

// String returns a human-readable representation of the box.
func (b BoundingBox) String() string {
	return fmt.Sprintf("bbox(%.2f,%.2f,%.2f,%.2f)", b.MinX, b.MinY, b.MaxX, b.MaxY)
}

// TrackBounds returns the bounding box of every point of every track.
func TrackBounds(tracks []Track) BoundingBox {
	b := EmptyBounds()
	for i := range tracks {
		for _, p := range tracks[i].Points {
			b = b.Extend(p)
		}
	}
	return b
}
