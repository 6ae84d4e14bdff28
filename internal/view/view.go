// Package view maintains pan/zoom state and converts between world and
// screen space. It is independent of the dataset; the render pipeline and
// picker both consume it.
package view

import (
	"github.com/routeblend/routeblend/internal/types"
)

const (
	// MinZoom and MaxZoom clamp the scale at all times.
	MinZoom = 0.01
	MaxZoom = 100.0

	// MaxFitScale caps how far FitToData zooms into small datasets.
	MaxFitScale = 5.0
)

// State is the current view transform. Scale is world-to-screen
// magnification, PanX/PanY the screen-space offset of the world origin.
type State struct {
	Scale float64
	PanX  float64
	PanY  float64
}

// Default returns the view centered on a canvas of the given size at
// scale 1, with the world origin at the canvas center.
func Default(canvasW, canvasH float64) State {
	return State{Scale: 1, PanX: canvasW / 2, PanY: canvasH / 2}
}

// WorldToScreen projects a world position into screen pixels.
func (s State) WorldToScreen(x, y float64) (float64, float64) {
	return x*s.Scale + s.PanX, y*s.Scale + s.PanY
}

// ScreenToWorld inverts WorldToScreen.
func (s State) ScreenToWorld(sx, sy float64) (float64, float64) {
	return (sx - s.PanX) / s.Scale, (sy - s.PanY) / s.Scale
}

// ZoomAt applies a multiplicative zoom factor anchored at a screen position:
// the world point under the anchor stays under it after the zoom.
func (s State) ZoomAt(sx, sy, factor float64) State {
	wx, wy := s.ScreenToWorld(sx, sy)
	s.Scale = clampScale(s.Scale * factor)
	s.PanX = sx - wx*s.Scale
	s.PanY = sy - wy*s.Scale
	return s
}

// PanBy shifts the view by a screen-space drag delta.
func (s State) PanBy(dx, dy float64) State {
	s.PanX += dx
	s.PanY += dy
	return s
}

// FitToData frames the bounding box of all loaded points on the canvas.
// A degenerate box (all points identical) falls back to the default scale
// with that point centered; an empty box yields the default view.
func FitToData(bounds types.BoundingBox, canvasW, canvasH float64) State {
	if bounds.IsEmpty() {
		return Default(canvasW, canvasH)
	}

	center := bounds.Center()
	w, h := bounds.Width(), bounds.Height()

	scale := 1.0
	if w > 0 || h > 0 {
		scale = MaxFitScale
		if w > 0 {
			scale = min(scale, canvasW/w)
		}
		if h > 0 {
			scale = min(scale, canvasH/h)
		}
	}
	scale = clampScale(scale)

	return State{
		Scale: scale,
		PanX:  canvasW/2 - center.X*scale,
		PanY:  canvasH/2 - center.Y*scale,
	}
}

func clampScale(v float64) float64 {
	if v < MinZoom {
		return MinZoom
	}
	if v > MaxZoom {
		return MaxZoom
	}
	return v
}
