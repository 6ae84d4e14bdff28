package render

import (
	"image"

	"github.com/gogpu/gg"

	"github.com/routeblend/routeblend/internal/view"
)

// Background is the frame clear color.
var Background = gg.RGB(0.96, 0.96, 0.94)

// Frame rasterizes the buffer under the given view transform onto a fresh
// canvas. It only reads the buffer and view snapshot it is handed, so it can
// run against a dataset that is being replaced concurrently.
//
// Segments are stroked individually with their own width, so overlap
// emphasis gets true variable-width lines (the stroker expands each segment
// to a screen-space quad) rather than a single global line width.
func Frame(buf *Buffer, vs view.State, width, height int) image.Image {
	dc := gg.NewContext(width, height)
	defer dc.Close()

	dc.ClearWithColor(Background)
	if buf.Empty() {
		return dc.Image()
	}

	for i, seg := range buf.Segments {
		x1, y1 := vs.WorldToScreen(seg.P1.X, seg.P1.Y)
		x2, y2 := vs.WorldToScreen(seg.P2.X, seg.P2.Y)

		// Both vertices carry identical attributes; read the first.
		ci := i * 2 * 3
		dc.SetRGB(float64(buf.Colors[ci]), float64(buf.Colors[ci+1]), float64(buf.Colors[ci+2]))
		dc.SetLineWidth(float64(buf.Thickness[i*2]))
		dc.DrawLine(x1, y1, x2, y2)
		if err := dc.Stroke(); err != nil {
			// A failed stroke leaves that segment undrawn; the frame as a
			// whole is still valid.
			continue
		}
	}

	return dc.Image()
}
