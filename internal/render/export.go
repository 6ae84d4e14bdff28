package render

import (
	"image"
	"image/png"
	"io"

	"github.com/disintegration/gift"
	xdraw "golang.org/x/image/draw"
)

// Downsample scales an image down by an integer factor with Catmull-Rom
// resampling. Rendering a frame at factor x canvas size and downsampling it
// is the supersampling path of the export command.
func Downsample(img image.Image, factor int) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()/factor, b.Dy()/factor))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

// Soften applies a slight gaussian blur, taking the edge off hard stroke
// boundaries in exported stills.
func Soften(img image.Image) image.Image {
	g := gift.New(gift.GaussianBlur(0.7))
	dst := image.NewRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

// EncodePNG writes the image as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
