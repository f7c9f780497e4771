// Package imaging wraps the resize primitive used by the asset pipeline.
//
// Resize, Fit and Grayscale never fail: when a result cannot be produced they
// return nil and the caller falls back to the unscaled source.
package imaging

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// MaxDimension bounds either side of a requested output.
const MaxDimension = 8192

// Scaler is the resize contract the pipeline and staging depend on.
type Scaler interface {
	Resize(src image.Image, width, height int) image.Image
	Fit(src image.Image, width, height int) image.Image
}

// CatmullRom scales with the Catmull-Rom kernel.
type CatmullRom struct{}

func (CatmullRom) Resize(src image.Image, width, height int) image.Image {
	return Resize(src, width, height)
}

func (CatmullRom) Fit(src image.Image, width, height int) image.Image {
	return Fit(src, width, height)
}

func usable(src image.Image, width, height int) bool {
	if src == nil || src.Bounds().Empty() {
		return false
	}
	return width > 0 && height > 0 && width <= MaxDimension && height <= MaxDimension
}

// Resize scales src to exactly width x height.
func Resize(src image.Image, width, height int) image.Image {
	if !usable(src, width, height) {
		return nil
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Rect, src, src.Bounds(), draw.Src, nil)
	return dst
}

// Fit scales src preserving its aspect ratio and centers it on a transparent
// width x height canvas.
func Fit(src image.Image, width, height int) image.Image {
	if !usable(src, width, height) {
		return nil
	}
	sb := src.Bounds()
	scale := math.Min(float64(width)/float64(sb.Dx()), float64(height)/float64(sb.Dy()))
	w := max(1, int(math.Round(float64(sb.Dx())*scale)))
	h := max(1, int(math.Round(float64(sb.Dy())*scale)))

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	offX := (width - w) / 2
	offY := (height - h) / 2
	dr := image.Rect(offX, offY, offX+w, offY+h)
	draw.CatmullRom.Scale(dst, dr, src, sb, draw.Over, nil)
	return dst
}

// Grayscale converts src to luma, keeping alpha.
func Grayscale(src image.Image) image.Image {
	if src == nil || src.Bounds().Empty() {
		return nil
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			luma := uint8((19595*uint32(c.R) + 38470*uint32(c.G) + 7471*uint32(c.B) + 1<<15) >> 16)
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, color.NRGBA{R: luma, G: luma, B: luma, A: c.A})
		}
	}
	return dst
}
