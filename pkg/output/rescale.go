package output

import (
	"image"

	"golang.org/x/image/draw"
)

// Rescale resizes img to width x height with Catmull-Rom filtering. The input
// is returned unchanged when it already has that size or the size is not positive.
func Rescale(img *image.RGBA, width, height int) *image.RGBA {
	if width <= 0 || height <= 0 {
		return img
	}
	if img.Bounds().Dx() == width && img.Bounds().Dy() == height {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// ScaleToFit returns the largest size with the aspect ratio of bounds that fits
// in maxWidth x maxHeight. A non-positive limit leaves that dimension free.
func ScaleToFit(bounds image.Rectangle, maxWidth, maxHeight int) (int, int) {
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return w, h
	}

	scale := 0.0
	if maxWidth > 0 {
		scale = float64(maxWidth) / float64(w)
	}
	if maxHeight > 0 {
		hs := float64(maxHeight) / float64(h)
		if scale == 0 || hs < scale {
			scale = hs
		}
	}
	if scale == 0 {
		return w, h
	}
	return max(1, int(float64(w)*scale+0.5)), max(1, int(float64(h)*scale+0.5))
}
