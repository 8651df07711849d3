package storage

import (
	"image"

	"golang.org/x/image/draw"
)

// ScaleToFit shrinks img so that neither side exceeds maxDim, keeping the
// aspect ratio. Images that already fit, or a maxDim of zero, are returned
// unchanged with scaled false.
func ScaleToFit(img image.Image, maxDim int) (out image.Image, scaled bool) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img, false
	}

	nw, nh := maxDim, maxDim
	if w >= h {
		nh = max(1, h*maxDim/w)
	} else {
		nw = max(1, w*maxDim/h)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Rect, img, b, draw.Src, nil)
	return dst, true
}
