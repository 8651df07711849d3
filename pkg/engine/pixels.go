// Package engine computes channel histograms of RGBA pixel buffers, selects
// binarization thresholds with several automatic and manual strategies, and
// applies thresholds and contrast stretching to produce new buffers.
package engine

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// bytesPerPixel is the number of interleaved samples per pixel (R, G, B, A).
const bytesPerPixel = 4

// PixelBuffer holds non-premultiplied RGBA samples in row-major order.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewPixelBuffer allocates a zeroed buffer of the given dimensions.
func NewPixelBuffer(width, height int) *PixelBuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*bytesPerPixel),
	}
}

// NewPixelBufferFromPix wraps an existing sample slice after validating it.
func NewPixelBufferFromPix(width, height int, pix []uint8) (*PixelBuffer, error) {
	buf := &PixelBuffer{Width: width, Height: height, Pix: pix}
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	return buf, nil
}

// FromImage copies any image into a new buffer.
func FromImage(img image.Image) *PixelBuffer {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	buf := NewPixelBuffer(width, height)

	if src, ok := img.(*image.NRGBA); ok && src.Stride == width*bytesPerPixel {
		offset := src.PixOffset(bounds.Min.X, bounds.Min.Y)
		copy(buf.Pix, src.Pix[offset:offset+len(buf.Pix)])
		return buf
	}

	dst := &image.NRGBA{
		Pix:    buf.Pix,
		Stride: width * bytesPerPixel,
		Rect:   image.Rect(0, 0, width, height),
	}
	draw.Draw(dst, dst.Rect, img, bounds.Min, draw.Src)
	return buf
}

// Validate checks the buffer invariants.
func (b *PixelBuffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidBuffer)
	}
	if len(b.Pix)%bytesPerPixel != 0 {
		return fmt.Errorf("%w: %d samples is not a multiple of %d", ErrInvalidBuffer, len(b.Pix), bytesPerPixel)
	}
	if len(b.Pix) == 0 {
		return fmt.Errorf("%w: no pixels", ErrInvalidBuffer)
	}
	if b.Width <= 0 || b.Height <= 0 || len(b.Pix) != b.Width*b.Height*bytesPerPixel {
		return fmt.Errorf("%w: %d samples do not match %dx%d", ErrInvalidBuffer, len(b.Pix), b.Width, b.Height)
	}
	return nil
}

// PixelCount returns the number of pixels in the buffer.
func (b *PixelBuffer) PixelCount() int {
	return len(b.Pix) / bytesPerPixel
}

// Clone returns a deep copy of the buffer.
func (b *PixelBuffer) Clone() *PixelBuffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &PixelBuffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// ToNRGBA exposes the buffer as an image sharing the same samples.
func (b *PixelBuffer) ToNRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * bytesPerPixel,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// At returns the samples of the pixel at (x, y).
func (b *PixelBuffer) At(x, y int) (r, g, bl, a uint8) {
	o := (y*b.Width + x) * bytesPerPixel
	return b.Pix[o], b.Pix[o+1], b.Pix[o+2], b.Pix[o+3]
}
