package engine

import (
	"fmt"
	"math"
)

// Binarize maps every pixel to black or white using t's value, direction and
// rounding mode, and returns the result as a new buffer. Alpha is copied.
func Binarize(buf *PixelBuffer, t Threshold) (*PixelBuffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(t.Value) || math.IsInf(t.Value, 0) {
		return nil, fmt.Errorf("%w: threshold %v", ErrInvalidParameter, t.Value)
	}

	// Grayscale depends only on R+G+B, so the decision is tabulated once.
	var white [exactBins]bool
	for sum := range white {
		white[sum] = t.Direction.Foreground(graySum(sum, t.Rounding), t.Value)
	}

	out := &PixelBuffer{Width: buf.Width, Height: buf.Height, Pix: make([]uint8, len(buf.Pix))}
	pixels := buf.PixelCount()
	forEachStrip(pixels, stripCount(pixels), func(_, start, end int) {
		for o := start * bytesPerPixel; o < end*bytesPerPixel; o += bytesPerPixel {
			var v uint8
			if white[int(buf.Pix[o])+int(buf.Pix[o+1])+int(buf.Pix[o+2])] {
				v = 255
			}
			out.Pix[o], out.Pix[o+1], out.Pix[o+2] = v, v, v
			out.Pix[o+3] = buf.Pix[o+3]
		}
	})
	return out, nil
}

// ForegroundRatio returns the share of pixels whose red, green and blue samples
// are all 255.
func ForegroundRatio(buf *PixelBuffer) float64 {
	if buf.Validate() != nil {
		return 0
	}
	white := 0
	for o := 0; o < len(buf.Pix); o += bytesPerPixel {
		if buf.Pix[o] == 255 && buf.Pix[o+1] == 255 && buf.Pix[o+2] == 255 {
			white++
		}
	}
	return float64(white) / float64(buf.PixelCount())
}
