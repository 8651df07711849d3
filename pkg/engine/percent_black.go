package engine

import (
	"fmt"
	"math"
)

// PercentBlack picks the threshold so that roughly Percent percent of the
// pixels fall below it.
type PercentBlack struct {
	Percent float64
}

func (PercentBlack) Method() Method         { return MethodPercentBlack }
func (PercentBlack) Direction() Direction   { return GreaterEqualIsForeground }
func (PercentBlack) Rounding() RoundingMode { return RoundingExact }

// Select returns the k-th smallest unrounded grayscale value with
// k = floor(Percent/100 * N), clamped to the last pixel.
func (s PercentBlack) Select(buf *PixelBuffer) (Threshold, error) {
	if math.IsNaN(s.Percent) || s.Percent < 0 || s.Percent > 100 {
		return Threshold{}, fmt.Errorf("%w: percent %v outside [0,100]", ErrInvalidParameter, s.Percent)
	}
	hist, err := BuildGrayscaleHistogram(buf, RoundingExact)
	if err != nil {
		return Threshold{}, err
	}

	n := hist.Total()
	k := int(math.Floor(s.Percent / 100 * float64(n)))
	clamped := false
	if k > n-1 {
		k = n - 1
		clamped = true
	}

	// Walk the sorted distribution instead of sorting every sample.
	seen := 0
	for bin, c := range hist.Counts {
		seen += c
		if seen > k {
			return Threshold{
				Method:    MethodPercentBlack,
				Value:     hist.Value(bin),
				Direction: s.Direction(),
				Rounding:  s.Rounding(),
				Clamped:   clamped,
			}, nil
		}
	}
	return Threshold{}, fmt.Errorf("%w: rank %d beyond %d pixels", ErrInvalidBuffer, k, n)
}
