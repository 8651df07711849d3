package engine

import "fmt"

// Levels is the number of intensity levels of an 8-bit channel.
const Levels = 256

// exactBins is the number of distinct R+G+B sums, each a grayscale value of sum/3.
const exactBins = 3*(Levels-1) + 1

// Channel names one color channel of a PixelBuffer.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// MarshalText encodes the channel by name.
func (c Channel) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ChannelHistogram counts pixels per intensity for one channel.
type ChannelHistogram [Levels]int

// Total returns the number of samples counted.
func (h *ChannelHistogram) Total() int {
	total := 0
	for _, c := range h {
		total += c
	}
	return total
}

// ChannelHistograms groups the red, green and blue histograms of one buffer.
type ChannelHistograms struct {
	Red   ChannelHistogram
	Green ChannelHistogram
	Blue  ChannelHistogram
}

// Channel returns the histogram for c.
func (h *ChannelHistograms) Channel(c Channel) *ChannelHistogram {
	switch c {
	case Green:
		return &h.Green
	case Blue:
		return &h.Blue
	default:
		return &h.Red
	}
}

// GrayscaleHistogram counts pixels per derived grayscale value.
//
// In RoundingRounded mode Counts has 256 bins indexed by intensity. In
// RoundingExact mode Counts is indexed by R+G+B, so bin i holds the pixels
// whose unrounded grayscale value is exactly i/3.
type GrayscaleHistogram struct {
	Mode   RoundingMode
	Counts []int
}

// Value returns the grayscale value represented by a bin.
func (h GrayscaleHistogram) Value(bin int) float64 {
	if h.Mode == RoundingExact {
		return float64(bin) / 3
	}
	return float64(bin)
}

// Total returns the number of pixels counted.
func (h GrayscaleHistogram) Total() int {
	total := 0
	for _, c := range h.Counts {
		total += c
	}
	return total
}

// Values returns the grayscale value of every bin, in increasing order.
func (h GrayscaleHistogram) Values() []float64 {
	values := make([]float64, len(h.Counts))
	for i := range values {
		values[i] = h.Value(i)
	}
	return values
}

// Weights returns the counts as float64, for weighted statistics.
func (h GrayscaleHistogram) Weights() []float64 {
	weights := make([]float64, len(h.Counts))
	for i, c := range h.Counts {
		weights[i] = float64(c)
	}
	return weights
}

// Levels folds the histogram onto 256 integer bins. Exact values are
// truncated to the level below.
func (h GrayscaleHistogram) Levels() [Levels]int {
	var out [Levels]int
	for i, c := range h.Counts {
		level := int(h.Value(i))
		if level >= Levels {
			level = Levels - 1
		}
		out[level] += c
	}
	return out
}

// BuildChannelHistograms scans buf and counts every red, green and blue sample.
func BuildChannelHistograms(buf *PixelBuffer) (ChannelHistograms, error) {
	if err := buf.Validate(); err != nil {
		return ChannelHistograms{}, err
	}

	pixels := buf.PixelCount()
	strips := stripCount(pixels)
	partial := make([]ChannelHistograms, strips)

	forEachStrip(pixels, strips, func(strip, start, end int) {
		h := &partial[strip]
		pix := buf.Pix[start*bytesPerPixel : end*bytesPerPixel]
		for i := 0; i < len(pix); i += bytesPerPixel {
			h.Red[pix[i]]++
			h.Green[pix[i+1]]++
			h.Blue[pix[i+2]]++
		}
	})

	var result ChannelHistograms
	for s := range partial {
		for v := 0; v < Levels; v++ {
			result.Red[v] += partial[s].Red[v]
			result.Green[v] += partial[s].Green[v]
			result.Blue[v] += partial[s].Blue[v]
		}
	}
	return result, nil
}

// BuildGrayscaleHistogram counts the grayscale value of every pixel under mode.
func BuildGrayscaleHistogram(buf *PixelBuffer, mode RoundingMode) (GrayscaleHistogram, error) {
	if err := buf.Validate(); err != nil {
		return GrayscaleHistogram{}, err
	}
	if mode != RoundingExact && mode != RoundingRounded {
		return GrayscaleHistogram{}, fmt.Errorf("%w: rounding mode %d", ErrInvalidParameter, int(mode))
	}

	sums := sumHistogram(buf)
	if mode == RoundingExact {
		return GrayscaleHistogram{Mode: mode, Counts: sums}, nil
	}

	counts := make([]int, Levels)
	for sum, c := range sums {
		counts[int(graySum(sum, mode))] += c
	}
	return GrayscaleHistogram{Mode: mode, Counts: counts}, nil
}

// sumHistogram counts pixels per R+G+B sum.
func sumHistogram(buf *PixelBuffer) []int {
	pixels := buf.PixelCount()
	strips := stripCount(pixels)
	partial := make([][exactBins]int, strips)

	forEachStrip(pixels, strips, func(strip, start, end int) {
		h := &partial[strip]
		pix := buf.Pix[start*bytesPerPixel : end*bytesPerPixel]
		for i := 0; i < len(pix); i += bytesPerPixel {
			h[int(pix[i])+int(pix[i+1])+int(pix[i+2])]++
		}
	})

	counts := make([]int, exactBins)
	for s := range partial {
		for i, c := range partial[s] {
			counts[i] += c
		}
	}
	return counts
}
