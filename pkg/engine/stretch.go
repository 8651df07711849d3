package engine

import (
	"fmt"
	"math"
)

// StretchRange is the lowest and highest occupied intensity of a channel.
type StretchRange struct {
	Min uint8 `json:"min"`
	Max uint8 `json:"max"`
}

// Degenerate reports whether the channel holds a single intensity.
func (r StretchRange) Degenerate() bool {
	return r.Min == r.Max
}

// lut builds the remapping table for the range. Degenerate ranges map to
// themselves; every other value is scaled, rounded half to even and clamped
// to [0,255].
func (r StretchRange) lut() [Levels]uint8 {
	var table [Levels]uint8
	if r.Degenerate() {
		for v := range table {
			table[v] = uint8(v)
		}
		return table
	}
	span := float64(r.Max) - float64(r.Min)
	for v := range table {
		s := math.RoundToEven((float64(v) - float64(r.Min)) * 255 / span)
		table[v] = uint8(math.Max(0, math.Min(255, s)))
	}
	return table
}

// RangeOf returns the occupied range of a histogram. ok is false when the
// histogram is empty.
func RangeOf(h *ChannelHistogram) (r StretchRange, ok bool) {
	lo, hi := -1, -1
	for v, c := range h {
		if c == 0 {
			continue
		}
		if lo < 0 {
			lo = v
		}
		hi = v
	}
	if lo < 0 {
		return StretchRange{}, false
	}
	return StretchRange{Min: uint8(lo), Max: uint8(hi)}, true
}

// StretchReport describes the ranges a stretch used.
type StretchReport struct {
	Red        StretchRange `json:"red"`
	Green      StretchRange `json:"green"`
	Blue       StretchRange `json:"blue"`
	Degenerate []Channel    `json:"degenerate,omitempty"`
}

// Range returns the range used for c.
func (r StretchReport) Range(c Channel) StretchRange {
	switch c {
	case Green:
		return r.Green
	case Blue:
		return r.Blue
	default:
		return r.Red
	}
}

// Stretch linearly remaps every channel's occupied range, taken from hists, to
// [0,255] and returns the result as a new buffer. Constant channels are left
// unchanged and listed in the report. Alpha is copied.
func Stretch(buf *PixelBuffer, hists ChannelHistograms) (*PixelBuffer, StretchReport, error) {
	if err := buf.Validate(); err != nil {
		return nil, StretchReport{}, err
	}

	var report StretchReport
	ranges := [3]*StretchRange{&report.Red, &report.Green, &report.Blue}
	var tables [3][Levels]uint8
	for _, c := range []Channel{Red, Green, Blue} {
		r, ok := RangeOf(hists.Channel(c))
		if !ok {
			return nil, StretchReport{}, fmt.Errorf("%w: %s histogram is empty", ErrInvalidParameter, c)
		}
		*ranges[c] = r
		if r.Degenerate() {
			report.Degenerate = append(report.Degenerate, c)
		}
		tables[c] = r.lut()
	}

	out := &PixelBuffer{Width: buf.Width, Height: buf.Height, Pix: make([]uint8, len(buf.Pix))}
	pixels := buf.PixelCount()
	forEachStrip(pixels, stripCount(pixels), func(_, start, end int) {
		for o := start * bytesPerPixel; o < end*bytesPerPixel; o += bytesPerPixel {
			out.Pix[o] = tables[Red][buf.Pix[o]]
			out.Pix[o+1] = tables[Green][buf.Pix[o+1]]
			out.Pix[o+2] = tables[Blue][buf.Pix[o+2]]
			out.Pix[o+3] = buf.Pix[o+3]
		}
	})
	return out, report, nil
}

// StretchContrast builds the channel histograms of buf and stretches it.
func StretchContrast(buf *PixelBuffer) (*PixelBuffer, StretchReport, error) {
	hists, err := BuildChannelHistograms(buf)
	if err != nil {
		return nil, StretchReport{}, err
	}
	return Stretch(buf, hists)
}
