package engine

import (
	"errors"
	"math/rand"
	"testing"
)

func randomBuffer(width, height int, seed int64) *PixelBuffer {
	rng := rand.New(rand.NewSource(seed))
	buf := NewPixelBuffer(width, height)
	rng.Read(buf.Pix)
	return buf
}

func TestBuildChannelHistograms_CountsEveryPixel(t *testing.T) {
	// Large enough to be split across strips.
	buf := randomBuffer(400, 300, 1)

	hists, err := BuildChannelHistograms(buf)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, c := range []Channel{Red, Green, Blue} {
		if total := hists.Channel(c).Total(); total != buf.PixelCount() {
			t.Errorf("%s: expected %d samples, got %d", c, buf.PixelCount(), total)
		}
	}

	var want ChannelHistogram
	for o := 0; o < len(buf.Pix); o += bytesPerPixel {
		want[buf.Pix[o+1]]++
	}
	if want != hists.Green {
		t.Error("Parallel green histogram differs from sequential count")
	}
}

func TestBuildChannelHistograms_InvalidBuffer(t *testing.T) {
	_, err := BuildChannelHistograms(&PixelBuffer{Width: 3, Height: 3})
	if !errors.Is(err, ErrInvalidBuffer) {
		t.Errorf("Expected ErrInvalidBuffer, got %v", err)
	}
}

func TestBuildGrayscaleHistogram(t *testing.T) {
	// Scenario: black and white pixel.
	buf := grayRow(0, 255)

	for _, mode := range []RoundingMode{RoundingExact, RoundingRounded} {
		hist, err := BuildGrayscaleHistogram(buf, mode)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", mode, err)
		}
		levels := hist.Levels()
		if levels[0] != 1 || levels[255] != 1 {
			t.Errorf("%s: expected {0:1, 255:1}, got 0:%d 255:%d", mode, levels[0], levels[255])
		}
		if hist.Total() != 2 {
			t.Errorf("%s: expected total 2, got %d", mode, hist.Total())
		}
	}
}

func TestBuildGrayscaleHistogram_RoundingModes(t *testing.T) {
	// (1+1+0)/3 = 0.667 rounds to 1; (1+0+0)/3 = 0.333 rounds to 0.
	buf := rgbaRow([4]uint8{1, 1, 0, 255}, [4]uint8{1, 0, 0, 255})

	exact, err := BuildGrayscaleHistogram(buf, RoundingExact)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(exact.Counts) != exactBins {
		t.Fatalf("Expected %d exact bins, got %d", exactBins, len(exact.Counts))
	}
	if exact.Counts[2] != 1 || exact.Counts[1] != 1 {
		t.Errorf("Expected exact bins 1 and 2 occupied, got %v", exact.Counts[:4])
	}
	if got := exact.Value(2); got != 2.0/3 {
		t.Errorf("Expected bin value 2/3, got %v", got)
	}

	rounded, err := BuildGrayscaleHistogram(buf, RoundingRounded)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rounded.Counts[0] != 1 || rounded.Counts[1] != 1 {
		t.Errorf("Expected rounded bins 0 and 1, got %v", rounded.Counts[:3])
	}
}

func TestBuildGrayscaleHistogram_UnknownMode(t *testing.T) {
	_, err := BuildGrayscaleHistogram(grayRow(1), RoundingMode(7))
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}
}

func TestGrayscale(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		mode    RoundingMode
		want    float64
	}{
		{10, 20, 30, RoundingExact, 20},
		{1, 1, 0, RoundingExact, 2.0 / 3},
		{1, 1, 0, RoundingRounded, 1},
		{255, 255, 254, RoundingRounded, 255},
		{0, 0, 1, RoundingRounded, 0},
	}
	for _, tt := range tests {
		if got := Grayscale(tt.r, tt.g, tt.b, tt.mode); got != tt.want {
			t.Errorf("Grayscale(%d,%d,%d,%s) = %v, want %v", tt.r, tt.g, tt.b, tt.mode, got, tt.want)
		}
	}
}

func TestParseRoundingMode(t *testing.T) {
	for in, want := range map[string]RoundingMode{"": RoundingExact, "exact": RoundingExact, "Rounded": RoundingRounded} {
		got, err := ParseRoundingMode(in)
		if err != nil || got != want {
			t.Errorf("ParseRoundingMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseRoundingMode("floor"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}
}
