package engine

import (
	"errors"
	"math"
	"testing"
)

func assertBinary(t *testing.T, in, out *PixelBuffer) {
	t.Helper()
	for o := 0; o < len(out.Pix); o += bytesPerPixel {
		r, g, b := out.Pix[o], out.Pix[o+1], out.Pix[o+2]
		if (r != 0 && r != 255) || r != g || g != b {
			t.Fatalf("Pixel %d is not black or white: (%d,%d,%d)", o/bytesPerPixel, r, g, b)
		}
		if out.Pix[o+3] != in.Pix[o+3] {
			t.Fatalf("Pixel %d alpha changed from %d to %d", o/bytesPerPixel, in.Pix[o+3], out.Pix[o+3])
		}
	}
}

func TestBinarize_BlackAndWhite(t *testing.T) {
	buf := grayRow(0, 255)
	for _, m := range []Method{MethodManual, MethodIterativeMean} {
		th, err := SelectThreshold(m, buf, Params{ManualValue: 128})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", m, err)
		}
		out, err := Binarize(buf, th)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", m, err)
		}
		for i := range buf.Pix {
			if out.Pix[i] != buf.Pix[i] {
				t.Errorf("%s: expected output identical to input, sample %d is %d", m, i, out.Pix[i])
			}
		}
	}
}

func TestBinarize_PercentBlack(t *testing.T) {
	buf := grayRow(10, 20, 30, 40)
	th, err := SelectThreshold(MethodPercentBlack, buf, Params{Percent: 50})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out, err := Binarize(buf, th)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []uint8{0, 0, 255, 255}
	for x, w := range want {
		if r, _, _, _ := out.At(x, 0); r != w {
			t.Errorf("Pixel %d: expected %d, got %d", x, w, r)
		}
	}
	if got := ForegroundRatio(out); got != 0.5 {
		t.Errorf("Expected foreground ratio 0.5, got %v", got)
	}
}

func TestBinarize_Properties(t *testing.T) {
	buf := randomBuffer(300, 250, 7)
	for _, m := range Methods() {
		th, err := SelectThreshold(m, buf, Params{ManualValue: 100, Percent: 30})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", m, err)
		}
		out, err := Binarize(buf, th)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", m, err)
		}
		assertBinary(t, buf, out)

		again, err := Binarize(out, th)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", m, err)
		}
		for i := range out.Pix {
			if again.Pix[i] != out.Pix[i] {
				t.Fatalf("%s: binarizing twice changed sample %d", m, i)
			}
		}
	}
}

func TestBinarize_DirectionsAreComplementary(t *testing.T) {
	// Two intensities, threshold strictly between them.
	buf := grayRow(50, 200, 50, 200)
	ge := Threshold{Value: 120, Direction: GreaterEqualIsForeground, Rounding: RoundingRounded}
	le := Threshold{Value: 120, Direction: LessEqualIsBackground, Rounding: RoundingRounded}

	outGE, _ := Binarize(buf, ge)
	outLE, _ := Binarize(buf, le)
	for i := range outGE.Pix {
		if outGE.Pix[i] != outLE.Pix[i] {
			t.Fatalf("Directions disagree away from the threshold at sample %d", i)
		}
	}

	// On the threshold value itself they disagree.
	ge.Value, le.Value = 50, 50
	outGE, _ = Binarize(buf, ge)
	outLE, _ = Binarize(buf, le)
	if r, _, _, _ := outGE.At(0, 0); r != 255 {
		t.Errorf("Expected gray == t to be white with >=, got %d", r)
	}
	if r, _, _, _ := outLE.At(0, 0); r != 0 {
		t.Errorf("Expected gray == t to be black with <=, got %d", r)
	}
}

func TestBinarize_UsesThresholdRounding(t *testing.T) {
	// Gray 2/3: rounded it equals 1, unrounded it is below 1.
	buf := rgbaRow([4]uint8{1, 1, 0, 255})
	exact, _ := Binarize(buf, Threshold{Value: 1, Direction: GreaterEqualIsForeground, Rounding: RoundingExact})
	rounded, _ := Binarize(buf, Threshold{Value: 1, Direction: GreaterEqualIsForeground, Rounding: RoundingRounded})
	if exact.Pix[0] != 0 {
		t.Errorf("Expected exact gray below threshold, got %d", exact.Pix[0])
	}
	if rounded.Pix[0] != 255 {
		t.Errorf("Expected rounded gray on threshold, got %d", rounded.Pix[0])
	}
}

func TestBinarize_Errors(t *testing.T) {
	if _, err := Binarize(&PixelBuffer{}, Threshold{}); !errors.Is(err, ErrInvalidBuffer) {
		t.Errorf("Expected ErrInvalidBuffer, got %v", err)
	}
	if _, err := Binarize(grayRow(1), Threshold{Value: math.NaN()}); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}
}
