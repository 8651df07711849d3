package engine

import (
	"errors"
	"testing"
)

func TestStretchContrast(t *testing.T) {
	buf := rgbaRow(
		[4]uint8{50, 100, 0, 10},
		[4]uint8{150, 100, 255, 20},
		[4]uint8{100, 100, 128, 30},
	)
	original := buf.Clone()

	out, report, err := StretchContrast(buf)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if r, _, _, _ := out.At(0, 0); r != 0 {
		t.Errorf("Expected red min mapped to 0, got %d", r)
	}
	if r, _, _, _ := out.At(1, 0); r != 255 {
		t.Errorf("Expected red max mapped to 255, got %d", r)
	}
	// (100-50)*255/100 = 127.5 rounds to 128.
	if r, _, _, _ := out.At(2, 0); r != 128 {
		t.Errorf("Expected red midpoint 128, got %d", r)
	}

	// Constant green channel stays at 100.
	for x := 0; x < 3; x++ {
		if _, g, _, _ := out.At(x, 0); g != 100 {
			t.Errorf("Expected constant channel left at 100, got %d", g)
		}
	}
	if len(report.Degenerate) != 1 || report.Degenerate[0] != Green {
		t.Errorf("Expected green reported degenerate, got %v", report.Degenerate)
	}
	if report.Red != (StretchRange{Min: 50, Max: 150}) {
		t.Errorf("Unexpected red range %+v", report.Red)
	}

	// Alpha is copied and the input untouched.
	for x := 0; x < 3; x++ {
		_, _, _, a := out.At(x, 0)
		_, _, _, want := original.At(x, 0)
		if a != want {
			t.Errorf("Expected alpha %d, got %d", want, a)
		}
	}
	for i := range buf.Pix {
		if buf.Pix[i] != original.Pix[i] {
			t.Fatal("Stretch mutated its input")
		}
	}
}

func TestStretch_FullRangeIsIdentity(t *testing.T) {
	buf := grayRow(0, 64, 255)
	out, report, err := StretchContrast(buf)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(report.Degenerate) != 0 {
		t.Errorf("Expected no degenerate channels, got %v", report.Degenerate)
	}
	for i := range buf.Pix {
		if out.Pix[i] != buf.Pix[i] {
			t.Fatalf("Expected identity at sample %d: %d != %d", i, out.Pix[i], buf.Pix[i])
		}
	}
}

func TestStretch_EmptyHistogram(t *testing.T) {
	_, _, err := Stretch(grayRow(1), ChannelHistograms{})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}
}

func TestStretchRange_LUTClamps(t *testing.T) {
	table := StretchRange{Min: 100, Max: 200}.lut()
	if table[0] != 0 || table[99] != 0 {
		t.Errorf("Expected values below min clamped to 0, got %d %d", table[0], table[99])
	}
	if table[255] != 255 {
		t.Errorf("Expected values above max clamped to 255, got %d", table[255])
	}
}

func TestStretchRange_LUTRoundsHalfToEven(t *testing.T) {
	table := StretchRange{Min: 0, Max: 6}.lut()
	// 1*255/6 = 42.5, 3*255/6 = 127.5, 5*255/6 = 212.5
	want := map[int]uint8{1: 42, 3: 128, 5: 212}
	for v, w := range want {
		if table[v] != w {
			t.Errorf("lut[%d]: expected %d, got %d", v, w, table[v])
		}
	}
}
