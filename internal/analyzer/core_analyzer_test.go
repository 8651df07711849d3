package analyzer

import (
	"context"
	"errors"
	"testing"

	"go-image-threshold/pkg/engine"
)

// createTestBuffer creates a buffer filled with one colour
func createTestBuffer(width, height int, r, g, b uint8) *engine.PixelBuffer {
	buf := engine.NewPixelBuffer(width, height)
	for i := 0; i < len(buf.Pix); i += 4 {
		buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2], buf.Pix[i+3] = r, g, b, 255
	}
	return buf
}

// createTwoToneBuffer creates a buffer whose left half is dark and right half
// light, with a little noise in each half.
func createTwoToneBuffer(width, height int) *engine.PixelBuffer {
	buf := engine.NewPixelBuffer(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(30 + (x+y)%10)
			if x >= width/2 {
				v = uint8(200 + (x+y)%10)
			}
			o := (y*width + x) * 4
			buf.Pix[o], buf.Pix[o+1], buf.Pix[o+2], buf.Pix[o+3] = v, v, v, 255
		}
	}
	return buf
}

func newTestProcessor(t *testing.T) ImageProcessor {
	t.Helper()
	p := NewImageProcessor(2)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestNewImageProcessor(t *testing.T) {
	p := NewImageProcessor(0)
	if p == nil {
		t.Fatal("Expected non-nil processor")
	}
	if err := p.Close(); err != nil {
		t.Errorf("Unexpected close error: %v", err)
	}
}

func TestBinarize_TwoTone(t *testing.T) {
	p := newTestProcessor(t)
	buf := createTwoToneBuffer(64, 32)

	for _, method := range engine.Methods() {
		opts := DefaultOptions().WithMethod(method)
		opts.Params.ManualValue = 128
		opts.Params.Percent = 50

		outcome, err := p.Binarize(context.Background(), buf, opts)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", method, err)
		}
		if outcome.Binary == nil {
			t.Fatalf("%s: expected a binarized buffer", method)
		}
		if method == engine.MethodFuzzyMinimumError {
			// fuzzy memberships can settle inside one of the clusters
			if outcome.ForegroundRatio <= 0 || outcome.ForegroundRatio >= 1 {
				t.Errorf("%s: expected a mixed result, got %f", method, outcome.ForegroundRatio)
			}
			continue
		}
		if outcome.ForegroundRatio < 0.45 || outcome.ForegroundRatio > 0.55 {
			t.Errorf("%s: expected about half the pixels white, got %f", method, outcome.ForegroundRatio)
		}
		if r, _, _, _ := outcome.Binary.At(0, 0); r != 0 {
			t.Errorf("%s: expected dark half to be black", method)
		}
		if r, _, _, _ := outcome.Binary.At(63, 31); r != 255 {
			t.Errorf("%s: expected light half to be white", method)
		}
	}
}

func TestSelectThreshold_NoBinaryBuffer(t *testing.T) {
	p := newTestProcessor(t)
	outcome, err := p.SelectThreshold(context.Background(), createTwoToneBuffer(16, 16), DefaultOptions())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if outcome.Binary != nil {
		t.Error("Expected no binary buffer for selection only")
	}
	if outcome.Threshold.Method != engine.MethodIterativeMean {
		t.Errorf("Expected iterative mean, got %s", outcome.Threshold.Method)
	}
}

func TestBinarize_WithStretch(t *testing.T) {
	p := newTestProcessor(t)
	buf := createTestBuffer(4, 4, 90, 90, 90)
	copy(buf.Pix[0:4], []uint8{80, 80, 80, 255})

	outcome, err := p.Binarize(context.Background(), buf, DefaultOptions().WithManualThreshold(128).WithStretch())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if outcome.Stretch == nil || outcome.Stretch.Red != (engine.StretchRange{Min: 80, Max: 90}) {
		t.Errorf("Unexpected stretch report %+v", outcome.Stretch)
	}
	// Stretched to 0 and 255, so one black pixel and fifteen white.
	if outcome.ForegroundRatio != 15.0/16 {
		t.Errorf("Expected ratio 15/16, got %f", outcome.ForegroundRatio)
	}
}

func TestBinarize_Errors(t *testing.T) {
	p := newTestProcessor(t)
	uniform := createTestBuffer(8, 8, 50, 50, 50)

	_, err := p.Binarize(context.Background(), uniform, DefaultOptions().WithMethod(engine.MethodMinimumError))
	if !errors.Is(err, engine.ErrNoValidSplit) {
		t.Errorf("Expected ErrNoValidSplit, got %v", err)
	}

	_, err = p.Binarize(context.Background(), uniform, DefaultOptions().WithManualThreshold(999))
	if !errors.Is(err, engine.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}

	buf := createTestBuffer(4, 1, 0, 0, 0)
	copy(buf.Pix[12:16], []uint8{255, 255, 255, 255})
	outcome, err := p.Binarize(context.Background(), buf, DefaultOptions().WithMaxIterations(1))
	if !errors.Is(err, engine.ErrNonConvergence) {
		t.Fatalf("Expected ErrNonConvergence, got %v", err)
	}
	if outcome == nil || outcome.Threshold.Value != 127.5 {
		t.Errorf("Expected last estimate 127.5, got %+v", outcome)
	}
}

func TestCompareMethods(t *testing.T) {
	p := newTestProcessor(t)
	buf := createTwoToneBuffer(32, 32)

	opts := DefaultOptions()
	opts.Params.ManualValue = 100
	opts.Params.Percent = 25

	outcome, err := p.CompareMethods(context.Background(), buf, nil, opts)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(outcome.Results) != len(engine.Methods()) {
		t.Fatalf("Expected %d results, got %d", len(engine.Methods()), len(outcome.Results))
	}
	for i, r := range outcome.Results {
		if r.Method != engine.Methods()[i] {
			t.Errorf("Result %d: expected %s, got %s", i, engine.Methods()[i], r.Method)
		}
		if r.Err != nil {
			t.Errorf("%s: unexpected error: %v", r.Method, r.Err)
		}
		if r.Threshold == nil {
			t.Errorf("%s: expected a threshold", r.Method)
		}
	}

	stats := p.Stats()
	if stats.TotalJobs < int64(len(engine.Methods())) {
		t.Errorf("Expected comparison jobs on the pool, got %+v", stats)
	}
}

func TestCompareMethods_RecordsFailures(t *testing.T) {
	p := newTestProcessor(t)
	uniform := createTestBuffer(8, 8, 70, 70, 70)

	methods := []engine.Method{engine.MethodManual, engine.MethodMaxEntropy, engine.MethodFuzzyMinimumError}
	opts := DefaultOptions()
	opts.Params.ManualValue = 60

	outcome, err := p.CompareMethods(context.Background(), uniform, methods, opts)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if outcome.Results[0].Err != nil || outcome.Results[0].ForegroundRatio != 1 {
		t.Errorf("Expected manual 60 to whiten everything, got %+v", outcome.Results[0])
	}
	for _, r := range outcome.Results[1:] {
		if !errors.Is(r.Err, engine.ErrNoValidSplit) {
			t.Errorf("%s: expected ErrNoValidSplit, got %v", r.Method, r.Err)
		}
	}
}

func TestCompareMethods_AfterClose(t *testing.T) {
	p := NewImageProcessor(1)
	p.Close()

	outcome, err := p.CompareMethods(context.Background(), createTwoToneBuffer(8, 8), []engine.Method{engine.MethodMaxEntropy}, DefaultOptions())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if outcome.Results[0].Threshold == nil {
		t.Error("Expected method to run inline once the pool is closed")
	}
}

func TestCompareMethods_CancelledContext(t *testing.T) {
	p := newTestProcessor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.CompareMethods(ctx, createTwoToneBuffer(8, 8), nil, DefaultOptions()); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestAnalyzeHistograms(t *testing.T) {
	p := newTestProcessor(t)
	analysis, err := p.AnalyzeHistograms(context.Background(), createTwoToneBuffer(10, 10), engine.RoundingExact)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	total := 0
	for _, c := range analysis.Grayscale.Counts {
		total += c
	}
	if total != 100 {
		t.Errorf("Expected 100 pixels in the grayscale histogram, got %d", total)
	}
}
