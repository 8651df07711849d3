package analyzer

import (
	"context"

	"go-image-threshold/pkg/engine"
	"go-image-threshold/pkg/models"
)

// ImageProcessor defines the histogram and threshold operations of the service
type ImageProcessor interface {
	AnalyzeHistograms(ctx context.Context, buf *engine.PixelBuffer, rounding engine.RoundingMode) (models.HistogramAnalysis, error)
	SelectThreshold(ctx context.Context, buf *engine.PixelBuffer, options ProcessingOptions) (*ThresholdOutcome, error)
	Binarize(ctx context.Context, buf *engine.PixelBuffer, options ProcessingOptions) (*ThresholdOutcome, error)
	Stretch(ctx context.Context, buf *engine.PixelBuffer) (*engine.PixelBuffer, engine.StretchReport, error)
	CompareMethods(ctx context.Context, buf *engine.PixelBuffer, methods []engine.Method, options ProcessingOptions) (*ComparisonOutcome, error)

	// Lifecycle management
	Stats() WorkerPoolStats
	Close() error
}

// MetricsCalculator handles histogram statistics
type MetricsCalculator interface {
	CalculateHistogramAnalysis(buf *engine.PixelBuffer, rounding engine.RoundingMode) (models.HistogramAnalysis, error)
	CalculateHistogramStatistics(counts [engine.Levels]int) models.ChannelStatistics
}

// ThresholdOutcome is the result of selecting, and optionally applying, one
// threshold.
type ThresholdOutcome struct {
	Threshold engine.Threshold

	// Stretch is set when the buffer was stretched before selection.
	Stretch *engine.StretchReport

	// Binary is the binarized buffer; nil for selection only.
	Binary *engine.PixelBuffer

	ForegroundRatio float64
}

// MethodOutcome is one method's entry in a comparison.
type MethodOutcome struct {
	Method          engine.Method
	Threshold       *engine.Threshold
	ForegroundRatio float64
	Err             error
}

// ComparisonOutcome holds every compared method in request order.
type ComparisonOutcome struct {
	Stretch *engine.StretchReport
	Results []MethodOutcome
}
