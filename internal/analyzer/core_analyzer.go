package analyzer

import (
	"context"
	"fmt"
	"sync"

	"go-image-threshold/internal/strategy"
	"go-image-threshold/pkg/engine"
	"go-image-threshold/pkg/models"
)

// coreProcessor implements ImageProcessor and orchestrates the engine
type coreProcessor struct {
	workerPool        *WorkerPool
	metricsCalculator MetricsCalculator
}

// NewImageProcessor creates a processor whose comparisons run on a pool of
// the given size; zero or less uses the CPU count.
func NewImageProcessor(workers int) ImageProcessor {
	workerPool := NewWorkerPool(workers)
	workerPool.Start()

	return &coreProcessor{
		workerPool:        workerPool,
		metricsCalculator: NewMetricsCalculator(),
	}
}

// AnalyzeHistograms computes channel and grayscale histograms with statistics
func (cp *coreProcessor) AnalyzeHistograms(ctx context.Context, buf *engine.PixelBuffer, rounding engine.RoundingMode) (models.HistogramAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return models.HistogramAnalysis{}, err
	}
	return cp.metricsCalculator.CalculateHistogramAnalysis(buf, rounding)
}

// SelectThreshold selects a threshold without binarizing. The foreground
// ratio is still measured so callers can judge the split.
func (cp *coreProcessor) SelectThreshold(ctx context.Context, buf *engine.PixelBuffer, options ProcessingOptions) (*ThresholdOutcome, error) {
	outcome, err := cp.run(ctx, buf, options)
	if outcome != nil {
		outcome.Binary = nil
	}
	return outcome, err
}

// Binarize selects a threshold and applies it
func (cp *coreProcessor) Binarize(ctx context.Context, buf *engine.PixelBuffer, options ProcessingOptions) (*ThresholdOutcome, error) {
	return cp.run(ctx, buf, options)
}

func (cp *coreProcessor) run(ctx context.Context, buf *engine.PixelBuffer, options ProcessingOptions) (*ThresholdOutcome, error) {
	pipeline, err := buildPipeline(options)
	if err != nil {
		return nil, err
	}
	pipeline.AddStrategy(strategy.NewBinarizeStrategy())

	state, err := pipeline.Execute(ctx, buf)
	if err != nil {
		return partialOutcome(state), err
	}
	return &ThresholdOutcome{
		Threshold:       *state.Threshold,
		Stretch:         state.Stretch,
		Binary:          state.Binary,
		ForegroundRatio: engine.ForegroundRatio(state.Binary),
	}, nil
}

// buildPipeline returns the stretch and threshold steps for options.
func buildPipeline(options ProcessingOptions) (*strategy.PipelineContext, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}
	selector, err := options.Selector()
	if err != nil {
		return nil, err
	}

	pipeline := strategy.NewPipelineContext()
	if options.Stretch {
		pipeline.AddStrategy(strategy.NewStretchStrategy())
	}
	return pipeline.AddStrategy(strategy.NewThresholdStrategy(selector)), nil
}

// partialOutcome keeps whatever threshold was reached before a failure, so a
// non-converged estimate can still be reported.
func partialOutcome(state *strategy.PipelineState) *ThresholdOutcome {
	if state == nil || state.Threshold == nil {
		return nil
	}
	return &ThresholdOutcome{Threshold: *state.Threshold, Stretch: state.Stretch}
}

// Stretch applies a contrast stretch
func (cp *coreProcessor) Stretch(ctx context.Context, buf *engine.PixelBuffer) (*engine.PixelBuffer, engine.StretchReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, engine.StretchReport{}, err
	}
	return engine.StretchContrast(buf)
}

// CompareMethods runs every method on the worker pool. The buffer is
// stretched once up front when requested. Per-method failures are recorded in
// the outcome rather than returned.
func (cp *coreProcessor) CompareMethods(ctx context.Context, buf *engine.PixelBuffer, methods []engine.Method, options ProcessingOptions) (*ComparisonOutcome, error) {
	if len(methods) == 0 {
		methods = engine.Methods()
	}

	outcome := &ComparisonOutcome{Results: make([]MethodOutcome, len(methods))}
	if options.Stretch {
		stretched, report, err := engine.StretchContrast(buf)
		if err != nil {
			return nil, fmt.Errorf("contrast stretch: %w", err)
		}
		buf = stretched
		outcome.Stretch = &report
	}
	// Selectors only read the buffer; checking it once avoids reporting the
	// same failure for every method.
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	for i, method := range methods {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}

		job := func() {
			defer wg.Done()
			outcome.Results[i] = compareOne(buf, method, options)
		}
		wg.Add(1)
		if !cp.workerPool.Submit(job) {
			job()
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcome, nil
}

func compareOne(buf *engine.PixelBuffer, method engine.Method, options ProcessingOptions) MethodOutcome {
	result := MethodOutcome{Method: method}

	opts := options.WithMethod(method)
	selector, err := opts.Selector()
	if err == nil {
		err = opts.Validate()
	}
	if err != nil {
		result.Err = err
		return result
	}

	t, err := selector.Select(buf)
	if t.Method != "" {
		result.Threshold = &t
	}
	if err != nil {
		result.Err = err
		return result
	}

	binary, err := engine.Binarize(buf, t)
	if err != nil {
		result.Err = err
		return result
	}
	result.ForegroundRatio = engine.ForegroundRatio(binary)
	return result
}

// Stats returns the comparison pool counters
func (cp *coreProcessor) Stats() WorkerPoolStats {
	return cp.workerPool.GetStats()
}

// Close releases the worker pool
func (cp *coreProcessor) Close() error {
	cp.workerPool.Close()
	return nil
}
