package analyzer

import (
	"fmt"

	"go-image-threshold/pkg/engine"
)

// ProcessingOptions configures a threshold or binarize request
type ProcessingOptions struct {
	Method engine.Method
	Params engine.Params

	// Stretch applies a contrast stretch before the threshold is selected.
	Stretch bool

	// Rounding selects the grayscale histogram reported by histogram analysis.
	Rounding engine.RoundingMode

	// OCR-specific options
	OCRExpectedText string
	OCRLanguage     string
}

// DefaultOptions returns the isodata method with the default iteration bound
func DefaultOptions() ProcessingOptions {
	return ProcessingOptions{
		Method: engine.MethodIterativeMean,
		Params: engine.Params{
			MaxIterations: engine.DefaultMaxIterations,
		},
		Rounding:    engine.RoundingRounded,
		OCRLanguage: "eng",
	}
}

// WithMethod selects the threshold method
func (opts ProcessingOptions) WithMethod(method engine.Method) ProcessingOptions {
	opts.Method = method
	return opts
}

// WithManualThreshold selects the manual method with a fixed value
func (opts ProcessingOptions) WithManualThreshold(value int) ProcessingOptions {
	opts.Method = engine.MethodManual
	opts.Params.ManualValue = value
	return opts
}

// WithPercentBlack selects the percent black method
func (opts ProcessingOptions) WithPercentBlack(percent float64) ProcessingOptions {
	opts.Method = engine.MethodPercentBlack
	opts.Params.Percent = percent
	return opts
}

// WithMaxIterations bounds the isodata method
func (opts ProcessingOptions) WithMaxIterations(n int) ProcessingOptions {
	opts.Params.MaxIterations = n
	return opts
}

// WithStretch enables contrast stretching before thresholding
func (opts ProcessingOptions) WithStretch() ProcessingOptions {
	opts.Stretch = true
	return opts
}

// WithOCR sets the text OCR output is scored against
func (opts ProcessingOptions) WithOCR(expectedText, language string) ProcessingOptions {
	opts.OCRExpectedText = expectedText
	if language != "" {
		opts.OCRLanguage = language
	}
	return opts
}

// Selector builds the selector the options describe
func (opts ProcessingOptions) Selector() (engine.Selector, error) {
	return engine.NewSelector(opts.Method, opts.Params)
}

// Validate checks the options without touching any image
func (opts ProcessingOptions) Validate() error {
	if _, err := opts.Selector(); err != nil {
		return err
	}
	switch opts.Method {
	case engine.MethodManual:
		if opts.Params.ManualValue < 0 || opts.Params.ManualValue > 255 {
			return fmt.Errorf("%w: manual threshold %d outside [0,255]", engine.ErrInvalidParameter, opts.Params.ManualValue)
		}
	case engine.MethodPercentBlack:
		if !(opts.Params.Percent >= 0 && opts.Params.Percent <= 100) {
			return fmt.Errorf("%w: percent %v outside [0,100]", engine.ErrInvalidParameter, opts.Params.Percent)
		}
	}
	if opts.Params.MaxIterations < 0 {
		return fmt.Errorf("%w: max iterations %d", engine.ErrInvalidParameter, opts.Params.MaxIterations)
	}
	return nil
}
