package validation

import (
	"fmt"
	"math"
	"strings"

	apperrors "go-image-threshold/internal/errors"
	"go-image-threshold/pkg/engine"
	"go-image-threshold/pkg/models"
)

// MaxIterationsLimit caps the isodata iteration bound a caller may request.
const MaxIterationsLimit = 10000

// Parameters comparisons use when the request omits them
const (
	DefaultCompareThreshold = 128
	DefaultComparePercent   = 50.0
)

// ThresholdParams is a validated threshold request
type ThresholdParams struct {
	Method  engine.Method
	Params  engine.Params
	Stretch bool
}

// ParamsValidator turns request fields into engine parameters
type ParamsValidator struct {
	defaultMethod        engine.Method
	defaultMaxIterations int
}

// NewParamsValidator creates a validator that fills in the isodata bound
// when the request leaves it out
func NewParamsValidator(defaultMaxIterations int) *ParamsValidator {
	if defaultMaxIterations <= 0 {
		defaultMaxIterations = engine.DefaultMaxIterations
	}
	return &ParamsValidator{
		defaultMethod:        engine.MethodIterativeMean,
		defaultMaxIterations: defaultMaxIterations,
	}
}

// ValidateThreshold checks the method and its parameters. Without a method,
// a threshold implies manual and a percent implies percent_black.
func (v *ParamsValidator) ValidateThreshold(req models.ProcessRequest) (ThresholdParams, error) {
	method, err := v.resolveMethod(req)
	if err != nil {
		return ThresholdParams{}, err
	}

	out := ThresholdParams{
		Method:  method,
		Stretch: req.Stretch,
		Params:  engine.Params{MaxIterations: v.defaultMaxIterations},
	}

	switch method {
	case engine.MethodManual:
		if req.Threshold == nil {
			return ThresholdParams{}, invalidParameter("threshold is required for the manual method")
		}
	case engine.MethodPercentBlack:
		if req.Percent == nil {
			return ThresholdParams{}, invalidParameter("percent is required for the percent_black method")
		}
	}
	if err := v.applyParams(req, &out.Params); err != nil {
		return ThresholdParams{}, err
	}
	return out, nil
}

// ValidateCompare checks a comparison request. Manual and percent_black fall
// back to DefaultCompareThreshold and DefaultComparePercent when the request
// leaves their parameter out.
func (v *ParamsValidator) ValidateCompare(req models.ProcessRequest) (ThresholdParams, []engine.Method, error) {
	methods, err := v.ValidateMethods(req.Methods)
	if err != nil {
		return ThresholdParams{}, nil, err
	}
	out := ThresholdParams{
		Stretch: req.Stretch,
		Params: engine.Params{
			ManualValue:   DefaultCompareThreshold,
			Percent:       DefaultComparePercent,
			MaxIterations: v.defaultMaxIterations,
		},
	}
	if err := v.applyParams(req, &out.Params); err != nil {
		return ThresholdParams{}, nil, err
	}
	return out, methods, nil
}

// applyParams range checks every parameter the request carries
func (v *ParamsValidator) applyParams(req models.ProcessRequest, params *engine.Params) error {
	if req.Threshold != nil {
		if *req.Threshold < 0 || *req.Threshold > 255 {
			return invalidParameter(fmt.Sprintf("threshold %d outside [0,255]", *req.Threshold))
		}
		params.ManualValue = *req.Threshold
	}
	if req.Percent != nil {
		p := *req.Percent
		if math.IsNaN(p) || p < 0 || p > 100 {
			return invalidParameter(fmt.Sprintf("percent %v outside [0,100]", p))
		}
		params.Percent = p
	}

	switch {
	case req.MaxIterations < 0:
		return invalidParameter(fmt.Sprintf("max_iterations %d is negative", req.MaxIterations))
	case req.MaxIterations > MaxIterationsLimit:
		return invalidParameter(fmt.Sprintf("max_iterations %d exceeds %d", req.MaxIterations, MaxIterationsLimit))
	case req.MaxIterations > 0:
		params.MaxIterations = req.MaxIterations
	}
	return nil
}

func (v *ParamsValidator) resolveMethod(req models.ProcessRequest) (engine.Method, error) {
	if strings.TrimSpace(req.Method) == "" {
		switch {
		case req.Threshold != nil:
			return engine.MethodManual, nil
		case req.Percent != nil:
			return engine.MethodPercentBlack, nil
		default:
			return v.defaultMethod, nil
		}
	}
	method, err := engine.ParseMethod(req.Method)
	if err != nil {
		return "", apperrors.NewValidationError(fmt.Sprintf("unknown threshold method %q", req.Method), err).
			WithCode(apperrors.CodeUnknownMethod)
	}
	return method, nil
}

// ValidateMethods parses a comparison's method list; empty selects every method
func (v *ParamsValidator) ValidateMethods(names []string) ([]engine.Method, error) {
	var methods []engine.Method
	seen := make(map[engine.Method]bool)
	for _, raw := range names {
		// form values may arrive comma separated
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			m, err := engine.ParseMethod(name)
			if err != nil {
				return nil, apperrors.NewValidationError(fmt.Sprintf("unknown threshold method %q", name), err).
					WithCode(apperrors.CodeUnknownMethod)
			}
			if !seen[m] {
				seen[m] = true
				methods = append(methods, m)
			}
		}
	}
	if len(methods) == 0 {
		return engine.Methods(), nil
	}
	return methods, nil
}

// ValidateRounding parses the grayscale rounding mode; empty means rounded
func (v *ParamsValidator) ValidateRounding(s string) (engine.RoundingMode, error) {
	if strings.TrimSpace(s) == "" {
		return engine.RoundingRounded, nil
	}
	mode, err := engine.ParseRoundingMode(s)
	if err != nil {
		return 0, apperrors.NewValidationError(fmt.Sprintf("unknown rounding mode %q", s), err).
			WithCode(apperrors.CodeInvalidParameter)
	}
	return mode, nil
}

// ValidateLanguage checks a tesseract language list such as "eng" or "eng+deu"
func (v *ParamsValidator) ValidateLanguage(lang string) error {
	if lang == "" {
		return nil
	}
	for _, part := range strings.Split(lang, "+") {
		if len(part) < 3 || strings.IndexFunc(part, func(r rune) bool {
			return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_')
		}) >= 0 {
			return invalidParameter(fmt.Sprintf("invalid OCR language %q", lang))
		}
	}
	return nil
}

func invalidParameter(message string) error {
	return apperrors.NewValidationError(message, engine.ErrInvalidParameter).
		WithCode(apperrors.CodeInvalidParameter)
}
