package engine

import (
	"fmt"
	"math"
	"strings"
)

// Method names a threshold selection strategy.
type Method string

const (
	MethodManual            Method = "manual"
	MethodPercentBlack      Method = "percent_black"
	MethodIterativeMean     Method = "iterative_mean"
	MethodMaxEntropy        Method = "max_entropy"
	MethodMinimumError      Method = "minimum_error"
	MethodFuzzyMinimumError Method = "fuzzy_minimum_error"
)

// Methods lists every supported method in presentation order.
func Methods() []Method {
	return []Method{
		MethodManual,
		MethodPercentBlack,
		MethodIterativeMean,
		MethodMaxEntropy,
		MethodMinimumError,
		MethodFuzzyMinimumError,
	}
}

var methodAliases = map[string]Method{
	"manual":            MethodManual,
	"percentblack":      MethodPercentBlack,
	"iterativemean":     MethodIterativeMean,
	"isodata":           MethodIterativeMean,
	"maxentropy":        MethodMaxEntropy,
	"entropy":           MethodMaxEntropy,
	"minimumerror":      MethodMinimumError,
	"fuzzyminimumerror": MethodFuzzyMinimumError,
}

// ParseMethod accepts snake_case, kebab-case and camelCase method names.
func ParseMethod(s string) (Method, error) {
	key := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	if m, ok := methodAliases[key]; ok {
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Direction is the comparison a threshold is applied with.
type Direction int

const (
	// GreaterEqualIsForeground maps gray >= t to white and everything else to black.
	GreaterEqualIsForeground Direction = iota
	// LessEqualIsBackground maps gray <= t to black and everything else to white.
	LessEqualIsBackground
)

func (d Direction) String() string {
	switch d {
	case GreaterEqualIsForeground:
		return "greater_equal_is_foreground"
	case LessEqualIsBackground:
		return "less_equal_is_background"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Foreground reports whether a pixel of the given gray value becomes white.
func (d Direction) Foreground(gray, t float64) bool {
	if d == LessEqualIsBackground {
		return !(gray <= t)
	}
	return gray >= t
}

// Threshold is the result of one selector invocation.
type Threshold struct {
	Method    Method
	Value     float64
	Direction Direction
	Rounding  RoundingMode

	// Score is the optimised criterion of histogram selectors: total entropy
	// for MaxEntropy, classification error for the minimum error variants.
	Score float64

	// Iterations is the number of refinement rounds IterativeMean ran.
	Iterations int

	// Clamped is set when PercentBlack had to clamp its rank into range.
	Clamped bool
}

// Level returns the threshold as the nearest integer in [0,255].
func (t Threshold) Level() int {
	v := int(math.Round(t.Value))
	if v < 0 {
		return 0
	}
	if v > Levels-1 {
		return Levels - 1
	}
	return v
}

// Selector chooses a threshold for a buffer.
type Selector interface {
	Method() Method
	Direction() Direction
	Rounding() RoundingMode
	Select(buf *PixelBuffer) (Threshold, error)
}

// Params carries the caller-supplied values some selectors need.
type Params struct {
	ManualValue   int
	Percent       float64
	MaxIterations int
}

// NewSelector builds the selector for method.
func NewSelector(method Method, params Params) (Selector, error) {
	switch method {
	case MethodManual:
		return Manual{Value: params.ManualValue}, nil
	case MethodPercentBlack:
		return PercentBlack{Percent: params.Percent}, nil
	case MethodIterativeMean:
		return IterativeMean{MaxIterations: params.MaxIterations}, nil
	case MethodMaxEntropy:
		return MaxEntropy{}, nil
	case MethodMinimumError:
		return MinimumError{}, nil
	case MethodFuzzyMinimumError:
		return FuzzyMinimumError{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, string(method))
	}
}

// SelectThreshold runs one selector against buf.
func SelectThreshold(method Method, buf *PixelBuffer, params Params) (Threshold, error) {
	selector, err := NewSelector(method, params)
	if err != nil {
		return Threshold{}, err
	}
	return selector.Select(buf)
}

// MethodInfo describes the conventions a method uses.
type MethodInfo struct {
	Method     Method       `json:"method"`
	Direction  Direction    `json:"direction"`
	Rounding   RoundingMode `json:"rounding"`
	Parameters []string     `json:"parameters,omitempty"`
}

// Describe returns the conventions of method.
func Describe(method Method) (MethodInfo, error) {
	selector, err := NewSelector(method, Params{})
	if err != nil {
		return MethodInfo{}, err
	}
	info := MethodInfo{
		Method:    method,
		Direction: selector.Direction(),
		Rounding:  selector.Rounding(),
	}
	switch method {
	case MethodManual:
		info.Parameters = []string{"threshold"}
	case MethodPercentBlack:
		info.Parameters = []string{"percent"}
	case MethodIterativeMean:
		info.Parameters = []string{"max_iterations"}
	}
	return info, nil
}
