package engine

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultMaxIterations bounds IterativeMean when no limit is configured.
const DefaultMaxIterations = 256

// IterativeMean is the isodata selector: starting from the global mean, the
// threshold moves to the midpoint of the two class means until it settles.
type IterativeMean struct {
	MaxIterations int
}

func (IterativeMean) Method() Method         { return MethodIterativeMean }
func (IterativeMean) Direction() Direction   { return GreaterEqualIsForeground }
func (IterativeMean) Rounding() RoundingMode { return RoundingExact }

// Select iterates until a step moves the threshold by less than one level.
// When the bound is exceeded the last estimate is returned with
// ErrNonConvergence.
func (s IterativeMean) Select(buf *PixelBuffer) (Threshold, error) {
	limit := s.MaxIterations
	if limit <= 0 {
		limit = DefaultMaxIterations
	}
	hist, err := BuildGrayscaleHistogram(buf, RoundingExact)
	if err != nil {
		return Threshold{}, err
	}

	values := hist.Values()
	weights := hist.Weights()
	t := stat.Mean(values, weights)

	result := Threshold{
		Method:    MethodIterativeMean,
		Direction: s.Direction(),
		Rounding:  s.Rounding(),
	}
	for i := 1; i <= limit; i++ {
		// values is ascending, so the split is the first value >= t.
		split := sort.SearchFloat64s(values, t)
		low := classMean(values[:split], weights[:split])
		high := classMean(values[split:], weights[split:])
		next := (low + high) / 2

		result.Iterations = i
		if math.Abs(next-t) < 1 {
			result.Value = t
			return result, nil
		}
		t = next
	}

	result.Value = t
	return result, fmt.Errorf("%w: %d iterations, last estimate %.3f", ErrNonConvergence, limit, t)
}

// classMean is the weighted mean of a class, or 0 for an empty class.
func classMean(values, weights []float64) float64 {
	if floats.Sum(weights) == 0 {
		return 0
	}
	return stat.Mean(values, weights)
}
