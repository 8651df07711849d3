package engine

import (
	"fmt"
	"math"
)

// MinimumError is the Kittler-Illingworth minimum classification error
// selector over the rounded grayscale histogram.
type MinimumError struct{}

func (MinimumError) Method() Method         { return MethodMinimumError }
func (MinimumError) Direction() Direction   { return LessEqualIsBackground }
func (MinimumError) Rounding() RoundingMode { return RoundingRounded }

// Select minimises w1*ln(var1) + w2*ln(var2). Splits where either class has
// zero variance are skipped; the first minimum wins.
func (s MinimumError) Select(buf *PixelBuffer) (Threshold, error) {
	hist, err := BuildGrayscaleHistogram(buf, s.Rounding())
	if err != nil {
		return Threshold{}, err
	}

	sp := newSplitter(hist)
	best, bestT := math.Inf(1), -1
	for t := 0; t < Levels; t++ {
		lo, hi, ok := sp.split(t)
		if !ok {
			continue
		}
		e := lo.weight*math.Log(lo.variance) + hi.weight*math.Log(hi.variance)
		if e < best {
			best, bestT = e, t
		}
	}
	if bestT < 0 {
		return Threshold{}, fmt.Errorf("%w: %s needs two classes with non-zero variance", ErrNoValidSplit, MethodMinimumError)
	}

	return Threshold{
		Method:    MethodMinimumError,
		Value:     float64(bestT),
		Direction: s.Direction(),
		Rounding:  s.Rounding(),
		Score:     best,
	}, nil
}
