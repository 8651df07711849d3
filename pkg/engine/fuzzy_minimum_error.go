package engine

import (
	"fmt"
	"math"
)

// FuzzyMinimumError replaces the hard classification error with a fuzzy
// entropy of Gaussian class memberships.
type FuzzyMinimumError struct{}

func (FuzzyMinimumError) Method() Method         { return MethodFuzzyMinimumError }
func (FuzzyMinimumError) Direction() Direction   { return LessEqualIsBackground }
func (FuzzyMinimumError) Rounding() RoundingMode { return RoundingRounded }

// Select minimises sum_i p(i) * sum_k mu_k(i) ln mu_k(i) over splits whose
// classes both have non-zero variance. The first minimum wins.
func (s FuzzyMinimumError) Select(buf *PixelBuffer) (Threshold, error) {
	hist, err := BuildGrayscaleHistogram(buf, s.Rounding())
	if err != nil {
		return Threshold{}, err
	}

	total := float64(hist.Total())
	prob := make([]float64, Levels)
	for i, c := range hist.Counts {
		prob[i] = float64(c) / total
	}

	sp := newSplitter(hist)
	best, bestT := math.Inf(1), -1
	for t := 0; t < Levels; t++ {
		lo, hi, ok := sp.split(t)
		if !ok {
			continue
		}
		e := fuzzyError(prob, lo, hi)
		if e < best {
			best, bestT = e, t
		}
	}
	if bestT < 0 {
		return Threshold{}, fmt.Errorf("%w: %s needs two classes with non-zero variance", ErrNoValidSplit, MethodFuzzyMinimumError)
	}

	return Threshold{
		Method:    MethodFuzzyMinimumError,
		Value:     float64(bestT),
		Direction: s.Direction(),
		Rounding:  s.Rounding(),
		Score:     best,
	}, nil
}

func fuzzyError(prob []float64, lo, hi classStats) float64 {
	var e float64
	for i, p := range prob {
		if p == 0 {
			continue
		}
		x := float64(i)
		p1 := math.Exp(-(x - lo.mean) * (x - lo.mean) / (2 * lo.variance))
		p2 := math.Exp(-(x - hi.mean) * (x - hi.mean) / (2 * hi.variance))
		sum := p1 + p2
		if sum == 0 {
			continue
		}
		if mu := p1 / sum; mu > 0 {
			e += p * mu * math.Log(mu)
		}
		if mu := p2 / sum; mu > 0 {
			e += p * mu * math.Log(mu)
		}
	}
	return e
}
