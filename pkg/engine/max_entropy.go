package engine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// MaxEntropy picks the split maximising the sum of the two class entropies of
// the rounded grayscale histogram.
type MaxEntropy struct{}

func (MaxEntropy) Method() Method         { return MethodMaxEntropy }
func (MaxEntropy) Direction() Direction   { return LessEqualIsBackground }
func (MaxEntropy) Rounding() RoundingMode { return RoundingRounded }

// Select evaluates every split leaving both classes non-empty. The first
// maximum wins.
func (s MaxEntropy) Select(buf *PixelBuffer) (Threshold, error) {
	hist, err := BuildGrayscaleHistogram(buf, s.Rounding())
	if err != nil {
		return Threshold{}, err
	}

	total := hist.Total()
	scratch := make([]float64, Levels)
	best, bestT := math.Inf(-1), -1
	below := 0
	for t := 0; t < Levels; t++ {
		below += hist.Counts[t]
		above := total - below
		if below == 0 || above == 0 {
			continue
		}
		h := classEntropy(hist.Counts[:t+1], below, scratch) +
			classEntropy(hist.Counts[t+1:], above, scratch)
		if h > best {
			best, bestT = h, t
		}
	}
	if bestT < 0 {
		return Threshold{}, fmt.Errorf("%w: %s needs two occupied classes", ErrNoValidSplit, MethodMaxEntropy)
	}

	return Threshold{
		Method:    MethodMaxEntropy,
		Value:     float64(bestT),
		Direction: s.Direction(),
		Rounding:  s.Rounding(),
		Score:     best,
	}, nil
}

// classEntropy is the Shannon entropy in bits of counts normalised by n.
func classEntropy(counts []int, n int, scratch []float64) float64 {
	p := scratch[:len(counts)]
	for i, c := range counts {
		p[i] = float64(c) / float64(n)
	}
	return stat.Entropy(p) / math.Ln2
}
