package engine

import "gonum.org/v1/gonum/stat"

// classStats summarises one side of a candidate split.
type classStats struct {
	weight   float64 // share of all pixels
	mean     float64
	variance float64 // population variance about mean
}

// splitter evaluates two-class statistics of a rounded histogram.
type splitter struct {
	levels []float64
	counts []float64
	total  float64
}

func newSplitter(hist GrayscaleHistogram) splitter {
	return splitter{
		levels: hist.Values(),
		counts: hist.Weights(),
		total:  float64(hist.Total()),
	}
}

// split returns the statistics of bins [0,t] and (t,255]. ok is false when a
// class is empty or has zero variance.
func (s splitter) split(t int) (lo, hi classStats, ok bool) {
	lo, okLo := s.class(0, t+1)
	hi, okHi := s.class(t+1, len(s.levels))
	return lo, hi, okLo && okHi
}

func (s splitter) class(from, to int) (classStats, bool) {
	levels, counts := s.levels[from:to], s.counts[from:to]
	var n float64
	for _, c := range counts {
		n += c
	}
	if n == 0 {
		return classStats{}, false
	}
	mean, variance := stat.PopMeanVariance(levels, counts)
	if variance <= 0 {
		return classStats{}, false
	}
	return classStats{weight: n / s.total, mean: mean, variance: variance}, true
}
