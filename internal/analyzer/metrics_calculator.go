package analyzer

import (
	"math"
	"sync"

	"go-image-threshold/pkg/engine"
	"go-image-threshold/pkg/models"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// levelValues holds the intensities 0..255 in ascending order, as required
// by stat.Quantile.
var levelValues = func() []float64 {
	v := make([]float64, engine.Levels)
	for i := range v {
		v[i] = float64(i)
	}
	return v
}()

// metricsCalculator implements MetricsCalculator on top of gonum/stat
type metricsCalculator struct {
	slicePool sync.Pool
}

// NewMetricsCalculator creates a new metrics calculator using Gonum
func NewMetricsCalculator() MetricsCalculator {
	return &metricsCalculator{
		slicePool: sync.Pool{
			New: func() interface{} {
				s := make([]float64, engine.Levels)
				return &s
			},
		},
	}
}

// CalculateHistogramAnalysis builds every histogram of buf and its statistics.
// The channel histograms are scanned once; the grayscale histogram is built
// under rounding and folded onto 256 levels.
func (mc *metricsCalculator) CalculateHistogramAnalysis(buf *engine.PixelBuffer, rounding engine.RoundingMode) (models.HistogramAnalysis, error) {
	channels, err := engine.BuildChannelHistograms(buf)
	if err != nil {
		return models.HistogramAnalysis{}, err
	}
	gray, err := engine.BuildGrayscaleHistogram(buf, rounding)
	if err != nil {
		return models.HistogramAnalysis{}, err
	}

	levels := gray.Levels()
	result := models.HistogramAnalysis{
		Red:    mc.histogramResult(channels.Red),
		Green:  mc.histogramResult(channels.Green),
		Blue:   mc.histogramResult(channels.Blue),
		Pixels: buf.PixelCount(),
		Grayscale: models.GrayscaleHistogramResult{
			Rounding:        rounding.String(),
			HistogramResult: mc.histogramResult(levels),
		},
	}
	return result, nil
}

func (mc *metricsCalculator) histogramResult(counts [engine.Levels]int) models.HistogramResult {
	return models.HistogramResult{
		Counts:     counts,
		Statistics: mc.CalculateHistogramStatistics(counts),
	}
}

// CalculateHistogramStatistics summarises a 256 level histogram. An empty
// histogram yields zero statistics.
func (mc *metricsCalculator) CalculateHistogramStatistics(counts [engine.Levels]int) models.ChannelStatistics {
	wp := mc.slicePool.Get().(*[]float64)
	defer mc.slicePool.Put(wp)
	weights := *wp
	for i, c := range counts {
		weights[i] = float64(c)
	}

	total := floats.Sum(weights)
	if total == 0 {
		return models.ChannelStatistics{}
	}

	h := engine.ChannelHistogram(counts)
	span, _ := engine.RangeOf(&h)

	mean, std := stat.PopMeanStdDev(levelValues, weights)
	result := models.ChannelStatistics{
		Mean:   mean,
		StdDev: std,
		Median: stat.Quantile(0.5, stat.Empirical, levelValues, weights),
		P05:    stat.Quantile(0.05, stat.Empirical, levelValues, weights),
		P95:    stat.Quantile(0.95, stat.Empirical, levelValues, weights),
		Mode:   float64(floats.MaxIdx(weights)),
		Min:    span.Min,
		Max:    span.Max,
	}
	if total > 2 && std > 0 {
		result.Skew = finiteOrZero(stat.Skew(levelValues, weights))
	}

	floats.Scale(1/total, weights)
	result.Entropy = stat.Entropy(weights) / math.Ln2
	return result
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
