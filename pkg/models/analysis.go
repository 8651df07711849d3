package models

import "time"

// ImageInfo describes the image a result was computed from.
type ImageInfo struct {
	Source         string `json:"source"`
	Format         string `json:"format,omitempty"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	OriginalWidth  int    `json:"original_width,omitempty"`
	OriginalHeight int    `json:"original_height,omitempty"`
	Scaled         bool   `json:"scaled,omitempty"`
}

// ThresholdResult is a selected threshold together with the conventions the
// binarizer applies it with.
type ThresholdResult struct {
	Method     string  `json:"method"`
	Value      float64 `json:"value"`
	Level      int     `json:"level"`
	Direction  string  `json:"direction"`
	Rounding   string  `json:"rounding"`
	Score      float64 `json:"score,omitempty"`
	Iterations int     `json:"iterations,omitempty"`
	Clamped    bool    `json:"clamped,omitempty"`

	// ForegroundRatio is the share of pixels that binarize to white.
	ForegroundRatio float64 `json:"foreground_ratio"`
}

// ChannelRange is the occupied intensity range of one channel.
type ChannelRange struct {
	Min        uint8 `json:"min"`
	Max        uint8 `json:"max"`
	Degenerate bool  `json:"degenerate,omitempty"`
}

// StretchSummary reports the ranges a contrast stretch used.
type StretchSummary struct {
	Red        ChannelRange `json:"red"`
	Green      ChannelRange `json:"green"`
	Blue       ChannelRange `json:"blue"`
	Degenerate []string     `json:"degenerate_channels,omitempty"`
}

// ChannelStatistics summarises a 256 level histogram.
type ChannelStatistics struct {
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Skew    float64 `json:"skew"`
	Median  float64 `json:"median"`
	P05     float64 `json:"p05"`
	P95     float64 `json:"p95"`
	Mode    float64 `json:"mode"`
	Min     uint8   `json:"min"`
	Max     uint8   `json:"max"`
	Entropy float64 `json:"entropy_bits"`
}

// HistogramResult is one histogram with its statistics.
type HistogramResult struct {
	Counts     [256]int          `json:"counts"`
	Statistics ChannelStatistics `json:"statistics"`
}

// GrayscaleHistogramResult is the grayscale histogram under one rounding
// mode, folded onto 256 levels.
type GrayscaleHistogramResult struct {
	Rounding string `json:"rounding"`
	HistogramResult
}

// HistogramAnalysis holds every histogram of an image.
type HistogramAnalysis struct {
	Red       HistogramResult          `json:"red"`
	Green     HistogramResult          `json:"green"`
	Blue      HistogramResult          `json:"blue"`
	Grayscale GrayscaleHistogramResult `json:"grayscale"`
	Pixels    int                      `json:"pixels"`
}

// HistogramResponse is returned by the histogram endpoint.
type HistogramResponse struct {
	Image             ImageInfo         `json:"image"`
	Timestamp         time.Time         `json:"timestamp"`
	ProcessingTimeSec float64           `json:"processing_time_sec"`
	Histograms        HistogramAnalysis `json:"histograms"`
}

// ThresholdResponse is returned by the threshold endpoint.
type ThresholdResponse struct {
	Image             ImageInfo       `json:"image"`
	Timestamp         time.Time       `json:"timestamp"`
	ProcessingTimeSec float64         `json:"processing_time_sec"`
	Threshold         ThresholdResult `json:"threshold"`
	Stretch           *StretchSummary `json:"stretch,omitempty"`
}

// MethodComparison is the outcome of one method in a comparison.
type MethodComparison struct {
	Method    string           `json:"method"`
	Threshold *ThresholdResult `json:"threshold,omitempty"`
	Error     *ErrorResponse   `json:"error,omitempty"`
}

// CompareResponse is returned by the compare endpoint.
type CompareResponse struct {
	Image             ImageInfo          `json:"image"`
	Timestamp         time.Time          `json:"timestamp"`
	ProcessingTimeSec float64            `json:"processing_time_sec"`
	Stretch           *StretchSummary    `json:"stretch,omitempty"`
	Results           []MethodComparison `json:"results"`
}

// OCRResult represents OCR analysis results
type OCRResult struct {
	ExtractedText string `json:"extracted_text"`
	ExpectedText  string `json:"expected_text,omitempty"`
	Language      string `json:"language,omitempty"`

	// Error rates against ExpectedText, present only when it was given.
	WER      *float64 `json:"word_error_rate,omitempty"`
	CER      *float64 `json:"character_error_rate,omitempty"`
	OCRError string   `json:"ocr_error,omitempty"`
}

// OCRResponse is returned by the OCR check endpoint.
type OCRResponse struct {
	Image             ImageInfo       `json:"image"`
	Timestamp         time.Time       `json:"timestamp"`
	ProcessingTimeSec float64         `json:"processing_time_sec"`
	Threshold         ThresholdResult `json:"threshold"`
	Stretch           *StretchSummary `json:"stretch,omitempty"`
	OCR               OCRResult       `json:"ocr"`
}
