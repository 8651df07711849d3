package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-image-threshold/internal/analyzer"
	apperrors "go-image-threshold/internal/errors"
	"go-image-threshold/internal/observer"
	"go-image-threshold/internal/ocr"
	"go-image-threshold/internal/repository"
	"go-image-threshold/internal/storage"
	"go-image-threshold/pkg/engine"
	"go-image-threshold/pkg/models"
	"go-image-threshold/pkg/textscore"
)

// Operation names used in events and metrics
const (
	OperationHistogram = "histogram"
	OperationThreshold = "threshold"
	OperationCompare   = "compare"
	OperationStretch   = "stretch"
	OperationBinarize  = "binarize"
	OperationOCR       = "binarize_ocr"
)

// ThresholdService loads images and runs histogram and threshold operations
// on them
type ThresholdService interface {
	Histogram(ctx context.Context, source repository.ImageSource, rounding engine.RoundingMode) (*models.HistogramResponse, error)
	Threshold(ctx context.Context, source repository.ImageSource, options analyzer.ProcessingOptions) (*models.ThresholdResponse, error)
	Compare(ctx context.Context, source repository.ImageSource, methods []engine.Method, options analyzer.ProcessingOptions) (*models.CompareResponse, error)
	Stretch(ctx context.Context, source repository.ImageSource) (*RenderedImage, error)
	Binarize(ctx context.Context, source repository.ImageSource, options analyzer.ProcessingOptions) (*RenderedImage, error)
	BinarizeWithOCR(ctx context.Context, source repository.ImageSource, options analyzer.ProcessingOptions) (*models.OCRResponse, error)

	Methods() models.MethodsResponse
	Stats() models.StatsResponse
	ValidateSource(source repository.ImageSource) error
}

// RenderedImage is a processed image encoded as PNG
type RenderedImage struct {
	Image     models.ImageInfo
	PNG       []byte
	Threshold *models.ThresholdResult
	Stretch   *models.StretchSummary
}

// Config holds service limits
type Config struct {
	// MaxImageDimension scales larger images down before processing; zero disables.
	MaxImageDimension int
	ProcessingTimeout time.Duration
}

type thresholdService struct {
	imageRepo  repository.ImageRepository
	processor  analyzer.ImageProcessor
	publisher  observer.Subject
	metrics    *observer.MetricsObserver
	recognizer ocr.Recognizer
	cfg        Config
}

// NewThresholdService creates the service. metrics and recognizer may be nil;
// without a recognizer the OCR operation reports that OCR is unavailable.
func NewThresholdService(
	imageRepository repository.ImageRepository,
	processor analyzer.ImageProcessor,
	publisher observer.Subject,
	metrics *observer.MetricsObserver,
	recognizer ocr.Recognizer,
	cfg Config,
) ThresholdService {
	if publisher == nil {
		publisher = observer.NewSyncEventPublisher()
	}
	return &thresholdService{
		imageRepo:  imageRepository,
		processor:  processor,
		publisher:  publisher,
		metrics:    metrics,
		recognizer: recognizer,
		cfg:        cfg,
	}
}

// Histogram builds every histogram of the image with statistics
func (s *thresholdService) Histogram(ctx context.Context, source repository.ImageSource, rounding engine.RoundingMode) (*models.HistogramResponse, error) {
	ctx, op := s.begin(ctx, OperationHistogram, "", source)
	defer op.cancel()

	buf, info, err := s.load(ctx, source)
	if err != nil {
		return nil, op.fail(err)
	}

	analysis, err := s.processor.AnalyzeHistograms(ctx, buf, rounding)
	if err != nil {
		return nil, op.fail(s.processingError(ctx, nil, err))
	}

	elapsed := op.succeed("pixels", analysis.Pixels, "rounding", rounding.String())
	return &models.HistogramResponse{
		Image:             info,
		Timestamp:         time.Now().UTC(),
		ProcessingTimeSec: elapsed.Seconds(),
		Histograms:        analysis,
	}, nil
}

// Threshold selects a threshold and reports it with its foreground ratio
func (s *thresholdService) Threshold(ctx context.Context, source repository.ImageSource, options analyzer.ProcessingOptions) (*models.ThresholdResponse, error) {
	ctx, op := s.begin(ctx, OperationThreshold, string(options.Method), source)
	defer op.cancel()

	if err := options.Validate(); err != nil {
		return nil, op.fail(apperrors.FromEngine(err))
	}
	buf, info, err := s.load(ctx, source)
	if err != nil {
		return nil, op.fail(err)
	}

	outcome, err := s.processor.SelectThreshold(ctx, buf, options)
	if err != nil {
		return nil, op.fail(s.processingError(ctx, outcome, err))
	}

	elapsed := op.succeed("threshold", outcome.Threshold.Value)
	return &models.ThresholdResponse{
		Image:             info,
		Timestamp:         time.Now().UTC(),
		ProcessingTimeSec: elapsed.Seconds(),
		Threshold:         convertThreshold(outcome.Threshold, outcome.ForegroundRatio),
		Stretch:           convertStretch(outcome.Stretch),
	}, nil
}

// Compare runs several methods on the same image
func (s *thresholdService) Compare(ctx context.Context, source repository.ImageSource, methods []engine.Method, options analyzer.ProcessingOptions) (*models.CompareResponse, error) {
	ctx, op := s.begin(ctx, OperationCompare, "", source)
	defer op.cancel()

	buf, info, err := s.load(ctx, source)
	if err != nil {
		return nil, op.fail(err)
	}

	outcome, err := s.processor.CompareMethods(ctx, buf, methods, options)
	if err != nil {
		return nil, op.fail(s.processingError(ctx, nil, err))
	}

	elapsed := op.succeed("methods", len(outcome.Results))
	return &models.CompareResponse{
		Image:             info,
		Timestamp:         time.Now().UTC(),
		ProcessingTimeSec: elapsed.Seconds(),
		Stretch:           convertStretch(outcome.Stretch),
		Results:           convertComparison(outcome),
	}, nil
}

// Stretch applies a contrast stretch and encodes the result
func (s *thresholdService) Stretch(ctx context.Context, source repository.ImageSource) (*RenderedImage, error) {
	ctx, op := s.begin(ctx, OperationStretch, "", source)
	defer op.cancel()

	buf, info, err := s.load(ctx, source)
	if err != nil {
		return nil, op.fail(err)
	}

	stretched, report, err := s.processor.Stretch(ctx, buf)
	if err != nil {
		return nil, op.fail(s.processingError(ctx, nil, err))
	}
	data, err := storage.EncodePNG(stretched)
	if err != nil {
		return nil, op.fail(apperrors.NewInternalError("failed to encode image", err))
	}

	op.succeed("degenerate_channels", len(report.Degenerate))
	return &RenderedImage{
		Image:   info,
		PNG:     data,
		Stretch: convertStretch(&report),
	}, nil
}

// Binarize selects a threshold, applies it and encodes the result
func (s *thresholdService) Binarize(ctx context.Context, source repository.ImageSource, options analyzer.ProcessingOptions) (*RenderedImage, error) {
	ctx, op := s.begin(ctx, OperationBinarize, string(options.Method), source)
	defer op.cancel()

	rendered, err := s.binarize(ctx, source, options)
	if err != nil {
		return nil, op.fail(err)
	}
	op.succeed("threshold", rendered.Threshold.Value, "foreground_ratio", rendered.Threshold.ForegroundRatio)
	return rendered, nil
}

// BinarizeWithOCR binarizes the image and runs OCR on the result, scoring the
// text against the expected text when one is given
func (s *thresholdService) BinarizeWithOCR(ctx context.Context, source repository.ImageSource, options analyzer.ProcessingOptions) (*models.OCRResponse, error) {
	ctx, op := s.begin(ctx, OperationOCR, string(options.Method), source)
	defer op.cancel()

	if s.recognizer == nil {
		return nil, op.fail(apperrors.NewUnavailableError("OCR is not available", nil).WithCode(apperrors.CodeOCRUnavailable))
	}

	rendered, err := s.binarize(ctx, source, options)
	if err != nil {
		return nil, op.fail(err)
	}

	result := models.OCRResult{
		ExpectedText: options.OCRExpectedText,
		Language:     options.OCRLanguage,
	}
	text, err := s.recognizer.Recognize(ctx, rendered.PNG, options.OCRLanguage)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, op.fail(apperrors.NewTimeoutError("OCR timed out", ctxErr))
		}
		// the threshold is still useful without text
		result.OCRError = err.Error()
	} else {
		result.ExtractedText = text
		if options.OCRExpectedText != "" {
			score := textscore.Compare(options.OCRExpectedText, text)
			result.WER = &score.WER
			result.CER = &score.CER
		}
	}

	fields := []interface{}{"threshold", rendered.Threshold.Value, "ocr_ok", result.OCRError == ""}
	if result.CER != nil {
		fields = append(fields, "character_error_rate", *result.CER)
	}
	total := op.succeed(fields...)

	return &models.OCRResponse{
		Image:             rendered.Image,
		Timestamp:         time.Now().UTC(),
		ProcessingTimeSec: total.Seconds(),
		Threshold:         *rendered.Threshold,
		Stretch:           rendered.Stretch,
		OCR:               result,
	}, nil
}

func (s *thresholdService) binarize(ctx context.Context, source repository.ImageSource, options analyzer.ProcessingOptions) (*RenderedImage, error) {
	if err := options.Validate(); err != nil {
		return nil, apperrors.FromEngine(err)
	}
	buf, info, err := s.load(ctx, source)
	if err != nil {
		return nil, err
	}

	outcome, err := s.processor.Binarize(ctx, buf, options)
	if err != nil {
		return nil, s.processingError(ctx, outcome, err)
	}
	data, err := storage.EncodePNG(outcome.Binary)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode image", err)
	}

	tr := convertThreshold(outcome.Threshold, outcome.ForegroundRatio)
	return &RenderedImage{
		Image:     info,
		PNG:       data,
		Threshold: &tr,
		Stretch:   convertStretch(outcome.Stretch),
	}, nil
}

// Methods lists the available threshold methods
func (s *thresholdService) Methods() models.MethodsResponse {
	return describeMethods()
}

// Stats reports processing counters and the comparison pool state
func (s *thresholdService) Stats() models.StatsResponse {
	var resp models.StatsResponse
	if s.metrics != nil {
		snap := s.metrics.Snapshot()
		resp = models.StatsResponse{
			TotalRequests:      snap.TotalRequests,
			SuccessfulRequests: snap.SuccessfulRequests,
			FailedRequests:     snap.FailedRequests,
			AvgProcessingMs:    float64(snap.AvgProcessingTime().Microseconds()) / 1000,
			ByOperation:        snap.ByOperation,
			ByMethod:           snap.ByMethod,
			ImagesFetched:      snap.ImagesFetched,
			ImageFetchFailures: snap.ImageFetchFailures,
		}
	}
	ws := s.processor.Stats()
	resp.Workers = models.WorkerStats{
		TotalJobs:     ws.TotalJobs,
		CompletedJobs: ws.CompletedJobs,
		ActiveWorkers: ws.ActiveWorkers,
	}
	return resp
}

// ValidateSource checks a source without loading it
func (s *thresholdService) ValidateSource(source repository.ImageSource) error {
	if err := s.imageRepo.ValidateSource(source); err != nil {
		return loadError(err)
	}
	if !s.imageRepo.Supports(source.Kind) {
		return loadError(fmt.Errorf("%w: no backend for %s sources", repository.ErrRepositoryUnavailable, source.Kind))
	}
	return nil
}

// load fetches, scales and converts the image a source addresses
func (s *thresholdService) load(ctx context.Context, source repository.ImageSource) (*engine.PixelBuffer, models.ImageInfo, error) {
	start := time.Now()
	img, meta, err := s.imageRepo.LoadImage(ctx, source)
	if err != nil {
		s.publish(ctx, observer.ProcessingEvent{
			EventType:      observer.ImageFetchFailed,
			Source:         source.String(),
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, models.ImageInfo{}, loadError(err)
	}

	info := models.ImageInfo{
		Source: source.String(),
		Format: meta.Format,
		Width:  meta.Width,
		Height: meta.Height,
	}
	scaledImg, scaled := storage.ScaleToFit(img, s.cfg.MaxImageDimension)
	if scaled {
		b := scaledImg.Bounds()
		info.OriginalWidth, info.OriginalHeight = info.Width, info.Height
		info.Width, info.Height = b.Dx(), b.Dy()
		info.Scaled = true
	}

	s.publish(ctx, observer.ProcessingEvent{
		EventType:      observer.ImageFetched,
		Source:         source.String(),
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata: map[string]interface{}{
			"format": info.Format,
			"width":  info.Width,
			"height": info.Height,
			"scaled": info.Scaled,
		},
	})
	return engine.FromImage(scaledImg), info, nil
}

// operation tracks one service call from start to outcome
type operation struct {
	s         *thresholdService
	ctx       context.Context
	cancel    context.CancelFunc
	name      string
	method    string
	source    string
	startTime time.Time
}

// begin applies the processing timeout and publishes the start event
func (s *thresholdService) begin(ctx context.Context, name, method string, source repository.ImageSource) (context.Context, *operation) {
	cancel := context.CancelFunc(func() {})
	if s.cfg.ProcessingTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ProcessingTimeout)
	}

	op := &operation{
		s:         s,
		ctx:       ctx,
		cancel:    cancel,
		name:      name,
		method:    method,
		source:    source.String(),
		startTime: time.Now(),
	}
	s.publish(ctx, observer.ProcessingEvent{
		EventType: observer.ProcessingStarted,
		Operation: name,
		Method:    method,
		Source:    op.source,
	})
	return ctx, op
}

// fail publishes the failure and returns err
func (op *operation) fail(err error) error {
	op.s.publish(op.ctx, observer.ProcessingEvent{
		EventType:      observer.ProcessingFailed,
		Operation:      op.name,
		Method:         op.method,
		Source:         op.source,
		ProcessingTime: time.Since(op.startTime),
		ErrorMessage:   err.Error(),
	})
	return err
}

// succeed publishes completion with key/value metadata and returns the
// elapsed time
func (op *operation) succeed(kv ...interface{}) time.Duration {
	elapsed := time.Since(op.startTime)
	event := observer.ProcessingEvent{
		EventType:      observer.ProcessingCompleted,
		Operation:      op.name,
		Method:         op.method,
		Source:         op.source,
		ProcessingTime: elapsed,
		Success:        true,
	}
	if len(kv) > 0 {
		event.Metadata = make(map[string]interface{}, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			if key, ok := kv[i].(string); ok {
				event.Metadata[key] = kv[i+1]
			}
		}
	}
	op.s.publish(op.ctx, event)
	return elapsed
}

func (s *thresholdService) publish(ctx context.Context, event observer.ProcessingEvent) {
	s.publisher.NotifyObservers(ctx, event)
}

// processingError maps engine and context failures
func (s *thresholdService) processingError(ctx context.Context, outcome *analyzer.ThresholdOutcome, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewTimeoutError("processing timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.NewProcessingError("request cancelled", err)
	}
	return thresholdError(outcome, err)
}

// loadError maps repository and storage failures onto application errors
func loadError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("image fetch timed out", err)
	case errors.Is(err, repository.ErrInvalidImageSource):
		return apperrors.NewValidationError("invalid image source", err).WithCode(apperrors.CodeInvalidSource)
	case errors.Is(err, repository.ErrRepositoryUnavailable):
		return apperrors.NewValidationError("image source is not configured", err).WithCode(apperrors.CodeInvalidSource)
	case errors.Is(err, repository.ErrImageNotFound):
		return apperrors.NewNotFoundError("image not found", err)
	case errors.Is(err, storage.ErrImageTooLarge), errors.Is(err, storage.ErrUnsupportedFormat):
		return apperrors.NewValidationError("unsupported or oversized image", err).WithCode(apperrors.CodeImageDecode)
	default:
		return apperrors.NewNetworkError("failed to fetch image", err)
	}
}
