package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-image-threshold/internal/analyzer"
	"go-image-threshold/internal/config"
	apperrors "go-image-threshold/internal/errors"
	"go-image-threshold/internal/logger"
	"go-image-threshold/internal/repository"
	"go-image-threshold/internal/service"
	"go-image-threshold/pkg/models"
	"go-image-threshold/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"
)

const version = "1.0.0"

// uploadField is the multipart field carrying an uploaded image
const uploadField = "image"

type handler struct {
	svc       service.ThresholdService
	validator *validation.ParamsValidator
	cfg       *config.Config
}

func NewHandler(svc service.ThresholdService, cfg *config.Config) http.Handler {
	h := &handler{
		svc:       svc,
		validator: validation.NewParamsValidator(cfg.IsodataMaxIterations),
		cfg:       cfg,
	}

	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.GET("/methods", h.methods)
	r.GET("/stats", h.stats)

	r.POST("/histogram", h.histogram)
	r.POST("/threshold", h.threshold)
	r.POST("/compare", h.compare)
	r.POST("/stretch", h.stretch)
	r.POST("/binarize", h.binarize)
	r.POST("/binarize/ocr", h.binarizeOCR)

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handler) methods(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Methods())
}

func (h *handler) stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Stats())
}

func (h *handler) histogram(c *gin.Context) {
	req, source, ok := h.bind(c)
	if !ok {
		return
	}
	rounding, err := h.validator.ValidateRounding(req.Rounding)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	resp, err := h.svc.Histogram(ctx, source, rounding)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) threshold(c *gin.Context) {
	req, source, ok := h.bind(c)
	if !ok {
		return
	}
	params, err := h.validator.ValidateThreshold(req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	resp, err := h.svc.Threshold(ctx, source, toOptions(params))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) compare(c *gin.Context) {
	req, source, ok := h.bind(c)
	if !ok {
		return
	}
	params, methods, err := h.validator.ValidateCompare(req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	resp, err := h.svc.Compare(ctx, source, methods, toOptions(params))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) stretch(c *gin.Context) {
	_, source, ok := h.bind(c)
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	rendered, err := h.svc.Stretch(ctx, source)
	if err != nil {
		_ = c.Error(err)
		return
	}
	writePNG(c, rendered)
}

func (h *handler) binarize(c *gin.Context) {
	req, source, ok := h.bind(c)
	if !ok {
		return
	}
	params, err := h.validator.ValidateThreshold(req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	rendered, err := h.svc.Binarize(ctx, source, toOptions(params))
	if err != nil {
		_ = c.Error(err)
		return
	}
	writePNG(c, rendered)
}

func (h *handler) binarizeOCR(c *gin.Context) {
	req, source, ok := h.bind(c)
	if !ok {
		return
	}
	params, err := h.validator.ValidateThreshold(req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.validator.ValidateLanguage(req.Language); err != nil {
		_ = c.Error(err)
		return
	}

	language := req.Language
	if language == "" {
		language = h.cfg.OCRLanguage
	}
	options := toOptions(params).WithOCR(req.ExpectedText, language)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	resp, err := h.svc.BinarizeWithOCR(ctx, source, options)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// bind reads the request parameters and the image source. An uploaded file
// wins over url, blob_url and path in that order.
func (h *handler) bind(c *gin.Context) (models.ProcessRequest, repository.ImageSource, bool) {
	var req models.ProcessRequest

	logger.WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"user_agent": c.Request.UserAgent(),
		"ip":         c.ClientIP(),
	}).Info("Processing image request")

	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(bindError(err))
		return req, repository.ImageSource{}, false
	}

	source, err := sourceFromRequest(c, req)
	if err != nil {
		_ = c.Error(bindError(err))
		return req, repository.ImageSource{}, false
	}
	if err := h.svc.ValidateSource(source); err != nil {
		_ = c.Error(err)
		return req, repository.ImageSource{}, false
	}
	return req, source, true
}

func sourceFromRequest(c *gin.Context, req models.ProcessRequest) (repository.ImageSource, error) {
	if c.ContentType() == binding.MIMEMultipartPOSTForm {
		fh, err := c.FormFile(uploadField)
		switch {
		case err == nil:
			f, err := fh.Open()
			if err != nil {
				return repository.ImageSource{}, err
			}
			defer f.Close()
			data, err := io.ReadAll(f)
			if err != nil {
				return repository.ImageSource{}, err
			}
			return repository.ImageSource{Kind: repository.SourceUpload, Data: data, Name: fh.Filename}, nil
		case !errors.Is(err, http.ErrMissingFile):
			return repository.ImageSource{}, err
		}
	}

	switch {
	case req.URL != "":
		return repository.ImageSource{Kind: repository.SourceURL, Location: req.URL}, nil
	case req.BlobURL != "":
		return repository.ImageSource{Kind: repository.SourceBlob, Location: req.BlobURL}, nil
	case req.Path != "":
		return repository.ImageSource{Kind: repository.SourcePath, Location: req.Path}, nil
	}
	return repository.ImageSource{}, apperrors.NewValidationError(
		"an image upload, url, blob_url or path is required", nil).WithCode(apperrors.CodeInvalidSource)
}

func bindError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		e := apperrors.NewValidationError(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), err)
		e.StatusCode = http.StatusRequestEntityTooLarge
		return e
	}
	return apperrors.NewValidationError("invalid request format", err).WithCode(apperrors.CodeInvalidParameter)
}

func (h *handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.cfg.RequestTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
}

// toOptions converts validated parameters into processing options
func toOptions(p validation.ThresholdParams) analyzer.ProcessingOptions {
	options := analyzer.DefaultOptions().WithMethod(p.Method)
	options.Params = p.Params
	options.Stretch = p.Stretch
	return options
}

// writePNG sends a rendered image, with its threshold and stretch ranges in
// headers
func writePNG(c *gin.Context, rendered *service.RenderedImage) {
	header := c.Writer.Header()
	header.Set("X-Image-Width", strconv.Itoa(rendered.Image.Width))
	header.Set("X-Image-Height", strconv.Itoa(rendered.Image.Height))
	if rendered.Image.Scaled {
		header.Set("X-Image-Scaled", "true")
	}

	if t := rendered.Threshold; t != nil {
		header.Set("X-Threshold-Method", t.Method)
		header.Set("X-Threshold-Value", strconv.FormatFloat(t.Value, 'g', -1, 64))
		header.Set("X-Threshold-Level", strconv.Itoa(t.Level))
		header.Set("X-Threshold-Direction", t.Direction)
		header.Set("X-Threshold-Rounding", t.Rounding)
		header.Set("X-Threshold-Foreground-Ratio", strconv.FormatFloat(t.ForegroundRatio, 'f', 6, 64))
	}
	if s := rendered.Stretch; s != nil {
		header.Set("X-Stretch-Red", formatRange(s.Red))
		header.Set("X-Stretch-Green", formatRange(s.Green))
		header.Set("X-Stretch-Blue", formatRange(s.Blue))
		if len(s.Degenerate) > 0 {
			header.Set("X-Stretch-Degenerate", strings.Join(s.Degenerate, ","))
		}
	}

	c.Data(http.StatusOK, "image/png", rendered.PNG)
}

func formatRange(r models.ChannelRange) string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			respondError(c, c.Errors.Last().Err)
		}
	}
}

// toAppError classifies any handler error
func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("request timed out", err)
	case errors.Is(err, context.Canceled):
		return apperrors.NewProcessingError("request cancelled", err)
	default:
		return apperrors.FromEngine(err)
	}
}

func respondError(c *gin.Context, err error) {
	appErr := toAppError(err)

	message := appErr.Message
	switch {
	case appErr.Details != "":
		message = fmt.Sprintf("%s: %s", message, appErr.Details)
	case appErr.Type == apperrors.ErrorTypeValidation && appErr.Cause != nil:
		message = fmt.Sprintf("%s: %v", message, appErr.Cause)
	}

	// Log the error with context
	entry := logger.WithError(err).WithFields(logrus.Fields{
		"status_code": appErr.StatusCode,
		"code":        appErr.Code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	})
	if appErr.StatusCode >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	c.AbortWithStatusJSON(appErr.StatusCode, models.ErrorResponse{
		Error:   string(appErr.Type),
		Message: message,
		Code:    appErr.Code,
	})
}
