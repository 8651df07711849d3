package container

import (
	"errors"
	"fmt"
	"net/http"

	"go-image-threshold/internal/analyzer"
	"go-image-threshold/internal/config"
	"go-image-threshold/internal/factory"
	"go-image-threshold/internal/logger"
	"go-image-threshold/internal/observer"
	"go-image-threshold/internal/ocr"
	"go-image-threshold/internal/repository"
	"go-image-threshold/internal/service"
	"go-image-threshold/internal/transport"

	"github.com/sirupsen/logrus"
)

// Container holds all application dependencies
type Container struct {
	config           *config.Config
	imageRepository  repository.ImageRepository
	processor        analyzer.ImageProcessor
	publisher        *observer.EventPublisher
	metrics          *observer.MetricsObserver
	ocrEngine        *ocr.Engine
	thresholdService service.ThresholdService
	handler          http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	// Build dependency graph
	fetchers, err := factory.NewStorageFactory(cfg).Fetchers()
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}
	imageRepository := repository.NewImageRepository(fetchers, cfg.MaxRequestBodySize)

	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	processor := analyzer.NewImageProcessor(cfg.Workers)
	ocrEngine := ocr.NewEngine(cfg.OCRLanguage)

	thresholdService := service.NewThresholdService(
		imageRepository,
		processor,
		publisher,
		metrics,
		ocrEngine,
		service.Config{
			MaxImageDimension: cfg.MaxImageDimension,
			ProcessingTimeout: cfg.ProcessingTimeout,
		},
	)
	handler := transport.NewHandler(thresholdService, cfg)

	sources := make([]string, 0, len(fetchers))
	for kind := range fetchers {
		sources = append(sources, string(kind))
	}
	logger.WithFields(logrus.Fields{
		"sources":     sources,
		"workers":     cfg.Workers,
		"ocr_version": ocr.Version(),
	}).Info("Container initialised")

	return &Container{
		config:           cfg,
		imageRepository:  imageRepository,
		processor:        processor,
		publisher:        publisher,
		metrics:          metrics,
		ocrEngine:        ocrEngine,
		thresholdService: thresholdService,
		handler:          handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases the worker pool and the OCR engine
func (c *Container) Close() error {
	return errors.Join(c.processor.Close(), c.ocrEngine.Close())
}
