package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ProcessingEvent represents one step of handling an image request
type ProcessingEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	Operation      string                 `json:"operation,omitempty"`
	Method         string                 `json:"method,omitempty"`
	Source         string                 `json:"source,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of processing event
type EventType string

const (
	// ProcessingStarted when an operation begins
	ProcessingStarted EventType = "processing_started"
	// ProcessingCompleted when an operation finishes successfully
	ProcessingCompleted EventType = "processing_completed"
	// ProcessingFailed when an operation fails
	ProcessingFailed EventType = "processing_failed"
	// ImageFetched when image is successfully fetched
	ImageFetched EventType = "image_fetched"
	// ImageFetchFailed when image fetch fails
	ImageFetchFailed EventType = "image_fetch_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event ProcessingEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event ProcessingEvent)
}

// LoggingObserver logs processing events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles processing events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event ProcessingEvent) {
	fields := logrus.Fields{
		"event_type":         event.EventType,
		"operation":          event.Operation,
		"source":             event.Source,
		"processing_time_ms": event.ProcessingTime.Milliseconds(),
		"success":            event.Success,
	}
	if event.Method != "" {
		fields["method"] = event.Method
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case ProcessingStarted:
		entry.Debug("Image processing started")
	case ProcessingCompleted:
		entry.Info("Image processing completed")
	case ProcessingFailed:
		entry.Warn("Image processing failed")
	case ImageFetched:
		entry.Debug("Image fetched successfully")
	case ImageFetchFailed:
		entry.Error("Image fetch failed")
	default:
		entry.Info("Processing event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsSnapshot is a point in time copy of the collected counters.
type MetricsSnapshot struct {
	TotalRequests       int64
	SuccessfulRequests  int64
	FailedRequests      int64
	TotalProcessingTime time.Duration
	ByOperation         map[string]int64
	ByMethod            map[string]int64
	ImagesFetched       int64
	ImageFetchFailures  int64
}

// AvgProcessingTime is the mean duration of successful operations.
func (s MetricsSnapshot) AvgProcessingTime() time.Duration {
	if s.SuccessfulRequests == 0 {
		return 0
	}
	return s.TotalProcessingTime / time.Duration(s.SuccessfulRequests)
}

// MetricsObserver collects metrics from processing events
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalRequests       int64
	successfulRequests  int64
	failedRequests      int64
	totalProcessingTime time.Duration
	byOperation         map[string]int64
	byMethod            map[string]int64
	imagesFetched       int64
	imageFetchFailures  int64
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		byOperation: make(map[string]int64),
		byMethod:    make(map[string]int64),
	}
}

// OnEvent handles processing events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event ProcessingEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case ProcessingStarted:
		o.totalRequests++
		if event.Operation != "" {
			o.byOperation[event.Operation]++
		}
	case ProcessingCompleted:
		o.successfulRequests++
		o.totalProcessingTime += event.ProcessingTime
		if event.Method != "" {
			o.byMethod[event.Method]++
		}
	case ProcessingFailed:
		o.failedRequests++
	case ImageFetched:
		o.imagesFetched++
	case ImageFetchFailed:
		o.imageFetchFailures++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// Snapshot returns the current counters
func (o *MetricsObserver) Snapshot() MetricsSnapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()

	snap := MetricsSnapshot{
		TotalRequests:       o.totalRequests,
		SuccessfulRequests:  o.successfulRequests,
		FailedRequests:      o.failedRequests,
		TotalProcessingTime: o.totalProcessingTime,
		ByOperation:         make(map[string]int64, len(o.byOperation)),
		ByMethod:            make(map[string]int64, len(o.byMethod)),
		ImagesFetched:       o.imagesFetched,
		ImageFetchFailures:  o.imageFetchFailures,
	}
	for k, v := range o.byOperation {
		snap.ByOperation[k] = v
	}
	for k, v := range o.byMethod {
		snap.ByMethod[k] = v
	}
	return snap
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	async     bool
}

// NewEventPublisher creates a publisher that notifies observers on their own
// goroutines.
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
		async:     true,
	}
}

// NewSyncEventPublisher creates a publisher that notifies observers before
// NotifyObservers returns.
func NewSyncEventPublisher() *EventPublisher {
	return &EventPublisher{observers: make([]Observer, 0)}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event ProcessingEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		if !p.async {
			notify(ctx, observer, event)
			continue
		}
		go notify(ctx, observer, event)
	}
}

func notify(ctx context.Context, obs Observer, event ProcessingEvent) {
	defer func() {
		if r := recover(); r != nil {
			// Log panic but don't crash the application
			logrus.WithField("observer", obs.GetObserverName()).
				WithField("panic", r).
				Error("Observer panicked while handling event")
		}
	}()
	obs.OnEvent(ctx, event)
}
