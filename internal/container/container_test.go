package container

import (
	"testing"
	"time"

	"go-image-threshold/internal/config"
)

func TestNewContainer_Errors(t *testing.T) {
	if _, err := NewContainer(nil); err == nil {
		t.Error("Expected error for nil config")
	}

	cfg := &config.Config{
		Port:                 "8080",
		RequestTimeout:       time.Second,
		ImageFetchTimeout:    time.Second,
		ProcessingTimeout:    time.Second,
		MaxRequestBodySize:   1 << 20,
		Workers:              1,
		IsodataMaxIterations: 10,
		LocalImageRoot:       "/nonexistent/image/root",
	}
	if _, err := NewContainer(cfg); err == nil {
		t.Error("Expected error for missing local image root")
	}
}
