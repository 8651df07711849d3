package config

import (
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	ProcessingTimeout  time.Duration
	MaxRequestBodySize int64

	// MaxImageDimension bounds the longer side of decoded images; larger
	// images are scaled down before processing. Zero disables scaling.
	MaxImageDimension int

	// Workers is the size of the pool used to compare methods.
	Workers int

	IsodataMaxIterations int
	LogLevel             string
	GinMode              string

	// LocalImageRoot enables the path image source when set.
	LocalImageRoot string

	AzureStorageAccount string
	AzureStorageKey     string

	OCRLanguage string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether blob credentials are configured.
func (c *Config) AzureEnabled() bool {
	return c.AzureStorageAccount != "" && c.AzureStorageKey != ""
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:                 getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                 getEnvOrDefault("PORT", "8080"),
		RequestTimeout:       parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:    parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		ProcessingTimeout:    parseDurationOrDefault("PROCESSING_TIMEOUT", 20*time.Second),
		MaxRequestBodySize:   parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB
		MaxImageDimension:    int(parseIntOrDefault("MAX_IMAGE_DIMENSION", 4096)),
		Workers:              int(parseIntOrDefault("WORKERS", int64(runtime.NumCPU()))),
		IsodataMaxIterations: int(parseIntOrDefault("ISODATA_MAX_ITERATIONS", 256)),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		GinMode:              getEnvOrDefault("GIN_MODE", "release"),
		LocalImageRoot:       strings.TrimSpace(os.Getenv("LOCAL_IMAGE_ROOT")),
		AzureStorageAccount:  strings.TrimSpace(os.Getenv("AZURE_STORAGE_ACCOUNT")),
		AzureStorageKey:      strings.TrimSpace(os.Getenv("AZURE_STORAGE_KEY")),
		OCRLanguage:          getEnvOrDefault("OCR_LANGUAGE", "eng"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.ProcessingTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, processing=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.ProcessingTimeout)
	}
	if c.MaxImageDimension < 0 {
		return fmt.Errorf("MAX_IMAGE_DIMENSION must be >= 0 (got %d)", c.MaxImageDimension)
	}
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be >= 1 (got %d)", c.Workers)
	}
	if c.IsodataMaxIterations < 1 {
		return fmt.Errorf("ISODATA_MAX_ITERATIONS must be >= 1 (got %d)", c.IsodataMaxIterations)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %q", c.LogLevel)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid GIN_MODE: %q", c.GinMode)
	}
	if (c.AzureStorageAccount == "") != (c.AzureStorageKey == "") {
		return fmt.Errorf("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY must be set together")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
