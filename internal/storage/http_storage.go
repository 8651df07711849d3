package storage

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"time"
)

const (
	defaultHTTPAttempts   = 3
	defaultHTTPRetryDelay = time.Second
)

// HTTPImageFetcher fetches images over HTTP(S) with a small retry budget
type HTTPImageFetcher struct {
	client     *http.Client
	maxBytes   int64
	attempts   int
	retryDelay time.Duration
}

// HTTPOption configures an HTTPImageFetcher
type HTTPOption func(*HTTPImageFetcher)

// WithTimeout sets the overall client timeout
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTPImageFetcher) {
		if d > 0 {
			h.client.Timeout = d
		}
	}
}

// WithMaxBytes bounds the size of a downloaded image
func WithMaxBytes(n int64) HTTPOption {
	return func(h *HTTPImageFetcher) {
		if n > 0 {
			h.maxBytes = n
		}
	}
}

// WithRetryDelay sets the base backoff; attempt n waits n times this delay
func WithRetryDelay(d time.Duration) HTTPOption {
	return func(h *HTTPImageFetcher) {
		h.retryDelay = d
	}
}

// NewHTTPImageFetcher creates an HTTP image fetcher
func NewHTTPImageFetcher(opts ...HTTPOption) *HTTPImageFetcher {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	h := &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes:   DefaultMaxImageBytes,
		attempts:   defaultHTTPAttempts,
		retryDelay: defaultHTTPRetryDelay,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// FetchImage downloads and decodes the image at imageURL. Network errors and
// 5xx answers are retried; 4xx answers are not.
func (h *HTTPImageFetcher) FetchImage(ctx context.Context, imageURL string) (image.Image, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/png, image/jpeg, image/webp, image/gif, image/bmp, image/tiff, */*")
	req.Header.Set("User-Agent", "Go-Image-Threshold/1.0")

	var lastErr error
	for attempt := 0; attempt < h.attempts; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, time.Duration(attempt)*h.retryDelay); err != nil {
				return nil, "", err
			}
		}

		resp, err := h.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			img, format, err := func() (image.Image, string, error) {
				defer resp.Body.Close()
				return DecodeImage(resp.Body, h.maxBytes)
			}()
			return img, format, err
		}
		resp.Body.Close()

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, "", fmt.Errorf("failed to fetch image: %w", &StatusError{Code: resp.StatusCode})
		}
		lastErr = &StatusError{Code: resp.StatusCode}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("unknown error")
	}
	return nil, "", fmt.Errorf("failed to fetch image after %d attempts: %w", h.attempts, lastErr)
}

// StatusError is a non-200 answer from an image host
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	if e.Code >= 500 {
		return fmt.Sprintf("server error: status code %d", e.Code)
	}
	return fmt.Sprintf("client error: status code %d", e.Code)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
