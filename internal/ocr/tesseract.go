// Package ocr runs Tesseract over binarized images.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

var (
	// ErrEmptyImage indicates no image bytes were supplied
	ErrEmptyImage = errors.New("empty image")

	// ErrClosed indicates the engine was closed
	ErrClosed = errors.New("ocr engine closed")
)

// Recognizer extracts text from an encoded image
type Recognizer interface {
	Recognize(ctx context.Context, img []byte, language string) (string, error)
}

// Engine provides OCR using a single Tesseract client. Calls are serialised
// because the client is not safe for concurrent use.
type Engine struct {
	mu              sync.Mutex
	client          *gosseract.Client
	defaultLanguage string
	language        string
}

// NewEngine creates an engine that uses defaultLanguage when a call names none
func NewEngine(defaultLanguage string) *Engine {
	if defaultLanguage == "" {
		defaultLanguage = "eng"
	}
	return &Engine{
		client:          gosseract.NewClient(),
		defaultLanguage: defaultLanguage,
	}
}

// Recognize runs OCR on a PNG, JPEG or other Leptonica readable image
func (e *Engine) Recognize(ctx context.Context, img []byte, language string) (string, error) {
	if len(img) == 0 {
		return "", ErrEmptyImage
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if e.client == nil {
		return "", ErrClosed
	}

	if language == "" {
		language = e.defaultLanguage
	}
	if language != e.language {
		if err := e.client.SetLanguage(splitLanguages(language)...); err != nil {
			return "", fmt.Errorf("failed to set OCR language: %w", err)
		}
		e.language = language
	}

	if err := e.client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("failed to set PSM: %w", err)
	}
	if err := e.client.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}

// Version reports the linked Tesseract version
func Version() string {
	return gosseract.Version()
}

func splitLanguages(language string) []string {
	var langs []string
	for _, l := range strings.Split(language, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}
