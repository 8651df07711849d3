package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"

	"go-image-threshold/internal/storage"
	"go-image-threshold/pkg/validation"
)

// FetcherImageRepository implements ImageRepository by routing each source
// kind to a storage fetcher. Uploads are decoded in place.
type FetcherImageRepository struct {
	fetchers      map[SourceKind]storage.ImageFetcher
	maxBytes      int64
	urlValidator  *validation.URLValidator
	blobValidator *validation.URLValidator
}

// NewImageRepository creates a repository over the given fetchers. Kinds
// without a fetcher are reported as unavailable.
func NewImageRepository(fetchers map[SourceKind]storage.ImageFetcher, maxBytes int64) *FetcherImageRepository {
	m := make(map[SourceKind]storage.ImageFetcher, len(fetchers))
	for kind, f := range fetchers {
		if f != nil {
			m[kind] = f
		}
	}
	return &FetcherImageRepository{
		fetchers:      m,
		maxBytes:      maxBytes,
		urlValidator:  validation.NewURLValidator(),
		blobValidator: validation.NewBlobURLValidator(),
	}
}

// Supports reports whether the kind can be loaded
func (r *FetcherImageRepository) Supports(kind SourceKind) bool {
	if kind == SourceUpload {
		return true
	}
	_, ok := r.fetchers[kind]
	return ok
}

// ValidateSource checks a source without loading it
func (r *FetcherImageRepository) ValidateSource(source ImageSource) error {
	switch source.Kind {
	case SourceUpload:
		if len(source.Data) == 0 {
			return fmt.Errorf("%w: empty upload", ErrInvalidImageSource)
		}
	case SourceURL:
		if err := r.urlValidator.ValidateImageURL(source.Location); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidImageSource, err)
		}
	case SourceBlob:
		if err := r.blobValidator.ValidateImageURL(source.Location); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidImageSource, err)
		}
	case SourcePath:
		if strings.TrimSpace(source.Location) == "" {
			return fmt.Errorf("%w: empty path", ErrInvalidImageSource)
		}
	default:
		return fmt.Errorf("%w: unknown source kind %q", ErrInvalidImageSource, source.Kind)
	}
	return nil
}

// LoadImage retrieves and decodes the image a source addresses
func (r *FetcherImageRepository) LoadImage(ctx context.Context, source ImageSource) (image.Image, *ImageMetadata, error) {
	if err := r.ValidateSource(source); err != nil {
		return nil, nil, err
	}

	var (
		img    image.Image
		format string
		err    error
	)
	if source.Kind == SourceUpload {
		img, format, err = storage.DecodeImage(bytes.NewReader(source.Data), r.maxBytes)
	} else {
		fetcher, ok := r.fetchers[source.Kind]
		if !ok {
			return nil, nil, fmt.Errorf("%w: no backend for %s sources", ErrRepositoryUnavailable, source.Kind)
		}
		img, format, err = fetcher.FetchImage(ctx, source.Location)
	}
	if err != nil {
		return nil, nil, classifyFetchError(err)
	}

	b := img.Bounds()
	meta := &ImageMetadata{
		Format: format,
		Width:  b.Dx(),
		Height: b.Dy(),
	}
	if source.Kind == SourceUpload {
		meta.ContentLength = int64(len(source.Data))
	}
	return img, meta, nil
}

func classifyFetchError(err error) error {
	var statusErr *storage.StatusError
	switch {
	case errors.Is(err, storage.ErrFileNotFound),
		errors.Is(err, storage.ErrBlobNotFound),
		errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrImageNotFound, err)
	case errors.Is(err, storage.ErrPathOutsideRoot):
		return fmt.Errorf("%w: %w", ErrInvalidImageSource, err)
	}
	return err
}
