package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxImageBytes bounds the encoded size of a fetched image.
const DefaultMaxImageBytes int64 = 32 << 20

var (
	// ErrImageTooLarge indicates the encoded image exceeds the configured limit
	ErrImageTooLarge = errors.New("image exceeds size limit")

	// ErrUnsupportedFormat indicates the bytes are not a known image format
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// ImageFetcher loads and decodes an image from a location. The returned
// string is the format name registered with the image package.
type ImageFetcher interface {
	FetchImage(ctx context.Context, location string) (image.Image, string, error)
}

// DecodeImage reads at most limit bytes from r and decodes them. A limit of
// zero or less uses DefaultMaxImageBytes.
func DecodeImage(r io.Reader, limit int64) (image.Image, string, error) {
	if limit <= 0 {
		limit = DefaultMaxImageBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, "", fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, limit)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}
