package repository

import (
	"context"
	"image"
)

// SourceKind identifies where an image comes from
type SourceKind string

const (
	SourceUpload SourceKind = "upload"
	SourceURL    SourceKind = "url"
	SourceBlob   SourceKind = "blob"
	SourcePath   SourceKind = "path"
)

// ImageSource addresses one image. Data is used for uploads; Location holds
// the URL, blob URL or relative path for the other kinds.
type ImageSource struct {
	Kind     SourceKind
	Location string
	Data     []byte
	Name     string
}

// String returns a loggable description that never includes upload bytes
func (s ImageSource) String() string {
	if s.Kind == SourceUpload {
		if s.Name != "" {
			return "upload:" + s.Name
		}
		return "upload"
	}
	return string(s.Kind) + ":" + s.Location
}

// ImageRepository defines the interface for image data access operations
type ImageRepository interface {
	// LoadImage retrieves and decodes the image a source addresses
	LoadImage(ctx context.Context, source ImageSource) (image.Image, *ImageMetadata, error)

	// ValidateSource checks a source without loading it
	ValidateSource(source ImageSource) error

	// Supports reports whether a backend for the kind is configured
	Supports(kind SourceKind) bool
}

// ImageMetadata contains metadata about a loaded image
type ImageMetadata struct {
	Format        string
	ContentLength int64
	Width         int
	Height        int
}
