package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"testing"

	apperrors "go-image-threshold/internal/errors"
	"go-image-threshold/internal/storage"
)

type stubFetcher struct {
	img      image.Image
	err      error
	location string
}

func (s *stubFetcher) FetchImage(_ context.Context, location string) (image.Image, string, error) {
	s.location = location
	if s.err != nil {
		return nil, "", s.err
	}
	return s.img, "png", nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestValidateSource(t *testing.T) {
	repo := NewImageRepository(nil, 0)

	tests := []struct {
		name    string
		source  ImageSource
		wantErr bool
	}{
		{"upload", ImageSource{Kind: SourceUpload, Data: []byte{1}}, false},
		{"empty upload", ImageSource{Kind: SourceUpload}, true},
		{"url", ImageSource{Kind: SourceURL, Location: "http://example.com/a.png"}, false},
		{"ftp url", ImageSource{Kind: SourceURL, Location: "ftp://example.com/a.png"}, true},
		{"blob", ImageSource{Kind: SourceBlob, Location: "https://acct.blob.core.windows.net/c/a.png"}, false},
		{"plain http blob", ImageSource{Kind: SourceBlob, Location: "http://acct.blob.core.windows.net/c/a.png"}, true},
		{"path", ImageSource{Kind: SourcePath, Location: "a.png"}, false},
		{"blank path", ImageSource{Kind: SourcePath, Location: "  "}, true},
		{"unknown kind", ImageSource{Kind: "ftp", Location: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.ValidateSource(tt.source)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidImageSource) {
					t.Errorf("Expected ErrInvalidImageSource, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestValidateSource_KeepsValidationType(t *testing.T) {
	repo := NewImageRepository(nil, 0)
	err := repo.ValidateSource(ImageSource{Kind: SourceURL, Location: "not a url"})
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected wrapped validation error, got %v", err)
	}
}

func TestLoadImage_Upload(t *testing.T) {
	repo := NewImageRepository(nil, 0)
	data := pngBytes(t, 5, 4)

	img, meta, err := repo.LoadImage(context.Background(), ImageSource{Kind: SourceUpload, Data: data})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if img.Bounds().Dx() != 5 || meta.Width != 5 || meta.Height != 4 {
		t.Errorf("Unexpected image %v meta %+v", img.Bounds(), meta)
	}
	if meta.Format != "png" || meta.ContentLength != int64(len(data)) {
		t.Errorf("Unexpected metadata %+v", meta)
	}
}

func TestLoadImage_RoutesToFetcher(t *testing.T) {
	urlFetcher := &stubFetcher{img: image.NewGray(image.Rect(0, 0, 3, 3))}
	pathFetcher := &stubFetcher{img: image.NewGray(image.Rect(0, 0, 7, 2))}
	repo := NewImageRepository(map[SourceKind]storage.ImageFetcher{
		SourceURL:  urlFetcher,
		SourcePath: pathFetcher,
	}, 0)

	_, meta, err := repo.LoadImage(context.Background(), ImageSource{Kind: SourcePath, Location: "scans/a.png"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if pathFetcher.location != "scans/a.png" || meta.Width != 7 {
		t.Errorf("Expected path fetcher to serve the request, got %q %+v", pathFetcher.location, meta)
	}
	if urlFetcher.location != "" {
		t.Error("Expected url fetcher to stay idle")
	}
}

func TestLoadImage_Errors(t *testing.T) {
	notFound := &stubFetcher{err: fmt.Errorf("failed to fetch image: %w", &storage.StatusError{Code: 404})}
	missingFile := &stubFetcher{err: fmt.Errorf("%w: x.png", storage.ErrFileNotFound)}
	repo := NewImageRepository(map[SourceKind]storage.ImageFetcher{
		SourceURL:  notFound,
		SourcePath: missingFile,
	}, 0)

	tests := []struct {
		name   string
		source ImageSource
		want   error
	}{
		{"http 404", ImageSource{Kind: SourceURL, Location: "https://example.com/x.png"}, ErrImageNotFound},
		{"missing file", ImageSource{Kind: SourcePath, Location: "x.png"}, ErrImageNotFound},
		{"no blob backend", ImageSource{Kind: SourceBlob, Location: "https://acct.blob.core.windows.net/c/x.png"}, ErrRepositoryUnavailable},
		{"invalid source", ImageSource{Kind: SourceURL}, ErrInvalidImageSource},
		{"corrupt upload", ImageSource{Kind: SourceUpload, Data: []byte("nope")}, storage.ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := repo.LoadImage(context.Background(), tt.source)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	if repo.Supports(SourceBlob) || !repo.Supports(SourceUpload) || !repo.Supports(SourceURL) {
		t.Error("Unexpected Supports answers")
	}
}

func TestImageSource_String(t *testing.T) {
	if s := (ImageSource{Kind: SourceUpload, Name: "a.png", Data: []byte{1}}).String(); s != "upload:a.png" {
		t.Errorf("Unexpected %q", s)
	}
	if s := (ImageSource{Kind: SourceURL, Location: "http://x/y.png"}).String(); s != "url:http://x/y.png" {
		t.Errorf("Unexpected %q", s)
	}
}
