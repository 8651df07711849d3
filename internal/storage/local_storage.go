package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrPathOutsideRoot indicates a path escaping the configured root
	ErrPathOutsideRoot = errors.New("path outside image root")

	// ErrFileNotFound indicates the file does not exist
	ErrFileNotFound = errors.New("image file not found")
)

// LocalImageFetcher reads images below a fixed root directory
type LocalImageFetcher struct {
	root     string
	maxBytes int64
}

// NewLocalImageFetcher creates a fetcher confined to root
func NewLocalImageFetcher(root string, maxBytes int64) (*LocalImageFetcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid image root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("invalid image root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("invalid image root: %s is not a directory", abs)
	}
	if abs, err = filepath.EvalSymlinks(abs); err != nil {
		return nil, fmt.Errorf("invalid image root: %w", err)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &LocalImageFetcher{root: abs, maxBytes: maxBytes}, nil
}

// FetchImage decodes the file at path, relative to the root
func (l *LocalImageFetcher) FetchImage(ctx context.Context, path string) (image.Image, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	full, err := l.resolve(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, "", err
	}

	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return DecodeImage(f, l.maxBytes)
}

func (l *LocalImageFetcher) resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrPathOutsideRoot)
	}
	full := filepath.Join(l.root, filepath.FromSlash(strings.TrimPrefix(path, "/")))
	if !l.contains(full) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, path)
	}

	// Symlinks below the root must not lead out of it.
	resolved, err := filepath.EvalSymlinks(full)
	if err != nil {
		return "", fmt.Errorf("failed to resolve image path: %w", err)
	}
	if !l.contains(resolved) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, path)
	}
	return resolved, nil
}

func (l *LocalImageFetcher) contains(path string) bool {
	rel, err := filepath.Rel(l.root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
