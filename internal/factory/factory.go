package factory

import (
	"errors"
	"fmt"

	"go-image-threshold/internal/config"
	"go-image-threshold/internal/repository"
	"go-image-threshold/internal/storage"
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
	// LocalStorage for local file system
	LocalStorage StorageType = "local"
)

// ErrStorageDisabled is returned for a backend the configuration leaves out
var ErrStorageDisabled = errors.New("storage backend not configured")

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ImageFetcher, error)
	// Fetchers builds every configured backend keyed by the source kind it serves
	Fetchers() (map[repository.SourceKind]storage.ImageFetcher, error)
}

// storageFactory implements StorageFactory
type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a storage factory from configuration
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ImageFetcher, error) {
	maxBytes := f.cfg.MaxRequestBodySize

	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPImageFetcher(
			storage.WithTimeout(f.cfg.ImageFetchTimeout),
			storage.WithMaxBytes(maxBytes),
		), nil
	case AzureStorage:
		if !f.cfg.AzureEnabled() {
			return nil, fmt.Errorf("%s: %w", storageType, ErrStorageDisabled)
		}
		fetcher, err := storage.NewAzureStorage(f.cfg.AzureStorageAccount, f.cfg.AzureStorageKey, maxBytes)
		if err != nil {
			return nil, err
		}
		return fetcher, nil
	case LocalStorage:
		if f.cfg.LocalImageRoot == "" {
			return nil, fmt.Errorf("%s: %w", storageType, ErrStorageDisabled)
		}
		fetcher, err := storage.NewLocalImageFetcher(f.cfg.LocalImageRoot, maxBytes)
		if err != nil {
			return nil, err
		}
		return fetcher, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// Fetchers builds the HTTP fetcher and whichever of Azure and local storage
// are configured. A configured backend that fails to build is an error.
func (f *storageFactory) Fetchers() (map[repository.SourceKind]storage.ImageFetcher, error) {
	backends := []struct {
		kind    repository.SourceKind
		typ     StorageType
		enabled bool
	}{
		{repository.SourceURL, HTTPStorage, true},
		{repository.SourceBlob, AzureStorage, f.cfg.AzureEnabled()},
		{repository.SourcePath, LocalStorage, f.cfg.LocalImageRoot != ""},
	}

	fetchers := make(map[repository.SourceKind]storage.ImageFetcher, len(backends))
	for _, b := range backends {
		if !b.enabled {
			continue
		}
		fetcher, err := f.CreateStorage(b.typ)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s storage: %w", b.typ, err)
		}
		fetchers[b.kind] = fetcher
	}
	return fetchers, nil
}
