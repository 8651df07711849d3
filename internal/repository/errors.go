package repository

import "errors"

var (
	// ErrInvalidImageSource indicates a missing, ambiguous or malformed image source
	ErrInvalidImageSource = errors.New("invalid image source")

	// ErrImageNotFound indicates the image was not found
	ErrImageNotFound = errors.New("image not found")

	// ErrRepositoryUnavailable indicates no backend serves the source kind
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
