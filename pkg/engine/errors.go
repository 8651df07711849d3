package engine

import "errors"

var (
	// ErrInvalidBuffer is returned when a pixel buffer is empty or its sample
	// count does not match its dimensions.
	ErrInvalidBuffer = errors.New("invalid pixel buffer")

	// ErrInvalidParameter is returned for out-of-range selector parameters.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrUnknownMethod is returned when a threshold method name is not recognised.
	ErrUnknownMethod = errors.New("unknown threshold method")

	// ErrNoValidSplit is returned by histogram selectors when no candidate
	// threshold leaves both classes non-degenerate.
	ErrNoValidSplit = errors.New("no valid threshold split")

	// ErrNonConvergence is returned when the iterative mean selector exceeds
	// its iteration bound.
	ErrNonConvergence = errors.New("threshold did not converge")
)
