package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"go-image-threshold/pkg/engine"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeProcessing  ErrorType = "processing"
	ErrorTypeTimeout     ErrorType = "timeout"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeInternal    ErrorType = "internal"
	ErrorTypeUnavailable ErrorType = "unavailable"
)

// Machine readable codes for engine conditions.
const (
	CodeInvalidBuffer    = "invalid_buffer"
	CodeInvalidParameter = "invalid_parameter"
	CodeUnknownMethod    = "unknown_method"
	CodeNoValidSplit     = "no_valid_split"
	CodeNonConvergence   = "non_convergence"
	CodeInvalidSource    = "invalid_source"
	CodeImageDecode      = "image_decode"
	CodeOCRUnavailable   = "ocr_unavailable"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code,omitempty"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode sets the machine readable code and returns the error.
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

func newAppError(t ErrorType, status int, message string, cause error) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		StatusCode: status,
		Cause:      cause,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, cause)
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, cause error) *AppError {
	return newAppError(ErrorTypeNetwork, http.StatusBadGateway, message, cause)
}

// NewProcessingError creates a new processing error
func NewProcessingError(message string, cause error) *AppError {
	return newAppError(ErrorTypeProcessing, http.StatusUnprocessableEntity, message, cause)
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, cause error) *AppError {
	return newAppError(ErrorTypeTimeout, http.StatusGatewayTimeout, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, cause)
}

// NewUnavailableError creates an error for a missing optional backend
func NewUnavailableError(message string, cause error) *AppError {
	return newAppError(ErrorTypeUnavailable, http.StatusServiceUnavailable, message, cause)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, cause)
}

// FromEngine converts an engine error into an AppError. Errors that are
// already AppErrors are returned unchanged; anything unrecognised becomes an
// internal error.
func FromEngine(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	switch {
	case stderrors.Is(err, engine.ErrInvalidBuffer):
		return NewValidationError("invalid pixel buffer", err).WithCode(CodeInvalidBuffer)
	case stderrors.Is(err, engine.ErrInvalidParameter):
		return NewValidationError("invalid threshold parameter", err).WithCode(CodeInvalidParameter)
	case stderrors.Is(err, engine.ErrUnknownMethod):
		return NewValidationError("unknown threshold method", err).WithCode(CodeUnknownMethod)
	case stderrors.Is(err, engine.ErrNoValidSplit):
		return NewProcessingError("no threshold separates two classes in this image", err).WithCode(CodeNoValidSplit)
	case stderrors.Is(err, engine.ErrNonConvergence):
		return NewProcessingError("threshold search did not converge", err).WithCode(CodeNonConvergence)
	default:
		return NewInternalError("image processing failed", err)
	}
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
