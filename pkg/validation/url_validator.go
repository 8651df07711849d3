package validation

import (
	"net/url"
	"slices"
	"strings"

	apperrors "go-image-threshold/internal/errors"
)

// AzureBlobHostSuffix is the public blob endpoint domain
const AzureBlobHostSuffix = ".blob.core.windows.net"

// URLValidator checks image URLs against scheme and host allow lists
type URLValidator struct {
	allowedSchemes      []string
	allowedHosts        []string
	allowedHostSuffixes []string
}

// NewURLValidator creates a new URL validator with default settings
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
		allowedHosts:   []string{}, // empty means all hosts allowed
	}
}

// NewURLValidatorWithOptions creates a URL validator with custom options
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// NewBlobURLValidator accepts https URLs on the Azure blob endpoint of any account
func NewBlobURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes:      []string{"https"},
		allowedHostSuffixes: []string{AzureBlobHostSuffix},
	}
}

// ValidateImageURL validates if the provided URL is acceptable for image processing
func (v *URLValidator) ValidateImageURL(imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil).WithCode(apperrors.CodeInvalidSource)
	}

	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err).WithCode(apperrors.CodeInvalidSource)
	}

	if !v.isSchemeAllowed(parsedURL.Scheme) {
		return apperrors.NewValidationError("URL scheme not allowed", nil).WithCode(apperrors.CodeInvalidSource)
	}

	if parsedURL.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil).WithCode(apperrors.CodeInvalidSource)
	}

	if !v.isHostAllowed(parsedURL.Hostname()) {
		return apperrors.NewValidationError("URL host not allowed", nil).WithCode(apperrors.CodeInvalidSource)
	}

	return nil
}

func (v *URLValidator) isSchemeAllowed(scheme string) bool {
	return slices.Contains(v.allowedSchemes, strings.ToLower(scheme))
}

// isHostAllowed returns true when no host restriction is configured
func (v *URLValidator) isHostAllowed(host string) bool {
	host = strings.ToLower(host)
	if len(v.allowedHosts) == 0 && len(v.allowedHostSuffixes) == 0 {
		return true
	}
	if slices.Contains(v.allowedHosts, host) {
		return true
	}
	for _, suffix := range v.allowedHostSuffixes {
		if strings.HasSuffix(host, suffix) && len(host) > len(suffix) {
			return true
		}
	}
	return false
}
