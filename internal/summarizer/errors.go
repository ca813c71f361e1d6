package summarizer

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/sashabaranov/go-openai"
)

var (
	// ErrNotConfigured is returned by NewProvider when the selected provider
	// has no credential.
	ErrNotConfigured = errors.New("ai provider not configured")

	// ErrEmptyResponse means the provider answered without any text part.
	ErrEmptyResponse = errors.New("ai provider returned no content")
)

// StatusError is a provider failure that carries the upstream HTTP status.
type StatusError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %v", e.Provider, e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// IsRateLimited reports whether err is a "too many requests" failure from any
// provider. Only these failures are retried.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests
	}
	return statusOf(err) == http.StatusTooManyRequests
}

// statusOf extracts an HTTP status from SDK error types, or 0.
func statusOf(err error) int {
	var ae *anthropic.Error
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	var oe *openai.APIError
	if errors.As(err, &oe) {
		return oe.HTTPStatusCode
	}
	var re *openai.RequestError
	if errors.As(err, &re) {
		return re.HTTPStatusCode
	}
	return 0
}

// wrapStatus normalizes an SDK error into *StatusError when it carries a status.
func wrapStatus(provider string, err error) error {
	if err == nil {
		return nil
	}
	if code := statusOf(err); code != 0 {
		return &StatusError{Provider: provider, StatusCode: code, Err: err}
	}
	return fmt.Errorf("%s: %w", provider, err)
}
