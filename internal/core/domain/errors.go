package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthRequired indicates no usable credential could be resolved.
	ErrAuthRequired = errors.New("authentication required")

	// ErrGitHubAuthRequired indicates no GitHub credential is available.
	// The user should reconnect GitHub or supply a PAT.
	ErrGitHubAuthRequired = fmt.Errorf("github: %w", ErrAuthRequired)

	// ErrGoogleAuthRequired indicates no Google credential is available.
	// The user should connect Google Drive again.
	ErrGoogleAuthRequired = fmt.Errorf("google drive: %w", ErrAuthRequired)

	// ErrTokenRefreshFailed indicates the provider rejected a refresh attempt.
	// Distinguishable from a transport error so callers can mark the session
	// as needing re-consent instead of retrying.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// ErrProvidersExhausted indicates both text-generation providers failed.
	// Reported distinctly from a single-provider rate limit.
	ErrProvidersExhausted = errors.New("all generation providers failed")
)

// RateLimitError is returned when a generation provider rejects a request
// due to its size or rate limits. It is the only error kind that triggers
// the fallback provider.
type RateLimitError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// IsRateLimited checks if the error is a provider rate/size rejection.
func IsRateLimited(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}

// IsAuthRequired checks if the error indicates a missing credential.
func IsAuthRequired(err error) bool {
	return errors.Is(err, ErrAuthRequired)
}
