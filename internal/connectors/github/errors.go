package github

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// RateLimitError represents a rate limit exceeded error with reset time.
type RateLimitError struct {
	ResetAt   time.Time
	Remaining int
	Limit     int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github: rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// APIError represents a GitHub API error response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// userMessages is the stable set of user-facing messages keyed by GitHub
// status code. Raw provider bodies are logged server-side only; clients
// never see them.
var userMessages = map[int]string{
	http.StatusUnauthorized:        "GitHub authentication failed. Please reconnect GitHub or check your token.",
	http.StatusForbidden:           "Access denied. The repository may be private or your token lacks the required scopes.",
	http.StatusNotFound:            "Pull request not found. Check the owner, repository and PR number.",
	http.StatusUnprocessableEntity: "GitHub rejected the request. Check the PR number is valid.",
}

// UserMessage translates an upstream error into a stable user-facing
// message and the status code to report. Unknown errors map to a generic
// 500 message.
func UserMessage(err error) (int, string) {
	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return http.StatusForbidden, "GitHub rate limit exceeded. Try again later or supply a PAT."
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if msg, ok := userMessages[apiErr.StatusCode]; ok {
			return apiErr.StatusCode, msg
		}
		return apiErr.StatusCode, "GitHub request failed."
	}

	return http.StatusInternalServerError, "Failed to fetch pull request data."
}
