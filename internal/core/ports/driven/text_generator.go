package driven

import "context"

// TextGenerator produces markdown text from a prompt.
//
// Implementations normalize provider error shapes before returning:
// a request-size or rate-limit rejection becomes *domain.RateLimitError,
// everything else propagates as a generic error. Only the rate-limit
// kind triggers the dispatcher's fallback provider.
type TextGenerator interface {
	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Name identifies the provider in logs and error messages.
	Name() string
}
