// Package github wraps the GitHub API for pull request retrieval.
//
// It comprises the following components:
//
//   - Client: handles GitHub API communication with rate limiting
//   - FetchDiffSnapshot: combines the PR detail and file-list fetches
//   - UserMessage: translates API failures into stable user-facing text
//
// # Authentication
//
// Two authentication methods are supported:
//
//   - Personal Access Tokens (PAT): classic or fine-grained tokens created at
//     github.com/settings/tokens. Requires 'repo' scope for private repositories.
//
//   - OAuth App: tokens captured during the sign-in flow.
//
// Both methods provide 5,000 API requests per hour for authenticated users.
// Unauthenticated requests are limited to 60 per hour and are not supported.
//
// # Rate Limiting
//
// The package implements a dual-strategy rate limiting approach:
//
//  1. Proactive throttling: a token bucket algorithm limits requests to
//     approximately 1.2 requests per second, staying well under the 5,000/hour
//     limit whilst maximising throughput.
//
//  2. Reactive handling: the client monitors X-RateLimit-Remaining and
//     X-RateLimit-Reset headers. When limits are exhausted, it waits until
//     the reset time before continuing.
//
// The limiter is shared process-wide because the quota is per account, not
// per request.
//
// # Error Handling
//
// API failures are normalized into [APIError] and [RateLimitError] before
// any business logic inspects them. Raw provider bodies are logged
// server-side only; UserMessage supplies the text clients see.
package github
