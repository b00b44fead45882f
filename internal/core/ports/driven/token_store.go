package driven

import (
	"time"

	"github.com/custodia-labs/prdocs/internal/core/domain"
)

// TokenStore persists provider credentials for the current user.
// The production implementation is backed by signed http-only cookies,
// so every Set/Delete mutates response headers and must happen before
// the response body is finalized.
//
// Read/write failures (e.g. no request context) are swallowed by
// implementations: Get reports absent, Set and Delete are no-ops.
type TokenStore interface {
	// Get returns the stored value for the kind, or ok=false when absent.
	Get(kind domain.TokenKind) (value string, ok bool)

	// Set stores a value with the given lifetime.
	Set(kind domain.TokenKind, value string, ttl time.Duration)

	// Delete removes the stored value.
	Delete(kind domain.TokenKind)
}
