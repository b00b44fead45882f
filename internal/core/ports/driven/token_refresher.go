package driven

import (
	"context"

	"github.com/custodia-labs/prdocs/internal/core/domain"
)

// TokenRefresher exchanges a refresh token for a new access token.
// It should only be invoked when no cached access token exists; callers
// check the store first to avoid hammering the token endpoint.
type TokenRefresher interface {
	// Refresh exchanges the refresh token at the provider token endpoint.
	// The provider may omit a new refresh token, in which case the old
	// one is carried over in the result.
	// A provider-level rejection wraps domain.ErrTokenRefreshFailed;
	// a transport failure is returned as-is.
	Refresh(ctx context.Context, refreshToken string) (*domain.OAuthToken, error)
}
