package domain

import "time"

// TokenKind identifies a stored provider credential.
type TokenKind string

// Stored token kinds. Each maps to a dedicated cookie with its own lifetime.
const (
	// TokenGitHubOAuth is the GitHub OAuth access token captured at sign-in.
	TokenGitHubOAuth TokenKind = "github_oauth"

	// TokenGitHubPAT is a user-supplied GitHub Personal Access Token.
	// When present it always outranks the OAuth token for GitHub operations.
	TokenGitHubPAT TokenKind = "github_pat"

	// TokenGoogleAccess is the short-lived Google access token (~1 hour).
	TokenGoogleAccess TokenKind = "google_access"

	// TokenGoogleRefresh is the long-lived Google refresh token.
	TokenGoogleRefresh TokenKind = "google_refresh"
)

// Cookie lifetimes per token kind.
const (
	GitHubTokenTTL   = 30 * 24 * time.Hour
	GitHubPATTTL     = 365 * 24 * time.Hour
	GoogleAccessTTL  = time.Hour
	GoogleRefreshTTL = 30 * 24 * time.Hour
)

// TTL returns the cookie lifetime for the token kind.
func (k TokenKind) TTL() time.Duration {
	switch k {
	case TokenGitHubPAT:
		return GitHubPATTTL
	case TokenGoogleAccess:
		return GoogleAccessTTL
	case TokenGoogleRefresh:
		return GoogleRefreshTTL
	default:
		return GitHubTokenTTL
	}
}

// Credential is a resolved provider identity token.
type Credential struct {
	// Kind identifies which resolution strategy produced the value.
	Kind TokenKind

	// Value is the opaque secret string.
	Value string

	// Expiry is set only for Google access tokens.
	Expiry time.Time
}

// OAuthToken represents tokens returned by a provider token endpoint.
type OAuthToken struct {
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is used to obtain new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`
	// Expiry is when the access token expires.
	Expiry time.Time `json:"expiry,omitempty"`
}

// IsExpired returns true if the token has expired.
func (t *OAuthToken) IsExpired() bool {
	if t.Expiry.IsZero() {
		return false
	}
	return time.Now().After(t.Expiry)
}
