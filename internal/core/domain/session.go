package domain

import "time"

// RefreshAccessTokenError is the error marker set on a session when a
// Google token refresh attempt fails. The UI prompts for re-consent.
const RefreshAccessTokenError = "RefreshAccessTokenError"

// Session is the server-side representation of an authenticated user.
// It is serialized into a signed, stateless session token; there is no
// server-side session table.
type Session struct {
	// UserID is the subject from the OAuth sign-in provider.
	UserID string `json:"sub"`

	// Display profile fields.
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`

	// AccessToken is the GitHub OAuth access token.
	AccessToken string `json:"accessToken,omitempty"`

	// Google tokens. The access token is short-lived; the refresh token
	// is long-lived and used to mint new access tokens without re-consent.
	GoogleAccessToken  string    `json:"googleAccessToken,omitempty"`
	GoogleRefreshToken string    `json:"googleRefreshToken,omitempty"`
	GoogleTokenExpiry  time.Time `json:"googleTokenExpiry,omitempty"`

	// Error is set when a refresh attempt fails (RefreshAccessTokenError).
	Error string `json:"error,omitempty"`
}

// Authenticated returns true if the session belongs to a signed-in user.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != ""
}
