package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/prdocs/internal/core/domain"
)

// newTokenServer serves a token endpoint that validates the refresh grant
// and answers with the given payload and status.
func newTokenServer(t *testing.T, status int, payload map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.NotEmpty(t, r.PostForm.Get("refresh_token"))
		assert.NotEmpty(t, r.PostForm.Get("client_id"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		require.NoError(t, json.NewEncoder(w).Encode(payload))
	}))
}

func TestGoogleRefresherSuccess(t *testing.T) {
	srv := newTokenServer(t, http.StatusOK, map[string]any{
		"access_token":  "ya29.fresh",
		"refresh_token": "1//rotated",
		"token_type":    "Bearer",
		"expires_in":    3599,
	})
	defer srv.Close()

	r := NewGoogleRefresherWithURL(srv.URL, "client", "secret")
	token, err := r.Refresh(context.Background(), "1//old")
	require.NoError(t, err)

	assert.Equal(t, "ya29.fresh", token.AccessToken)
	assert.Equal(t, "1//rotated", token.RefreshToken)
	assert.False(t, token.Expiry.IsZero())
}

func TestGoogleRefresherCarriesOldRefreshToken(t *testing.T) {
	// Google often omits the refresh token from refresh responses; the
	// stored one must survive.
	srv := newTokenServer(t, http.StatusOK, map[string]any{
		"access_token": "ya29.fresh",
		"token_type":   "Bearer",
		"expires_in":   3599,
	})
	defer srv.Close()

	r := NewGoogleRefresherWithURL(srv.URL, "client", "secret")
	token, err := r.Refresh(context.Background(), "1//keep-me")
	require.NoError(t, err)

	assert.Equal(t, "1//keep-me", token.RefreshToken)
}

func TestGoogleRefresherRejection(t *testing.T) {
	srv := newTokenServer(t, http.StatusBadRequest, map[string]any{
		"error":             "invalid_grant",
		"error_description": "Token has been expired or revoked.",
	})
	defer srv.Close()

	r := NewGoogleRefresherWithURL(srv.URL, "client", "secret")
	_, err := r.Refresh(context.Background(), "1//revoked")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTokenRefreshFailed)
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestExchangeCodeForTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "https://example.com/cb", r.PostForm.Get("redirect_uri"))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access",
			"refresh_token": "refresh",
			"token_type":    "Bearer",
			"expires_in":    3600,
		}))
	}))
	defer srv.Close()

	resp, err := ExchangeCodeForTokens(context.Background(),
		srv.URL, "client", "secret", "the-code", "https://example.com/cb")
	require.NoError(t, err)

	assert.Equal(t, "access", resp.AccessToken)
	assert.Equal(t, "refresh", resp.RefreshToken)
	assert.False(t, resp.Expiry.IsZero())
}
