// Package cookie implements the TokenStore port on signed http-only cookies.
package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/prdocs/internal/core/domain"
	"github.com/custodia-labs/prdocs/internal/core/ports/driven"
)

// Cookie names per token kind. Fixed; they are part of the deployed
// contract with existing user agents.
const (
	GitHubTokenCookie   = "pr-doc-github-token"
	GitHubPATCookie     = "pr-doc-github-pat"
	GoogleTokenCookie   = "pr-doc-google-token"
	GoogleRefreshCookie = "pr-doc-google-refresh"
)

// Ensure Store implements the TokenStore port.
var _ driven.TokenStore = (*Store)(nil)

// Store reads and writes provider tokens as signed cookies on a single
// request/response pair. Writes mutate response headers, so they must
// happen before the response body is finalized.
//
// All failures degrade to "absent": a missing request context, a
// malformed cookie, or a bad signature never surface as errors.
type Store struct {
	c      echo.Context
	secret []byte
	secure bool
}

// NewStore creates a token store bound to the given request context.
func NewStore(c echo.Context, secret []byte, secure bool) *Store {
	return &Store{c: c, secret: secret, secure: secure}
}

// cookieName maps a token kind to its cookie.
func cookieName(kind domain.TokenKind) string {
	switch kind {
	case domain.TokenGitHubPAT:
		return GitHubPATCookie
	case domain.TokenGoogleAccess:
		return GoogleTokenCookie
	case domain.TokenGoogleRefresh:
		return GoogleRefreshCookie
	default:
		return GitHubTokenCookie
	}
}

// Get returns the stored token value, verifying its signature.
func (s *Store) Get(kind domain.TokenKind) (string, bool) {
	if s.c == nil {
		return "", false
	}
	ck, err := s.c.Cookie(cookieName(kind))
	if err != nil || ck.Value == "" {
		return "", false
	}
	value, ok := s.verify(ck.Value)
	if !ok {
		return "", false
	}
	return value, true
}

// Set stores a token value with the given lifetime.
func (s *Store) Set(kind domain.TokenKind, value string, ttl time.Duration) {
	if s.c == nil || value == "" {
		return
	}
	s.c.SetCookie(&http.Cookie{
		Name:     cookieName(kind),
		Value:    s.sign(value),
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Delete removes the stored token.
func (s *Store) Delete(kind domain.TokenKind) {
	if s.c == nil {
		return
	}
	s.c.SetCookie(&http.Cookie{
		Name:     cookieName(kind),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// sign encodes value as base64(value).base64(hmac-sha256(value)).
func (s *Store) sign(value string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString([]byte(value)) +
		"." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// verify checks the signature and returns the original value.
func (s *Store) verify(encoded string) (string, bool) {
	payload, sig, found := strings.Cut(encoded, ".")
	if !found {
		return "", false
	}
	value, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", false
	}
	want, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return "", false
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(value)
	if !hmac.Equal(mac.Sum(nil), want) {
		return "", false
	}
	return string(value), true
}
