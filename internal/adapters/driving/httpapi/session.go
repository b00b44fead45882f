// Package httpapi exposes the HTTP surface: authentication flow, route
// gating, and the JSON API endpoints.
package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/custodia-labs/prdocs/internal/core/domain"
)

// SessionCookie is the stateless signed session token cookie.
const SessionCookie = "pr-doc-session"

// SessionMaxAge is the session lifetime.
const SessionMaxAge = 30 * 24 * time.Hour

// sessionContextKey stores the materialized session on the echo context.
const sessionContextKey = "prdocs.session"

// SessionCodec signs and verifies the stateless session token.
// There is no server-side session table; the signed token is the session.
type SessionCodec struct {
	secret []byte
	secure bool
}

// NewSessionCodec creates a codec with the given signing secret.
func NewSessionCodec(secret []byte, secure bool) *SessionCodec {
	return &SessionCodec{secret: secret, secure: secure}
}

// Encode signs the session into a compact JWT.
func (sc *SessionCodec) Encode(sess *domain.Session) (string, error) {
	builder := jwt.NewBuilder().
		Subject(sess.UserID).
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(SessionMaxAge))

	private := map[string]any{
		"name":               sess.Name,
		"email":              sess.Email,
		"picture":            sess.Picture,
		"accessToken":        sess.AccessToken,
		"googleAccessToken":  sess.GoogleAccessToken,
		"googleRefreshToken": sess.GoogleRefreshToken,
		"error":              sess.Error,
	}
	for k, v := range private {
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		builder = builder.Claim(k, v)
	}
	if !sess.GoogleTokenExpiry.IsZero() {
		builder = builder.Claim("googleTokenExpiry", sess.GoogleTokenExpiry.Unix())
	}

	token, err := builder.Build()
	if err != nil {
		return "", err
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, sc.secret))
	if err != nil {
		return "", err
	}
	return string(signed), nil
}

// Decode verifies the token and reconstructs the session. An invalid or
// expired token yields a nil session, never an error: the caller treats
// it as signed-out.
func (sc *SessionCodec) Decode(raw string) *domain.Session {
	token, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, sc.secret),
		jwt.WithValidate(true),
	)
	if err != nil {
		return nil
	}

	sess := &domain.Session{UserID: token.Subject()}
	sess.Name = stringClaim(token, "name")
	sess.Email = stringClaim(token, "email")
	sess.Picture = stringClaim(token, "picture")
	sess.AccessToken = stringClaim(token, "accessToken")
	sess.GoogleAccessToken = stringClaim(token, "googleAccessToken")
	sess.GoogleRefreshToken = stringClaim(token, "googleRefreshToken")
	sess.Error = stringClaim(token, "error")

	if v, ok := token.Get("googleTokenExpiry"); ok {
		switch n := v.(type) {
		case float64:
			sess.GoogleTokenExpiry = time.Unix(int64(n), 0)
		case int64:
			sess.GoogleTokenExpiry = time.Unix(n, 0)
		}
	}

	return sess
}

// stringClaim reads an optional string claim.
func stringClaim(token jwt.Token, name string) string {
	if v, ok := token.Get(name); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WriteSessionCookie issues the signed session cookie on the response.
func (sc *SessionCodec) WriteSessionCookie(c echo.Context, sess *domain.Session) error {
	signed, err := sc.Encode(sess)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   sc.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearSessionCookie expires the session cookie.
func (sc *SessionCodec) ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sc.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionFromContext returns the session materialized by the middleware,
// or nil when the request is unauthenticated.
func SessionFromContext(c echo.Context) *domain.Session {
	if sess, ok := c.Get(sessionContextKey).(*domain.Session); ok {
		return sess
	}
	return nil
}
