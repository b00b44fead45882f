package httpapi

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/prdocs/internal/adapters/driven/cookie"
	"github.com/custodia-labs/prdocs/internal/core/domain"
	"github.com/custodia-labs/prdocs/internal/core/ports/driven"
)

// publicPrefixes are route prefixes reachable without a session: the
// sign-in and error pages, the OAuth callbacks, and the auth API (whose
// handlers run their own session checks).
var publicPrefixes = []string{
	"/auth/",
	"/api/auth/",
	"/healthz",
}

// isPublicPath reports whether the path bypasses the auth gate.
func isPublicPath(path string) bool {
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// SessionMiddleware materializes the session on every request and
// reconciles it with the cookie-backed token store, in both directions:
// missing in-memory tokens are backfilled from cookies, and a Google
// refresh performed here is persisted back to the cookies. The updated
// session is re-issued when anything changed.
func (s *Server) SessionMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(SessionCookie)
			if err != nil || ck.Value == "" {
				return next(c)
			}

			sess := s.codec.Decode(ck.Value)
			if !sess.Authenticated() {
				return next(c)
			}

			store := s.newTokenStore(c)
			if s.reconcileSession(c, sess, store) {
				if err := s.codec.WriteSessionCookie(c, sess); err != nil {
					slog.Error("re-issue session cookie", "err", err)
				}
			}

			c.Set(sessionContextKey, sess)
			return next(c)
		}
	}
}

// reconcileSession runs the token-callback algorithm. Returns true when
// the session changed and must be re-issued.
func (s *Server) reconcileSession(c echo.Context, sess *domain.Session, store driven.TokenStore) bool {
	changed := false

	// Backfill missing in-memory tokens from cookies. Cookies are the
	// source of truth across provider switches.
	if sess.AccessToken == "" {
		if v, ok := store.Get(domain.TokenGitHubOAuth); ok {
			sess.AccessToken = v
			changed = true
		}
	}
	if sess.GoogleRefreshToken == "" {
		if v, ok := store.Get(domain.TokenGoogleRefresh); ok {
			sess.GoogleRefreshToken = v
			changed = true
		}
	}

	// Google token freshness: the access-token cookie expires with the
	// provider token, so its absence means expired (or never linked).
	if v, ok := store.Get(domain.TokenGoogleAccess); ok {
		if sess.GoogleAccessToken != v {
			sess.GoogleAccessToken = v
			changed = true
		}
	} else if sess.GoogleRefreshToken != "" {
		slog.Info("refreshing expired Google token")
		token, err := s.refresher.Refresh(c.Request().Context(), sess.GoogleRefreshToken)
		if err != nil {
			slog.Error("failed to refresh Google token", "err", err)
			sess.Error = domain.RefreshAccessTokenError
			return true
		}

		sess.GoogleAccessToken = token.AccessToken
		sess.GoogleRefreshToken = token.RefreshToken
		sess.GoogleTokenExpiry = token.Expiry
		sess.Error = ""
		store.Set(domain.TokenGoogleAccess, token.AccessToken, domain.GoogleAccessTTL)
		store.Set(domain.TokenGoogleRefresh, token.RefreshToken, domain.GoogleRefreshTTL)
		changed = true
	}

	return changed
}

// AuthGateMiddleware classifies requests as public or protected.
// Unauthenticated access to a protected page redirects to sign-in with
// the original target preserved; a protected API path gets a 401 JSON
// error instead of a redirect.
func (s *Server) AuthGateMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if isPublicPath(path) {
				return next(c)
			}

			if SessionFromContext(c).Authenticated() {
				return next(c)
			}

			if strings.HasPrefix(path, "/api/") {
				return c.JSON(http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
			}

			// Asset-style paths (a file extension in the last segment,
			// like /favicon.ico) fall through to the router's 404 rather
			// than bouncing to sign-in.
			if last := path[strings.LastIndex(path, "/")+1:]; strings.Contains(last, ".") {
				return next(c)
			}

			signin := "/auth/signin?callbackUrl=" + url.QueryEscape(path)
			return c.Redirect(http.StatusFound, signin)
		}
	}
}

// newTokenStore builds the cookie-backed token store for a request.
func (s *Server) newTokenStore(c echo.Context) driven.TokenStore {
	return cookie.NewStore(c, s.secret, s.secure)
}
