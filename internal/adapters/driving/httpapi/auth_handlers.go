package httpapi

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"

	oauthadapter "github.com/custodia-labs/prdocs/internal/adapters/driven/oauth"
	"github.com/custodia-labs/prdocs/internal/connectors/google"
	"github.com/custodia-labs/prdocs/internal/core/domain"
)

// stateCookie holds the CSRF state and the post-signin destination for
// an in-flight OAuth dance. Short-lived; one per provider round trip.
const stateCookie = "pr-doc-oauth-state"

const stateCookieMaxAge = 10 * 60 // seconds

// signinPage renders the provider chooser. The callbackUrl query
// parameter, when present, is threaded through both provider links.
func (s *Server) signinPage(c echo.Context) error {
	callback := sanitizeCallbackURL(c.QueryParam("callbackUrl"))
	query := ""
	if callback != "/" {
		query = "?callbackUrl=" + url.QueryEscape(callback)
	}

	sess := SessionFromContext(c)
	githubLabel := "Sign in with GitHub"
	googleLabel := "Connect Google Drive"
	if sess.Authenticated() && sess.AccessToken != "" {
		githubLabel = "Reconnect GitHub"
	}

	page := fmt.Sprintf(signinHTML,
		html.EscapeString(query), githubLabel,
		html.EscapeString(query), googleLabel,
	)
	return c.HTML(http.StatusOK, page)
}

const signinHTML = `<!DOCTYPE html>
<html>
<head><title>Sign in</title></head>
<body>
<h1>PR Docs</h1>
<p>Sign in to generate and publish PR summaries.</p>
<p><a href="/auth/signin/github%s">%s</a></p>
<p><a href="/auth/signin/google%s">%s</a></p>
</body>
</html>
`

// signinGitHub starts the GitHub OAuth dance.
func (s *Server) signinGitHub(c echo.Context) error {
	return s.beginOAuth(c, s.githubOAuth)
}

// signinGoogle starts the Google OAuth dance. Offline access and
// forced consent are required so Google returns a refresh token.
func (s *Server) signinGoogle(c echo.Context) error {
	return s.beginOAuth(c, s.googleOAuth,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// beginOAuth issues the state cookie and redirects to the provider.
func (s *Server) beginOAuth(c echo.Context, cfg *oauth2.Config, opts ...oauth2.AuthCodeOption) error {
	state := uuid.NewString()
	callback := sanitizeCallbackURL(c.QueryParam("callbackUrl"))

	c.SetCookie(&http.Cookie{
		Name:     stateCookie,
		Value:    state + "|" + callback,
		Path:     "/",
		MaxAge:   stateCookieMaxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return c.Redirect(http.StatusFound, cfg.AuthCodeURL(state, opts...))
}

// consumeState validates the returned state against the cookie and
// returns the stashed callback URL. The cookie is single-use.
func (s *Server) consumeState(c echo.Context) (string, error) {
	ck, err := c.Cookie(stateCookie)
	if err != nil || ck.Value == "" {
		return "", fmt.Errorf("missing oauth state cookie")
	}
	c.SetCookie(&http.Cookie{
		Name: stateCookie, Value: "", Path: "/", MaxAge: -1,
		HttpOnly: true, Secure: s.secure, SameSite: http.SameSiteLaxMode,
	})

	state, callback, _ := strings.Cut(ck.Value, "|")
	if state == "" || state != c.QueryParam("state") {
		return "", fmt.Errorf("oauth state mismatch")
	}
	return sanitizeCallbackURL(callback), nil
}

// sanitizeCallbackURL keeps redirects on-site. Anything absolute or
// protocol-relative collapses to the root.
func sanitizeCallbackURL(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return "/"
	}
	return raw
}

// callbackGitHub finishes the GitHub dance: exchange the code, fetch
// the user profile, capture the access token into the session and the
// token cookie, and return to the original destination.
func (s *Server) callbackGitHub(c echo.Context) error {
	ctx := c.Request().Context()

	callback, err := s.consumeState(c)
	if err != nil {
		slog.Warn("github callback rejected", "err", err)
		return c.Redirect(http.StatusFound, "/auth/error?error=OAuthCallback")
	}
	if errParam := c.QueryParam("error"); errParam != "" {
		return c.Redirect(http.StatusFound, "/auth/error?error="+url.QueryEscape(errParam))
	}

	tokens, err := oauthadapter.ExchangeCodeForTokens(ctx,
		s.githubOAuth.Endpoint.TokenURL,
		s.githubOAuth.ClientID, s.githubOAuth.ClientSecret,
		c.QueryParam("code"), s.githubOAuth.RedirectURL,
	)
	if err != nil {
		slog.Error("github code exchange failed", "err", err)
		return c.Redirect(http.StatusFound, "/auth/error?error=OAuthCallback")
	}

	user, err := s.newGitHubClient(ctx, tokens.AccessToken).GetAuthenticatedUser(ctx)
	if err != nil {
		slog.Error("github profile fetch failed", "err", err)
		return c.Redirect(http.StatusFound, "/auth/error?error=OAuthCallback")
	}

	sess := SessionFromContext(c)
	if !sess.Authenticated() {
		sess = &domain.Session{}
	}
	sess.UserID = fmt.Sprintf("github:%d", user.GetID())
	if sess.Name == "" {
		sess.Name = user.GetName()
	}
	if sess.Name == "" {
		sess.Name = user.GetLogin()
	}
	if sess.Email == "" {
		sess.Email = user.GetEmail()
	}
	if sess.Picture == "" {
		sess.Picture = user.GetAvatarURL()
	}
	sess.AccessToken = tokens.AccessToken

	store := s.newTokenStore(c)
	store.Set(domain.TokenGitHubOAuth, tokens.AccessToken, domain.GitHubTokenTTL)

	if err := s.codec.WriteSessionCookie(c, sess); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, callback)
}

// callbackGoogle finishes the Google dance. A user already signed in
// through GitHub keeps their identity; the Google tokens are layered
// onto the existing session.
func (s *Server) callbackGoogle(c echo.Context) error {
	ctx := c.Request().Context()

	callback, err := s.consumeState(c)
	if err != nil {
		slog.Warn("google callback rejected", "err", err)
		return c.Redirect(http.StatusFound, "/auth/error?error=OAuthCallback")
	}
	if errParam := c.QueryParam("error"); errParam != "" {
		return c.Redirect(http.StatusFound, "/auth/error?error="+url.QueryEscape(errParam))
	}

	tokens, err := oauthadapter.ExchangeCodeForTokens(ctx,
		oauthadapter.GoogleTokenURL,
		s.googleOAuth.ClientID, s.googleOAuth.ClientSecret,
		c.QueryParam("code"), s.googleOAuth.RedirectURL,
	)
	if err != nil {
		slog.Error("google code exchange failed", "err", err)
		return c.Redirect(http.StatusFound, "/auth/error?error=OAuthCallback")
	}

	info, err := google.GetUserInfo(ctx, tokens.AccessToken)
	if err != nil {
		slog.Error("google profile fetch failed", "err", err)
		return c.Redirect(http.StatusFound, "/auth/error?error=OAuthCallback")
	}

	sess := SessionFromContext(c)
	if !sess.Authenticated() {
		sess = &domain.Session{UserID: "google:" + info.ID}
	}
	if sess.Name == "" {
		sess.Name = info.Name
	}
	if sess.Email == "" {
		sess.Email = info.Email
	}
	if sess.Picture == "" {
		sess.Picture = info.Picture
	}
	sess.GoogleAccessToken = tokens.AccessToken
	sess.GoogleRefreshToken = tokens.RefreshToken
	sess.GoogleTokenExpiry = tokens.Expiry
	sess.Error = ""

	store := s.newTokenStore(c)
	store.Set(domain.TokenGoogleAccess, tokens.AccessToken, domain.GoogleAccessTTL)
	if tokens.RefreshToken != "" {
		store.Set(domain.TokenGoogleRefresh, tokens.RefreshToken, domain.GoogleRefreshTTL)
	}

	if err := s.codec.WriteSessionCookie(c, sess); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, callback)
}

// authErrorPage renders a minimal error page for failed OAuth dances.
func (s *Server) authErrorPage(c echo.Context) error {
	reason := c.QueryParam("error")
	if reason == "" {
		reason = "Unknown"
	}
	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Sign-in error</title></head>
<body>
<h1>Sign-in failed</h1>
<p>Reason: %s</p>
<p><a href="/auth/signin">Try again</a></p>
</body>
</html>
`, html.EscapeString(reason))
	return c.HTML(http.StatusOK, page)
}

// signout clears the session and the OAuth token cookies. A stored PAT
// survives sign-out: the user typed it in and expects it to persist.
func (s *Server) signout(c echo.Context) error {
	store := s.newTokenStore(c)
	store.Delete(domain.TokenGitHubOAuth)
	store.Delete(domain.TokenGoogleAccess)
	store.Delete(domain.TokenGoogleRefresh)
	s.codec.ClearSessionCookie(c)

	if strings.HasPrefix(c.Request().Header.Get("Accept"), "application/json") {
		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	}
	return c.Redirect(http.StatusFound, "/auth/signin")
}

// sessionProbe reports the current session without exposing tokens.
func (s *Server) sessionProbe(c echo.Context) error {
	sess := SessionFromContext(c)
	if !sess.Authenticated() {
		return c.JSON(http.StatusOK, map[string]any{"authenticated": false})
	}

	body := map[string]any{
		"authenticated": true,
		"user": map[string]string{
			"name":    sess.Name,
			"email":   sess.Email,
			"picture": sess.Picture,
		},
		"githubConnected": sess.AccessToken != "",
		"googleConnected": sess.GoogleAccessToken != "" || sess.GoogleRefreshToken != "",
	}
	if sess.Error != "" {
		body["error"] = sess.Error
	}
	return c.JSON(http.StatusOK, body)
}
