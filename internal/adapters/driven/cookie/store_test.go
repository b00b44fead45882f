package cookie

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/prdocs/internal/core/domain"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestContext(cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// roundTrip writes a token in one request and carries the resulting
// response cookies into a fresh request, the way a browser would.
func roundTrip(t *testing.T, kind domain.TokenKind, value string) (echo.Context, *http.Cookie) {
	t.Helper()

	c, rec := newTestContext()
	NewStore(c, testSecret, false).Set(kind, value, domain.GitHubTokenTTL)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	next, _ := newTestContext(cookies[0])
	return next, cookies[0]
}

func TestStoreRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		kind domain.TokenKind
		want string
	}{
		{"github oauth", domain.TokenGitHubOAuth, "gho_access"},
		{"github pat", domain.TokenGitHubPAT, "ghp_personal"},
		{"google access", domain.TokenGoogleAccess, "ya29.access"},
		{"google refresh", domain.TokenGoogleRefresh, "1//refresh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ck := roundTrip(t, tt.kind, tt.want)
			assert.Equal(t, cookieName(tt.kind), ck.Name)
			assert.True(t, ck.HttpOnly)
			assert.NotContains(t, ck.Value, tt.want, "raw token must not appear in the cookie")

			got, ok := NewStore(c, testSecret, false).Get(tt.kind)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStoreCookieNames(t *testing.T) {
	assert.Equal(t, "pr-doc-github-token", cookieName(domain.TokenGitHubOAuth))
	assert.Equal(t, "pr-doc-github-pat", cookieName(domain.TokenGitHubPAT))
	assert.Equal(t, "pr-doc-google-token", cookieName(domain.TokenGoogleAccess))
	assert.Equal(t, "pr-doc-google-refresh", cookieName(domain.TokenGoogleRefresh))
}

func TestStoreRejectsTamperedCookie(t *testing.T) {
	_, ck := roundTrip(t, domain.TokenGitHubPAT, "ghp_original")

	tampered := *ck
	payload, sig, _ := strings.Cut(ck.Value, ".")
	tampered.Value = payload + "x." + sig

	c, _ := newTestContext(&tampered)
	_, ok := NewStore(c, testSecret, false).Get(domain.TokenGitHubPAT)
	assert.False(t, ok)
}

func TestStoreRejectsWrongSecret(t *testing.T) {
	c, _ := roundTrip(t, domain.TokenGitHubPAT, "ghp_original")

	other := []byte("ffffffffffffffffffffffffffffffff")
	_, ok := NewStore(c, other, false).Get(domain.TokenGitHubPAT)
	assert.False(t, ok)
}

func TestStoreRejectsMalformedCookie(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"no separator", "justonepart"},
		{"bad base64 payload", "!!!.c2ln"},
		{"bad base64 signature", "dmFsdWU.!!!"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(&http.Cookie{Name: GitHubPATCookie, Value: tt.value})
			_, ok := NewStore(c, testSecret, false).Get(domain.TokenGitHubPAT)
			assert.False(t, ok)
		})
	}
}

func TestStoreDeleteExpiresCookie(t *testing.T) {
	c, rec := newTestContext()
	NewStore(c, testSecret, false).Delete(domain.TokenGitHubPAT)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, GitHubPATCookie, cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestStoreSecureFlagFollowsProduction(t *testing.T) {
	c, rec := newTestContext()
	NewStore(c, testSecret, true).Set(domain.TokenGitHubPAT, "ghp_x", domain.GitHubPATTTL)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure)
}
