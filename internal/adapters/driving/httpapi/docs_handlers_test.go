package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/prdocs/internal/core/domain"
	"github.com/custodia-labs/prdocs/internal/core/services"
)

const summaryRequestBody = `{
	"owner": "acme", "repo": "widgets", "prNumber": "42",
	"diffData": [{"filename": "main.go", "additions": 1, "deletions": 0, "patch": "+x"}]
}`

func postJSON(t *testing.T, s *Server, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	return doRequest(s, req)
}

func TestGenerateSummaryProviderDispatch(t *testing.T) {
	rateLimited := &domain.RateLimitError{Provider: "groq", StatusCode: 429, Message: "tokens per minute"}

	tests := []struct {
		name       string
		primary    *stubGenerator
		fallback   *stubGenerator
		wantStatus int
		wantBody   []string
	}{
		{
			name:       "primary succeeds",
			primary:    &stubGenerator{name: "groq", content: "## Goal"},
			fallback:   &stubGenerator{name: "nvidia", content: "unused"},
			wantStatus: http.StatusOK,
			wantBody:   []string{`"usedFallback":false`, "## Goal"},
		},
		{
			name:       "rate limited primary falls back",
			primary:    &stubGenerator{name: "groq", err: rateLimited},
			fallback:   &stubGenerator{name: "nvidia", content: "## Goal (fallback)"},
			wantStatus: http.StatusOK,
			wantBody:   []string{`"usedFallback":true`, "## Goal (fallback)"},
		},
		{
			name:       "both providers failing returns 413",
			primary:    &stubGenerator{name: "groq", err: rateLimited},
			fallback:   &stubGenerator{name: "nvidia", err: &domain.RateLimitError{Provider: "nvidia", StatusCode: 429}},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantBody:   []string{"too large"},
		},
		{
			name:       "rate limited primary without fallback returns 413",
			primary:    &stubGenerator{name: "groq", err: rateLimited},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantBody:   []string{"too large"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := services.NewSummaryService(tt.primary, nil)
			if tt.fallback != nil {
				summary = services.NewSummaryService(tt.primary, tt.fallback)
			}
			s := newTestServerWith(t, &stubRefresher{}, summary)
			sess := sessionCookieFor(t, s, &domain.Session{UserID: "github:1", AccessToken: "gho_x"})

			rec := postJSON(t, s, "/api/generate-summary", summaryRequestBody, sess)
			assert.Equal(t, tt.wantStatus, rec.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, rec.Body.String(), want)
			}
		})
	}
}

func TestCreateDocRequiresGoogleCredential(t *testing.T) {
	s := newTestServer(t, &stubRefresher{})
	sess := sessionCookieFor(t, s, &domain.Session{UserID: "github:1", AccessToken: "gho_x"})

	body := `{"repo": "acme/widgets", "prNumber": "42", "content": "## Goal"}`
	rec := postJSON(t, s, "/api/create-doc", body, sess)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Google Drive")
}

func TestGenerateDocsAggregatesMissingProviders(t *testing.T) {
	s := newTestServer(t, &stubRefresher{})
	// Authenticated session with no provider tokens at all: fetching the
	// diff needs GitHub and publishing needs Google Drive, and both must
	// be named in one response.
	sess := sessionCookieFor(t, s, &domain.Session{UserID: "google:1"})

	body := `{"owner": "acme", "repo": "widgets", "prNumber": "42"}`
	rec := postJSON(t, s, "/api/generate-docs", body, sess)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "GitHub")
	assert.Contains(t, rec.Body.String(), "Google Drive")
}
