package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/prdocs/internal/core/domain"
)

func newStubService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewService(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	return svc
}

func TestGenerateConcatenatesStream(t *testing.T) {
	svc := newStubService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["stream"])
		assert.Equal(t, DefaultModel, body["model"])

		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{"## Summary", "\n\nThis PR ", "changes things."}
		for _, content := range chunks {
			payload, _ := json.Marshal(map[string]any{
				"choices": []map[string]any{{"delta": map[string]string{"content": content}}},
			})
			_, _ = w.Write([]byte("data: " + string(payload) + "\n\n"))
		}
		_, _ = w.Write([]byte("data: [DONE]\n\n"))
	})

	got, err := svc.Generate(context.Background(), "summarize this")
	require.NoError(t, err)
	assert.Equal(t, "## Summary\n\nThis PR changes things.", got)
}

func TestGenerateRateLimitErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
	}{
		{"413 payload too large", http.StatusRequestEntityTooLarge, ""},
		{"429 too many requests", http.StatusTooManyRequests, ""},
		{"rate_limit_exceeded code", http.StatusBadRequest, "rate_limit_exceeded"},
		{"request_too_large code", http.StatusBadRequest, "request_too_large"},
		{"tokens_limit_reached code", http.StatusBadRequest, "tokens_limit_reached"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newStubService(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{
						"message": "request exceeds limits",
						"code":    tt.code,
					},
				})
			})

			_, err := svc.Generate(context.Background(), "prompt")
			require.Error(t, err)

			var rle *domain.RateLimitError
			require.ErrorAs(t, err, &rle)
			assert.Equal(t, "groq", rle.Provider)
			assert.Equal(t, tt.status, rle.StatusCode)
		})
	}
}

func TestGenerateOtherErrorsAreNotRateLimits(t *testing.T) {
	svc := newStubService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream exploded"}}`))
	})

	_, err := svc.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.False(t, domain.IsRateLimited(err))
	assert.Contains(t, err.Error(), "upstream exploded")
}

func TestReadStreamIgnoresNonDataLines(t *testing.T) {
	stream := strings.Join([]string{
		": keep-alive comment",
		`data: {"choices":[{"delta":{"content":"hello"}}]}`,
		"",
		"event: noise",
		`data: {"choices":[{"delta":{"content":" world"}}]}`,
		"data: [DONE]",
		`data: {"choices":[{"delta":{"content":"ignored after done"}}]}`,
	}, "\n")

	got, err := readStream(strings.NewReader(stream))
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
}

func TestNewServiceRequiresAPIKey(t *testing.T) {
	_, err := NewService(Config{})
	assert.Error(t, err)
}
