// Package groq provides the primary text-generation adapter using the Groq API.
package groq

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/prdocs/internal/core/domain"
	"github.com/custodia-labs/prdocs/internal/core/ports/driven"
)

// Ensure Service implements the interface.
var _ driven.TextGenerator = (*Service)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "openai/gpt-oss-120b"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Groq service.
type Config struct {
	// APIKey is the Groq API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.groq.com/openai/v1).
	BaseURL string

	// Model is the model to use (default: openai/gpt-oss-120b).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Service generates text via Groq's streamed chat-completions endpoint.
// Incremental content chunks are concatenated into the final string.
type Service struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// chatCompletionRequest is the Groq /chat/completions request format.
type chatCompletionRequest struct {
	Model               string              `json:"model"`
	Messages            []chatCompletionMsg `json:"messages"`
	Temperature         float64             `json:"temperature"`
	MaxCompletionTokens int                 `json:"max_completion_tokens"`
	TopP                float64             `json:"top_p"`
	Stream              bool                `json:"stream"`
}

// chatCompletionMsg is the chat message format.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// streamChunk is one SSE data payload from a streamed completion.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// apiError is the Groq error envelope.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// NewService creates a new Groq generation service.
func NewService(cfg Config) (*Service, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Service{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Name identifies the provider in logs and error messages.
func (s *Service) Name() string { return "groq" }

// Generate produces a completion for the prompt, streaming chunks and
// concatenating them. A 413 or rate-limit rejection is returned as
// *domain.RateLimitError so the dispatcher can fall back.
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := chatCompletionRequest{
		Model:               s.model,
		Messages:            []chatCompletionMsg{{Role: "user", Content: prompt}},
		Temperature:         1,
		MaxCompletionTokens: 8192,
		TopP:                1,
		Stream:              true,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", s.wrapHTTPError(resp)
	}

	return readStream(resp.Body)
}

// wrapHTTPError normalizes a non-200 response into the error taxonomy.
func (s *Service) wrapHTTPError(resp *http.Response) error {
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if readErr != nil {
		body = nil
	}

	var errResp apiError
	_ = json.Unmarshal(body, &errResp)
	message := errResp.Error.Message
	if message == "" {
		message = strings.TrimSpace(string(body))
	}

	if isRateLimitStatus(resp.StatusCode) || isRateLimitCode(errResp.Error.Code) {
		return &domain.RateLimitError{
			Provider:   s.Name(),
			StatusCode: resp.StatusCode,
			Message:    message,
		}
	}

	return fmt.Errorf("groq error (status %d): %s", resp.StatusCode, message)
}

// isRateLimitStatus reports whether the HTTP status signals a rate or
// request-size rejection.
func isRateLimitStatus(status int) bool {
	return status == http.StatusRequestEntityTooLarge || status == http.StatusTooManyRequests
}

// isRateLimitCode reports whether the provider error code signals a rate
// or request-size rejection.
func isRateLimitCode(code string) bool {
	switch code {
	case "rate_limit_exceeded", "request_too_large", "tokens_limit_reached":
		return true
	}
	return false
}

// readStream concatenates delta content from an SSE completion stream.
func readStream(r io.Reader) (string, error) {
	var sb strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			// Skip malformed keep-alive frames.
			continue
		}
		for _, choice := range chunk.Choices {
			sb.WriteString(choice.Delta.Content)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read stream: %w", err)
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("groq: no content in stream")
	}
	return sb.String(), nil
}
