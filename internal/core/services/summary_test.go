package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/prdocs/internal/core/domain"
)

// stubGenerator returns a canned result or error and counts invocations.
type stubGenerator struct {
	name    string
	content string
	err     error
	calls   int
}

func (s *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.content, nil
}

func (s *stubGenerator) Name() string { return s.name }

func rateLimited() error {
	return &domain.RateLimitError{Provider: "groq", StatusCode: 413, Message: "too large"}
}

func TestSummaryDispatch(t *testing.T) {
	files := []domain.DiffFile{{Filename: "main.go", Patch: "+hello"}}

	tests := []struct {
		name          string
		primary       *stubGenerator
		fallback      *stubGenerator
		wantContent   string
		wantFallback  bool
		wantErr       error
		fallbackCalls int
	}{
		{
			name:        "primary succeeds",
			primary:     &stubGenerator{name: "groq", content: "summary"},
			fallback:    &stubGenerator{name: "nvidia", content: "other"},
			wantContent: "summary",
		},
		{
			name:          "rate limit triggers fallback",
			primary:       &stubGenerator{name: "groq", err: rateLimited()},
			fallback:      &stubGenerator{name: "nvidia", content: "fallback summary"},
			wantContent:   "fallback summary",
			wantFallback:  true,
			fallbackCalls: 1,
		},
		{
			name:     "non-rate-limit error propagates without fallback",
			primary:  &stubGenerator{name: "groq", err: errors.New("boom")},
			fallback: &stubGenerator{name: "nvidia", content: "unused"},
			wantErr:  errors.New("boom"),
		},
		{
			name:          "both providers exhausted",
			primary:       &stubGenerator{name: "groq", err: rateLimited()},
			fallback:      &stubGenerator{name: "nvidia", err: errors.New("also down")},
			wantErr:       domain.ErrProvidersExhausted,
			fallbackCalls: 1,
		},
		{
			name:    "rate limit with no fallback configured",
			primary: &stubGenerator{name: "groq", err: rateLimited()},
			wantErr: domain.ErrProvidersExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fallback *stubGenerator
			svc := NewSummaryService(tt.primary, nil)
			if tt.fallback != nil {
				fallback = tt.fallback
				svc = NewSummaryService(tt.primary, fallback)
			}

			result, err := svc.Generate(context.Background(), "octocat", "hello", "42", files)

			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, domain.ErrProvidersExhausted) {
					assert.ErrorIs(t, err, domain.ErrProvidersExhausted)
				} else {
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantContent, result.Content)
			assert.Equal(t, tt.wantFallback, result.UsedFallback)
			assert.Equal(t, 1, tt.primary.calls)
			if fallback != nil {
				assert.Equal(t, tt.fallbackCalls, fallback.calls)
			}
		})
	}
}

func TestTruncateDiffShortInputUnchanged(t *testing.T) {
	files := []domain.DiffFile{
		{Filename: "a.go", Patch: "+one\n+two"},
		{Filename: "b.go", Patch: "+three"},
	}

	got := TruncateDiff(files, MaxDiffFiles, MaxPatchLines)
	assert.Equal(t, files, got)

	// Idempotence: truncating twice yields the same result.
	assert.Equal(t, got, TruncateDiff(got, MaxDiffFiles, MaxPatchLines))
}

func TestTruncateDiffCapsFilesAndLines(t *testing.T) {
	var files []domain.DiffFile
	for i := 0; i < 30; i++ {
		lines := make([]string, 150)
		for j := range lines {
			lines[j] = fmt.Sprintf("+line %d", j)
		}
		files = append(files, domain.DiffFile{
			Filename: fmt.Sprintf("file%d.go", i),
			Patch:    strings.Join(lines, "\n"),
		})
	}

	got := TruncateDiff(files, 20, 100)
	require.Len(t, got, 20)

	for _, f := range got {
		lines := strings.Split(f.Patch, "\n")
		// 100 kept lines plus the omission marker.
		require.Len(t, lines, 101)
		assert.Equal(t, "... (50 more lines truncated)", lines[100])
	}

	// Input must not be mutated.
	assert.Len(t, strings.Split(files[0].Patch, "\n"), 150)
}

func TestTruncateDiffMarkerCountsOmittedLines(t *testing.T) {
	lines := make([]string, 103)
	for j := range lines {
		lines[j] = "+x"
	}
	files := []domain.DiffFile{{Filename: "a.go", Patch: strings.Join(lines, "\n")}}

	got := TruncateDiff(files, 20, 100)
	require.Len(t, got, 1)
	assert.True(t, strings.HasSuffix(got[0].Patch, "... (3 more lines truncated)"))
}
