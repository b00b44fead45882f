package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/custodia-labs/prdocs/internal/core/domain"
	"github.com/custodia-labs/prdocs/internal/core/ports/driven"
)

// Truncation limits applied to diff data before dispatch.
const (
	// MaxDiffFiles caps the number of file entries sent to a provider.
	MaxDiffFiles = 20

	// MaxPatchLines caps the unified-diff lines kept per file.
	MaxPatchLines = 100

	// CharsPerToken is the cheap token-budget heuristic. Truncation is a
	// safety margin, not a billing-exact operation.
	CharsPerToken = 4
)

// summaryPromptFormat is the instruction template for the generation provider.
const summaryPromptFormat = `
You are a technical lead. Analyze the Git diff for PR #%s in "%s/%s".

Task: Create a concise, high-impact technical summary in Markdown format.
Rules: Use bullet points. Be extremely brief and to the point. No fluff.

Structure:
# PR #%s - Technical Documentation

## Goal
One sentence summary of the PR.

## Key Changes
Short bullet points of only the important logical/technical changes.

## Files Modified
List files with a 1-line description of the change in each.

## Impact
Brief note on the impact of these changes.

Diff Data:
%s
`

// SummaryResult is the dispatcher output.
type SummaryResult struct {
	// Content is the generated markdown.
	Content string
	// UsedFallback is true when the secondary provider produced the content.
	UsedFallback bool
}

// SummaryService dispatches summary generation across a primary and an
// optional fallback provider. Only a rate/size rejection from the primary
// triggers the fallback; all other failures propagate directly.
type SummaryService struct {
	primary  driven.TextGenerator
	fallback driven.TextGenerator
}

// NewSummaryService creates a dispatcher. fallback may be nil, in which
// case rate limits from the primary surface directly.
func NewSummaryService(primary, fallback driven.TextGenerator) *SummaryService {
	return &SummaryService{primary: primary, fallback: fallback}
}

// Generate produces a technical summary for the PR diff, truncating
// oversized input first.
func (s *SummaryService) Generate(ctx context.Context, owner, repo, prNumber string, files []domain.DiffFile) (*SummaryResult, error) {
	truncated := TruncateDiff(files, MaxDiffFiles, MaxPatchLines)

	diffJSON, err := json.Marshal(truncated)
	if err != nil {
		return nil, fmt.Errorf("marshal diff data: %w", err)
	}

	prompt := fmt.Sprintf(summaryPromptFormat, prNumber, owner, repo, prNumber, diffJSON)
	slog.Debug("dispatching summary generation",
		"provider", s.primary.Name(), "prompt_tokens_est", len(prompt)/CharsPerToken)

	content, err := s.primary.Generate(ctx, prompt)
	if err == nil {
		return &SummaryResult{Content: content}, nil
	}
	if !domain.IsRateLimited(err) {
		return nil, fmt.Errorf("generate summary: %w", err)
	}

	slog.Warn("primary provider rate limited, trying fallback",
		"primary", s.primary.Name(), "err", err)

	if s.fallback == nil {
		return nil, fmt.Errorf("%w: %s rate limited and no fallback configured",
			domain.ErrProvidersExhausted, s.primary.Name())
	}

	content, fbErr := s.fallback.Generate(ctx, prompt)
	if fbErr != nil {
		slog.Error("fallback provider failed", "provider", s.fallback.Name(), "err", fbErr)
		return nil, fmt.Errorf("%w: %s then %s",
			domain.ErrProvidersExhausted, s.primary.Name(), s.fallback.Name())
	}

	return &SummaryResult{Content: content, UsedFallback: true}, nil
}

// TruncateDiff caps file count and per-file patch length. Already-short
// input is returned unchanged. A truncated patch gains a one-line marker
// recording how many lines were omitted.
func TruncateDiff(files []domain.DiffFile, maxFiles, maxLines int) []domain.DiffFile {
	if len(files) > maxFiles {
		files = files[:maxFiles]
	}

	out := make([]domain.DiffFile, len(files))
	for i, f := range files {
		out[i] = f
		if f.Patch == "" {
			continue
		}
		lines := strings.Split(f.Patch, "\n")
		if len(lines) <= maxLines {
			continue
		}
		omitted := len(lines) - maxLines
		kept := append(lines[:maxLines:maxLines],
			fmt.Sprintf("... (%d more lines truncated)", omitted))
		out[i].Patch = strings.Join(kept, "\n")
	}
	return out
}
