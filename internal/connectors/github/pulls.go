package github

import (
	"context"
	"strings"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/prdocs/internal/core/domain"
)

// PAT prefixes accepted by ValidatePATFormat.
var patPrefixes = []string{"ghp_", "github_pat_"}

// ValidatePATFormat reports whether the token looks like a GitHub PAT.
// Only the prefix is checked; the live check is ValidateCredentials.
func ValidatePATFormat(token string) bool {
	for _, prefix := range patPrefixes {
		if strings.HasPrefix(token, prefix) {
			return true
		}
	}
	return false
}

// FetchDiffSnapshot retrieves the PR detail and its changed-file list.
// The two fetches are independent and issued concurrently; a failure in
// either aborts the combined operation. When both fail, the detail
// fetch's error takes precedence.
func FetchDiffSnapshot(ctx context.Context, client *Client, owner, repo string, number int) (*domain.DiffSnapshot, error) {
	var (
		pr    *gh.PullRequest
		files []*gh.CommitFile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pr, err = client.GetPullRequest(gctx, owner, repo, number)
		return err
	})
	g.Go(func() error {
		var err error
		files, err = client.ListPullRequestFiles(gctx, owner, repo, number)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshot := &domain.DiffSnapshot{
		Title:   pr.GetTitle(),
		HTMLURL: pr.GetHTMLURL(),
		Files:   make([]domain.DiffFile, 0, len(files)),
	}
	for _, f := range files {
		snapshot.Files = append(snapshot.Files, domain.DiffFile{
			Filename:  f.GetFilename(),
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
			Status:    f.GetStatus(),
			Changes:   f.GetChanges(),
			Patch:     f.GetPatch(),
		})
	}

	return snapshot, nil
}
