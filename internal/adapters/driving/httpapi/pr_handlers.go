package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/prdocs/internal/connectors/github"
	"github.com/custodia-labs/prdocs/internal/core/domain"
)

// getPullRequest fetches a pull request's detail and changed files.
// GET /api/pr?owner=<o>&repo=<r>&pull_number=<n>
func (s *Server) getPullRequest(c echo.Context) error {
	owner := c.QueryParam("owner")
	repo := c.QueryParam("repo")
	number, err := strconv.Atoi(c.QueryParam("pull_number"))
	if owner == "" || repo == "" || err != nil || number <= 0 {
		return c.JSON(http.StatusBadRequest, errorBody{
			Error: "owner, repo and pull_number query parameters are required.",
		})
	}

	sess := SessionFromContext(c)
	cred, ok := s.newResolver(c).GitHubToken(sess)
	if !ok {
		return domain.ErrGitHubAuthRequired
	}

	ctx := c.Request().Context()
	client := s.newGitHubClient(ctx, cred.Value)
	snapshot, err := github.FetchDiffSnapshot(ctx, client, owner, repo, number)
	if err != nil {
		status, message := github.UserMessage(err)
		slog.Error("pull request fetch failed",
			"owner", owner, "repo", repo, "number", number, "err", err)
		return c.JSON(status, errorBody{Error: message})
	}

	return c.JSON(http.StatusOK, snapshot)
}
