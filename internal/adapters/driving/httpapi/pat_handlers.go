package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/prdocs/internal/connectors/github"
	"github.com/custodia-labs/prdocs/internal/core/domain"
)

// The PAT endpoints live under the public /api/auth/ prefix, so each
// handler performs its own session check.

func (s *Server) requireSession(c echo.Context) (*domain.Session, bool) {
	sess := SessionFromContext(c)
	return sess, sess.Authenticated()
}

// getPAT reports whether a Personal Access Token is stored. The token
// value never leaves the server in a response body.
func (s *Server) getPAT(c echo.Context) error {
	if _, ok := s.requireSession(c); !ok {
		return c.JSON(http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
	}

	_, hasPAT := s.newTokenStore(c).Get(domain.TokenGitHubPAT)
	return c.JSON(http.StatusOK, map[string]bool{"hasPat": hasPAT})
}

// savePAT validates and stores a Personal Access Token. The token must
// look like a GitHub token and must pass a live API check before it is
// accepted.
func (s *Server) savePAT(c echo.Context) error {
	if _, ok := s.requireSession(c); !ok {
		return c.JSON(http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&body); err != nil || body.Token == "" {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "A personal access token is required."})
	}

	if !github.ValidatePATFormat(body.Token) {
		return c.JSON(http.StatusBadRequest, errorBody{
			Error: "Invalid token format. GitHub tokens start with ghp_ or github_pat_.",
		})
	}

	ctx := c.Request().Context()
	if err := s.newGitHubClient(ctx, body.Token).ValidateCredentials(ctx); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{
			Error: "GitHub rejected the token. Check that it is valid and not expired.",
		})
	}

	s.newTokenStore(c).Set(domain.TokenGitHubPAT, body.Token, domain.GitHubPATTTL)
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// deletePAT removes the stored Personal Access Token.
func (s *Server) deletePAT(c echo.Context) error {
	if _, ok := s.requireSession(c); !ok {
		return c.JSON(http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
	}

	s.newTokenStore(c).Delete(domain.TokenGitHubPAT)
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
