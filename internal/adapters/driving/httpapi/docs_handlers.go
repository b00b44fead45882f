package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/prdocs/internal/connectors/github"
	"github.com/custodia-labs/prdocs/internal/core/domain"
	"github.com/custodia-labs/prdocs/internal/core/ports/driven"
	"github.com/custodia-labs/prdocs/internal/core/services"
)

// checkCredentials guards an endpoint on the providers it needs,
// aggregating every missing one into a single response. The legacy
// service-account mode lifts the Google requirement.
func (s *Server) checkCredentials(c echo.Context, resolver *services.CredentialResolver, req services.Requirements) error {
	if s.legacyDrive {
		req.Google = false
	}
	check := resolver.HasRequiredCredentials(c.Request().Context(), SessionFromContext(c), req)
	if check.Valid {
		return nil
	}
	return echo.NewHTTPError(http.StatusUnauthorized,
		"Authentication required: "+strings.Join(check.Missing, ", ")+".")
}

// generateSummary runs the AI dispatcher over client-supplied diff data.
// POST /api/generate-summary {"owner", "repo", "prNumber", "diffData"}
func (s *Server) generateSummary(c echo.Context) error {
	var body struct {
		Owner    string            `json:"owner"`
		Repo     string            `json:"repo"`
		PRNumber string            `json:"prNumber"`
		DiffData []domain.DiffFile `json:"diffData"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Malformed request body."})
	}
	if body.Owner == "" || body.Repo == "" || body.PRNumber == "" || len(body.DiffData) == 0 {
		return c.JSON(http.StatusBadRequest, errorBody{
			Error: "owner, repo, prNumber and diffData are required.",
		})
	}

	result, err := s.summary.Generate(c.Request().Context(),
		body.Owner, body.Repo, body.PRNumber, body.DiffData)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"content":      result.Content,
		"usedFallback": result.UsedFallback,
	})
}

// createDoc publishes summary content to Google Drive as a native doc.
// POST /api/create-doc {"repo", "prNumber", "prTitle", "prLink",
// "content", "folderId"?, "documentName"?}
func (s *Server) createDoc(c echo.Context) error {
	var body struct {
		Repo         string `json:"repo"`
		PRNumber     string `json:"prNumber"`
		PRTitle      string `json:"prTitle"`
		PRLink       string `json:"prLink"`
		Content      string `json:"content"`
		FolderID     string `json:"folderId"`
		DocumentName string `json:"documentName"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Malformed request body."})
	}
	if body.Repo == "" || body.PRNumber == "" || body.Content == "" {
		return c.JSON(http.StatusBadRequest, errorBody{
			Error: "repo, prNumber and content are required.",
		})
	}

	doc := &domain.GeneratedDocument{
		Repo:       body.Repo,
		PRNumber:   body.PRNumber,
		Title:      body.PRTitle,
		SourceLink: body.PRLink,
		Content:    body.Content,
	}

	ctx := c.Request().Context()
	sess := SessionFromContext(c)
	resolver := s.newResolver(c)
	if err := s.checkCredentials(c, resolver, services.Requirements{Google: true}); err != nil {
		return err
	}
	cred, _ := resolver.GoogleToken(ctx, sess)

	opts := driven.UploadOptions{
		FolderID:     body.FolderID,
		DocumentName: body.DocumentName,
	}
	if cred != nil {
		opts.AccessToken = cred.Value
	}

	name := body.DocumentName
	if name == "" {
		name = doc.DefaultName()
	}

	path, err := s.publisher.Upload(ctx, name, doc.WithHeader(), opts)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"path": path})
}

// generateDocs is the legacy one-shot endpoint: fetch the diff when the
// client did not supply one, generate the summary, and upload the
// document in a single request.
// POST /api/generate-docs
func (s *Server) generateDocs(c echo.Context) error {
	var body struct {
		Owner    string            `json:"owner"`
		Repo     string            `json:"repo"`
		PRNumber string            `json:"prNumber"`
		DiffData []domain.DiffFile `json:"diffData"`
		FolderID string            `json:"folderId"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Malformed request body."})
	}
	if body.Owner == "" || body.Repo == "" || body.PRNumber == "" {
		return c.JSON(http.StatusBadRequest, errorBody{
			Error: "owner, repo and prNumber are required.",
		})
	}

	ctx := c.Request().Context()
	sess := SessionFromContext(c)
	resolver := s.newResolver(c)

	needDiff := len(body.DiffData) == 0
	if err := s.checkCredentials(c, resolver, services.Requirements{GitHub: needDiff, Google: true}); err != nil {
		return err
	}

	title := ""
	link := ""
	files := body.DiffData
	if needDiff {
		number, err := strconv.Atoi(body.PRNumber)
		if err != nil || number <= 0 {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "prNumber must be a positive integer."})
		}

		cred, ok := resolver.GitHubToken(sess)
		if !ok {
			return domain.ErrGitHubAuthRequired
		}

		client := s.newGitHubClient(ctx, cred.Value)
		snapshot, err := github.FetchDiffSnapshot(ctx, client, body.Owner, body.Repo, number)
		if err != nil {
			status, message := github.UserMessage(err)
			return c.JSON(status, errorBody{Error: message})
		}
		title = snapshot.Title
		link = snapshot.HTMLURL
		files = snapshot.Files
	}

	result, err := s.summary.Generate(ctx, body.Owner, body.Repo, body.PRNumber, files)
	if err != nil {
		return err
	}

	doc := &domain.GeneratedDocument{
		Repo:       body.Repo,
		PRNumber:   body.PRNumber,
		Title:      title,
		SourceLink: link,
		Content:    result.Content,
	}

	cred, _ := resolver.GoogleToken(ctx, sess)
	opts := driven.UploadOptions{FolderID: body.FolderID}
	if cred != nil {
		opts.AccessToken = cred.Value
	}

	path, err := s.publisher.Upload(ctx, doc.DefaultName(), doc.WithHeader(), opts)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"path":         path,
		"content":      result.Content,
		"usedFallback": result.UsedFallback,
	})
}
