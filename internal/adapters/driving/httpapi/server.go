package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/custodia-labs/prdocs/internal/config"
	"github.com/custodia-labs/prdocs/internal/connectors/github"
	"github.com/custodia-labs/prdocs/internal/connectors/google/drive"
	"github.com/custodia-labs/prdocs/internal/core/domain"
	"github.com/custodia-labs/prdocs/internal/core/ports/driven"
	"github.com/custodia-labs/prdocs/internal/core/services"
)

// errorBody is the JSON error envelope for every failure response.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Server wires the HTTP surface over the core services.
type Server struct {
	echo    *echo.Echo
	addr    string
	secret  []byte
	secure  bool
	baseURL string

	codec       *SessionCodec
	refresher   driven.TokenRefresher
	summary     *services.SummaryService
	publisher   driven.Publisher
	legacyToken string

	// legacyDrive marks the service-account publishing mode, which needs
	// no per-user Google credential.
	legacyDrive bool

	// githubAPIBase is swappable in tests; empty means api.github.com.
	githubAPIBase string

	githubOAuth *oauth2.Config
	googleOAuth *oauth2.Config
}

// New builds a server from configuration and the core services.
func New(cfg *config.Config, refresher driven.TokenRefresher, summary *services.SummaryService) *Server {
	s := &Server{
		echo:        echo.New(),
		addr:        cfg.Addr,
		secret:      []byte(cfg.SessionSecret),
		secure:      cfg.Production,
		baseURL:     cfg.BaseURL,
		refresher:   refresher,
		summary:     summary,
		publisher:   drive.NewPublisher(cfg.GoogleCredentialsFile, cfg.SharedDriveID),
		legacyToken: cfg.GitHubToken,
		legacyDrive: cfg.GoogleCredentialsFile != "",
		githubOAuth: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			Endpoint:     githuboauth.Endpoint,
			RedirectURL:  cfg.BaseURL + "/auth/callback/github",
			Scopes:       []string{"read:user", "user:email", "repo"},
		},
		googleOAuth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     googleoauth.Endpoint,
			RedirectURL:  cfg.BaseURL + "/auth/callback/google",
			Scopes: []string{
				"openid", "email", "profile",
				"https://www.googleapis.com/auth/drive.file",
				"https://www.googleapis.com/auth/documents",
			},
		},
	}
	s.codec = NewSessionCodec(s.secret, s.secure)

	s.echo.HideBanner = true
	s.echo.HTTPErrorHandler = s.handleError
	s.echo.Use(middleware.Recover())
	s.echo.Use(s.SessionMiddleware())
	s.echo.Use(s.AuthGateMiddleware())

	s.mountRoutes()
	return s
}

// mountRoutes registers every endpoint.
func (s *Server) mountRoutes() {
	e := s.echo

	e.GET("/healthz", s.healthz)

	// Authentication flow.
	e.GET("/auth/signin", s.signinPage)
	e.GET("/auth/signin/github", s.signinGitHub)
	e.GET("/auth/signin/google", s.signinGoogle)
	e.GET("/auth/callback/github", s.callbackGitHub)
	e.GET("/auth/callback/google", s.callbackGoogle)
	e.GET("/auth/error", s.authErrorPage)
	e.GET("/auth/signout", s.signout)
	e.POST("/auth/signout", s.signout)

	// Auth API: session probe and PAT management.
	e.GET("/api/auth/session", s.sessionProbe)
	e.GET("/api/auth/pat", s.getPAT)
	e.POST("/api/auth/pat", s.savePAT)
	e.DELETE("/api/auth/pat", s.deletePAT)

	// Protected API.
	e.GET("/api/pr", s.getPullRequest)
	e.GET("/api/drive/folders", s.listDriveFolders)
	e.POST("/api/drive/folders", s.createDriveFolder)
	e.POST("/api/generate-summary", s.generateSummary)
	e.POST("/api/create-doc", s.createDoc)
	e.POST("/api/generate-docs", s.generateDocs)
}

// Start runs the HTTP server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.addr)
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.echo.Shutdown(context.Background())
	}
}

// Echo exposes the router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// newResolver builds a credential resolver bound to the request's cookies.
func (s *Server) newResolver(c echo.Context) *services.CredentialResolver {
	return services.NewCredentialResolver(s.newTokenStore(c), s.refresher, s.legacyToken)
}

// newGitHubClient builds a per-request GitHub client.
func (s *Server) newGitHubClient(ctx context.Context, token string) *github.Client {
	if s.githubAPIBase != "" {
		return github.NewClientWithToken(ctx, token, github.WithBaseURL(s.githubAPIBase))
	}
	return github.NewClientWithToken(ctx, token)
}

// handleError converts uncaught errors to the JSON error envelope.
// Nothing propagates past a route handler unconverted.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"

	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Code
		if m, ok := httpErr.Message.(string); ok {
			message = m
		}
	case domain.IsAuthRequired(err):
		status = http.StatusUnauthorized
		message = authRequiredMessage(err)
	case errors.Is(err, domain.ErrProvidersExhausted):
		status = http.StatusRequestEntityTooLarge
		message = "The diff is too large for all available AI providers. Try a smaller PR."
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
		message = "Invalid request."
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", c.Request().URL.Path, "err", err)
	}

	if jsonErr := c.JSON(status, errorBody{Error: message}); jsonErr != nil {
		slog.Error("write error response", "err", jsonErr)
	}
}

// authRequiredMessage picks the provider-specific remediation hint.
func authRequiredMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrGoogleAuthRequired):
		return "Google Drive authentication required. Please connect Google Drive."
	case errors.Is(err, domain.ErrGitHubAuthRequired):
		return "GitHub authentication required. Please reconnect GitHub."
	default:
		return "Authentication required."
	}
}

// healthz is the liveness probe.
func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
