package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// sharedLimiter guards the account-wide GitHub quota across the
// per-request clients.
var sharedLimiter = NewRateLimiter()

// Client wraps the go-github client with helper methods.
type Client struct {
	gh          *gh.Client
	rateLimiter *RateLimiter
}

// ClientOption customizes a Client at construction.
type ClientOption func(*Client)

// WithBaseURL points the client at a non-default API endpoint, such as a
// GitHub Enterprise instance or a test server. An unparseable URL leaves
// the default in place.
func WithBaseURL(rawURL string) ClientOption {
	return func(c *Client) {
		u, err := url.Parse(rawURL)
		if err != nil {
			return
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		c.gh.BaseURL = u
	}
}

// NewClientWithToken creates a GitHub client with a static access token.
// Works for PATs, OAuth access tokens and the legacy env token alike.
func NewClientWithToken(ctx context.Context, token string, opts ...ClientOption) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout

	c := &Client{
		gh:          gh.NewClient(tc),
		rateLimiter: sharedLimiter,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetPullRequest fetches a single pull request.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*gh.PullRequest, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	pr, resp, err := c.gh.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, c.wrapError(err, "get pull request")
	}

	c.updateRateLimitFromResponse(resp)
	return pr, nil
}

// ListPullRequestFiles fetches all changed files of a pull request,
// following pagination.
func (c *Client) ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]*gh.CommitFile, error) {
	var allFiles []*gh.CommitFile

	opts := &gh.ListOptions{PerPage: 100}
	for {
		select {
		case <-ctx.Done():
			return allFiles, ctx.Err()
		default:
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		files, resp, err := c.gh.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, c.wrapError(err, "list pull request files")
		}

		c.updateRateLimitFromResponse(resp)
		allFiles = append(allFiles, files...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allFiles, nil
}

// ValidateCredentials checks if the token is valid by fetching the
// authenticated user. Used for the live PAT check.
func (c *Client) ValidateCredentials(ctx context.Context) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	_, resp, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return c.wrapError(err, "validate credentials")
	}

	c.updateRateLimitFromResponse(resp)
	return nil
}

// GetAuthenticatedUser fetches the profile of the token's owner.
func (c *Client) GetAuthenticatedUser(ctx context.Context) (*gh.User, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	user, resp, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return nil, c.wrapError(err, "get authenticated user")
	}

	c.updateRateLimitFromResponse(resp)
	return user, nil
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response)
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) {
		return &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
			URL:        ghErr.Response.Request.URL.String(),
		}
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   c.rateLimiter.ResetTime(),
			Remaining: c.rateLimiter.Remaining(),
			Limit:     c.rateLimiter.Limit(),
		}
	}

	return fmt.Errorf("%s: %w", operation, err)
}
