package services

import (
	"context"
	"log/slog"

	"github.com/custodia-labs/prdocs/internal/core/domain"
	"github.com/custodia-labs/prdocs/internal/core/ports/driven"
)

// githubStrategy resolves one candidate GitHub credential.
// Returns ok=false when this strategy has nothing to offer.
type githubStrategy func() (value string, kind domain.TokenKind, ok bool)

// CredentialResolver returns the best available credential per provider.
//
// Priority orders are fixed:
//
//	GitHub: PAT cookie > session OAuth token > configured legacy token > absent
//	Google: session access token > cookie access token > refresh > absent
//
// Each order is an explicit strategy chain evaluated short-circuit, so the
// individual strategies stay testable in isolation.
type CredentialResolver struct {
	store       driven.TokenStore
	refresher   driven.TokenRefresher
	legacyToken string
}

// NewCredentialResolver creates a resolver over the given token store.
// legacyToken is the deprecated static GitHub fallback; empty disables it.
func NewCredentialResolver(store driven.TokenStore, refresher driven.TokenRefresher, legacyToken string) *CredentialResolver {
	return &CredentialResolver{
		store:       store,
		refresher:   refresher,
		legacyToken: legacyToken,
	}
}

// GitHubToken resolves the GitHub credential for the session.
// Returns ok=false when no strategy yields a token; never errors.
func (r *CredentialResolver) GitHubToken(sess *domain.Session) (*domain.Credential, bool) {
	strategies := []githubStrategy{
		func() (string, domain.TokenKind, bool) {
			v, ok := r.store.Get(domain.TokenGitHubPAT)
			return v, domain.TokenGitHubPAT, ok
		},
		func() (string, domain.TokenKind, bool) {
			if sess.Authenticated() && sess.AccessToken != "" {
				return sess.AccessToken, domain.TokenGitHubOAuth, true
			}
			return "", domain.TokenGitHubOAuth, false
		},
		func() (string, domain.TokenKind, bool) {
			if r.legacyToken != "" {
				slog.Warn("using legacy GITHUB_TOKEN fallback, consider OAuth or a PAT")
				return r.legacyToken, domain.TokenGitHubOAuth, true
			}
			return "", domain.TokenGitHubOAuth, false
		},
	}

	for _, resolve := range strategies {
		if value, kind, ok := resolve(); ok {
			return &domain.Credential{Kind: kind, Value: value}, true
		}
	}
	return nil, false
}

// GoogleToken resolves the Google credential for the session, refreshing
// via the token endpoint when only a refresh token is available. Refreshed
// tokens are persisted back to the store. A failed refresh resolves to
// absent; it never propagates as an error.
func (r *CredentialResolver) GoogleToken(ctx context.Context, sess *domain.Session) (*domain.Credential, bool) {
	if sess.Authenticated() && sess.GoogleAccessToken != "" {
		return &domain.Credential{
			Kind:   domain.TokenGoogleAccess,
			Value:  sess.GoogleAccessToken,
			Expiry: sess.GoogleTokenExpiry,
		}, true
	}

	if v, ok := r.store.Get(domain.TokenGoogleAccess); ok {
		return &domain.Credential{Kind: domain.TokenGoogleAccess, Value: v}, true
	}

	refreshToken, ok := r.store.Get(domain.TokenGoogleRefresh)
	if !ok || r.refresher == nil {
		return nil, false
	}

	slog.Info("no cached Google access token, attempting refresh")
	token, err := r.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		slog.Error("Google token refresh failed", "err", err)
		return nil, false
	}

	r.store.Set(domain.TokenGoogleAccess, token.AccessToken, domain.GoogleAccessTTL)
	r.store.Set(domain.TokenGoogleRefresh, token.RefreshToken, domain.GoogleRefreshTTL)

	return &domain.Credential{
		Kind:   domain.TokenGoogleAccess,
		Value:  token.AccessToken,
		Expiry: token.Expiry,
	}, true
}

// Requirements declares which providers an operation needs.
type Requirements struct {
	GitHub bool
	Google bool
}

// CredentialCheck aggregates missing providers for a route guard.
type CredentialCheck struct {
	Valid   bool
	Missing []string
}

// HasRequiredCredentials reports whether every required provider resolves,
// naming the missing ones so a guard can short-circuit with one error.
func (r *CredentialResolver) HasRequiredCredentials(ctx context.Context, sess *domain.Session, req Requirements) CredentialCheck {
	var missing []string
	if req.GitHub {
		if _, ok := r.GitHubToken(sess); !ok {
			missing = append(missing, "GitHub")
		}
	}
	if req.Google {
		if _, ok := r.GoogleToken(ctx, sess); !ok {
			missing = append(missing, "Google Drive")
		}
	}
	return CredentialCheck{Valid: len(missing) == 0, Missing: missing}
}
