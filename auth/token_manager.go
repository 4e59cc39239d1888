package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-share-portal/internal/config"
	"github.com/jrsteele09/go-share-portal/internal/errors"
	"github.com/jrsteele09/go-share-portal/metrics"
	"github.com/jrsteele09/go-share-portal/token/refresh"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	authorizePath = "/oauth/v2/auth"
	tokenPath     = "/oauth/v2/token"
)

// TokenPair is the result of a successful authorization code exchange.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// TokenManager exchanges authorization codes and refreshes CRM access tokens.
// Refresh tokens are persisted per user in a refresh.Repo.
type TokenManager struct {
	oauth  *oauth2.Config
	repo   refresh.Repo
	client *http.Client
}

// NewTokenManager builds the OAuth client for the CRM identity provider.
// The provider expects client credentials in the form body rather than basic auth.
func NewTokenManager(cfg config.ZohoConfig, repo refresh.Repo, client *http.Client) *TokenManager {
	if client == nil {
		client = http.DefaultClient
	}
	return &TokenManager{
		oauth: &oauth2.Config{
			ClientID:     cfg.GetZohoClientID(),
			ClientSecret: cfg.GetZohoClientSecret(),
			RedirectURL:  cfg.GetZohoRedirectURI(),
			// The provider takes a single comma separated scope list
			Scopes: []string{cfg.GetZohoScopes()},
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.GetZohoOAuthURL() + authorizePath,
				TokenURL:  cfg.GetZohoOAuthURL() + tokenPath,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		repo:   repo,
		client: client,
	}
}

// AuthCodeURL returns the consent page URL requesting offline access so that
// the code exchange also yields a refresh token.
func (m *TokenManager) AuthCodeURL(state string) string {
	return m.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeCode trades an authorization code for a token pair. A refresh token
// in the response is stored for userID before the pair is returned.
func (m *TokenManager) ExchangeCode(ctx context.Context, userID, code string) (TokenPair, error) {
	tok, err := m.oauth.Exchange(m.clientContext(ctx), code)
	if err != nil {
		return TokenPair{}, classifyTokenError(err)
	}

	if tok.RefreshToken != "" {
		if err := m.repo.Set(ctx, userID, tok.RefreshToken); err != nil {
			return TokenPair{}, fmt.Errorf("[TokenManager ExchangeCode] failed to store refresh token: %w", err)
		}
	}

	return TokenPair{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}, nil
}

// Refresh returns a new access token for userID using the stored refresh token.
// It reports false when there is no stored token (without any network call) or
// when the provider refuses the grant. Failures are logged, never returned:
// callers can only treat the user as unauthenticated either way.
func (m *TokenManager) Refresh(ctx context.Context, userID string) (string, bool) {
	logger := zerolog.Ctx(ctx)

	refreshToken, err := m.repo.Get(ctx, userID)
	if err != nil || refreshToken == "" {
		if err != nil && !errors.Is(err, refresh.ErrNotFound) {
			logger.Err(err).Str("user_id", userID).Msg("Failed to read refresh token")
		}
		metrics.TokenRefreshes.WithLabelValues("no_token").Inc()
		return "", false
	}

	tok, err := m.oauth.TokenSource(m.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		logger.Warn().Err(classifyTokenError(err)).Str("user_id", userID).Msg("Access token refresh failed")
		metrics.TokenRefreshes.WithLabelValues("failed").Inc()
		return "", false
	}

	if tok.RefreshToken != "" && tok.RefreshToken != refreshToken {
		if err := m.repo.Set(ctx, userID, tok.RefreshToken); err != nil {
			logger.Err(err).Str("user_id", userID).Msg("Failed to store rotated refresh token")
		}
	}

	metrics.TokenRefreshes.WithLabelValues("success").Inc()
	return tok.AccessToken, true
}

func (m *TokenManager) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, m.client)
}

// classifyTokenError maps x/oauth2 failures onto the token exchange taxonomy.
func classifyTokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) && strings.Contains(err.Error(), "missing access_token") {
		return fmt.Errorf("%w: %w", errors.ErrMissingAccessToken, err)
	}
	return fmt.Errorf("%w: %w", errors.ErrTokenExchange, err)
}

// ExchangeErrorCode returns the provider's error code for a failed exchange,
// suitable for the ?error= parameter of a redirect.
func ExchangeErrorCode(err error) string {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode != "" {
		return retrieveErr.ErrorCode
	}
	if errors.Is(err, errors.ErrMissingAccessToken) {
		return "NoAccessToken"
	}
	return "TokenError"
}
