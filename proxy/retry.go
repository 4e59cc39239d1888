// Package proxy wraps authenticated CRM calls with a single
// refresh-and-retry on an authorization failure.
package proxy

import (
	"context"

	"github.com/jrsteele09/go-share-portal/internal/errors"
	"github.com/jrsteele09/go-share-portal/metrics"
	"github.com/rs/zerolog"
)

// RefreshFunc returns a new access token, or false when none can be obtained.
type RefreshFunc func(ctx context.Context) (string, bool)

// Refresher is satisfied by auth.TokenManager.
type Refresher interface {
	Refresh(ctx context.Context, userID string) (string, bool)
}

// RefreshFor binds a Refresher to the user whose stored refresh token is used.
func RefreshFor(r Refresher, userID string) RefreshFunc {
	return func(ctx context.Context) (string, bool) {
		return r.Refresh(ctx, userID)
	}
}

// CallFunc performs one downstream call with the given access token.
type CallFunc[T any] func(ctx context.Context, accessToken string) (T, error)

// WithAuthRetry runs call with the session's access token. Only an upstream
// 401 triggers a refresh; the new token is written back to the session and
// the call is retried exactly once. Every other failure is returned as is.
func WithAuthRetry[T any](ctx context.Context, session Session, refresh RefreshFunc, call CallFunc[T]) (T, error) {
	var zero T

	token := session.AccessToken()
	if token == "" {
		return zero, errors.ErrUnauthenticated
	}

	result, err := call(ctx, token)
	if err == nil || !isAuthorizationFailure(err) {
		return result, err
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().Msg("Upstream rejected the access token, refreshing")

	newToken, ok := refresh(ctx)
	if !ok {
		metrics.AuthRetries.WithLabelValues("refresh_failed").Inc()
		return zero, errors.ErrRefreshFailed
	}
	session.SetAccessToken(newToken)

	result, err = call(ctx, newToken)
	if err != nil {
		metrics.AuthRetries.WithLabelValues("failed").Inc()
		return zero, err
	}
	metrics.AuthRetries.WithLabelValues("success").Inc()
	return result, nil
}

func isAuthorizationFailure(err error) bool {
	var upstream *errors.UpstreamError
	return errors.As(err, &upstream) && upstream.IsAuthorizationFailure()
}
