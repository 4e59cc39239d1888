package refresh

import (
	"context"

	"github.com/jrsteele09/go-share-portal/internal/errors"
)

// ErrNotFound is returned by Get when no refresh token is stored for a user.
var ErrNotFound = errors.ErrNotFound

// Repo holds the current refresh token for each logical user.
// There is at most one live token per user: Set overwrites whatever was
// stored before, since the identity provider may rotate refresh tokens.
type Repo interface {
	Get(ctx context.Context, userID string) (string, error)
	Set(ctx context.Context, userID, refreshToken string) error
}
