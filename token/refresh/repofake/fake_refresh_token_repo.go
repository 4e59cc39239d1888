package refreshrepofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-share-portal/token/refresh"
)

var _ refresh.Repo = (*FakeRefreshTokenRepo)(nil)

// FakeRefreshTokenRepo is an in-memory Repo that records how it was used.
type FakeRefreshTokenRepo struct {
	tokens   map[string]string
	GetCalls int
	SetCalls int
	GetErr   error
	SetErr   error
	lock     sync.Mutex
}

func NewFakeRefreshTokenRepo() *FakeRefreshTokenRepo {
	return &FakeRefreshTokenRepo{
		tokens: make(map[string]string),
	}
}

func (tr *FakeRefreshTokenRepo) Get(_ context.Context, userID string) (string, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	tr.GetCalls++
	if tr.GetErr != nil {
		return "", tr.GetErr
	}
	token, ok := tr.tokens[userID]
	if !ok {
		return "", refresh.ErrNotFound
	}
	return token, nil
}

func (tr *FakeRefreshTokenRepo) Set(_ context.Context, userID, refreshToken string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	tr.SetCalls++
	if tr.SetErr != nil {
		return tr.SetErr
	}
	tr.tokens[userID] = refreshToken
	return nil
}

// Token returns the stored token without counting a Get call.
func (tr *FakeRefreshTokenRepo) Token(userID string) string {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	return tr.tokens[userID]
}
