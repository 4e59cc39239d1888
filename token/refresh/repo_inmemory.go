package refresh

import (
	"context"
	"fmt"
	"sync"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo keeps refresh tokens for the lifetime of the process.
type InMemoryRepo struct {
	mu     sync.RWMutex
	tokens map[string]string // userID -> refresh token
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		tokens: make(map[string]string),
	}
}

func (r *InMemoryRepo) Get(_ context.Context, userID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[userID]
	if !ok {
		return "", ErrNotFound
	}
	return token, nil
}

func (r *InMemoryRepo) Set(_ context.Context, userID, refreshToken string) error {
	if userID == "" {
		return fmt.Errorf("userID is required")
	}
	if refreshToken == "" {
		return fmt.Errorf("refreshToken is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[userID] = refreshToken
	return nil
}
