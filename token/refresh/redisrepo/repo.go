// Package redisrepo stores refresh tokens in Redis so they survive a restart
// of the portal process.
package redisrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-share-portal/token/refresh"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "portal:refresh_token:"

var _ refresh.Repo = (*Repo)(nil)

type Repo struct {
	client *redis.Client
}

// New connects to Redis and checks the connection.
func New(ctx context.Context, addr, password string, db int) (*Repo, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("[redisrepo New] redis connection failed: %w", err)
	}

	return &Repo{client: client}, nil
}

func (r *Repo) Get(ctx context.Context, userID string) (string, error) {
	token, err := r.client.Get(ctx, keyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", refresh.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("[redisrepo Get] %w", err)
	}
	return token, nil
}

func (r *Repo) Set(ctx context.Context, userID, refreshToken string) error {
	if err := r.client.Set(ctx, keyPrefix+userID, refreshToken, 0).Err(); err != nil {
		return fmt.Errorf("[redisrepo Set] %w", err)
	}
	return nil
}

func (r *Repo) Close() error {
	return r.client.Close()
}
