package main

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-share-portal/internal/config"
	"github.com/jrsteele09/go-share-portal/token/refresh"
	"github.com/jrsteele09/go-share-portal/token/refresh/pgrepo"
	"github.com/jrsteele09/go-share-portal/token/refresh/redisrepo"
	"github.com/rs/zerolog/log"
)

type refreshStore interface {
	refresh.Repo
	Close() error
}

type memoryStore struct {
	*refresh.InMemoryRepo
}

func (memoryStore) Close() error { return nil }

// openRefreshStore selects where refresh tokens are kept from TOKEN_STORE.
func openRefreshStore(ctx context.Context, c config.StoreConfig) (refreshStore, error) {
	switch c.GetTokenStore() {
	case config.StoreMemory:
		log.Warn().Msg("Refresh tokens are kept in memory and are lost on restart")
		return memoryStore{refresh.NewInMemoryRepo()}, nil
	case config.StoreRedis:
		log.Info().Str("addr", c.GetRedisAddr()).Msg("Using redis token store")
		return redisrepo.New(ctx, c.GetRedisAddr(), c.GetRedisPassword(), c.GetRedisDB())
	case config.StorePostgres:
		log.Info().Msg("Using postgres token store")
		return pgrepo.Open(ctx, c.GetPostgresDSN())
	default:
		return nil, fmt.Errorf("unknown TOKEN_STORE %q", c.GetTokenStore())
	}
}
