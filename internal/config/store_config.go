package config

import "fmt"

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type StoreConfig interface {
	GetTokenStore() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetPostgresDSN() string
}

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetTokenStore() string {
	return GetEnv("TOKEN_STORE", StoreMemory)
}

func (Store) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", GetEnv("REDIS_HOST", "localhost"), GetEnvInt("REDIS_PORT", 6379))
}

func (Store) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Store) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}

func (Store) GetPostgresDSN() string {
	return GetEnv("POSTGRES_DSN", "postgres://localhost:5432/portal?sslmode=disable")
}
