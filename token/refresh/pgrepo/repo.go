// Package pgrepo stores refresh tokens in PostgreSQL.
package pgrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-share-portal/token/refresh"
	_ "github.com/lib/pq"
)

var _ refresh.Repo = (*Repo)(nil)

const schema = `
	CREATE TABLE IF NOT EXISTS refresh_tokens (
		user_id    TEXT PRIMARY KEY,
		token      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

type Repo struct {
	db *sql.DB
}

// Open connects with the lib/pq driver and creates the table if needed.
func Open(ctx context.Context, dsn string) (*Repo, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("[pgrepo Open] %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("[pgrepo Open] postgres connection failed: %w", err)
	}

	r := New(db)
	if err := r.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("[pgrepo EnsureSchema] %w", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, userID string) (string, error) {
	query := `
		SELECT token
		FROM refresh_tokens
		WHERE user_id = $1
	`
	var token string
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", refresh.ErrNotFound
		}
		return "", fmt.Errorf("[pgrepo Get] db error: %w", err)
	}
	return token, nil
}

func (r *Repo) Set(ctx context.Context, userID, refreshToken string) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET token = EXCLUDED.token, updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, userID, refreshToken); err != nil {
		return fmt.Errorf("[pgrepo Set] db error: %w", err)
	}
	return nil
}

func (r *Repo) Close() error {
	return r.db.Close()
}
