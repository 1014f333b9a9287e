package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool connects to Postgres and verifies the connection.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConnLifetime = time.Hour
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		date_of_birth DATE NOT NULL,
		gender TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		street TEXT NOT NULL DEFAULT '',
		number TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'PLAYER',
		blocked_until TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS quizzes (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		author_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		author_name TEXT NOT NULL DEFAULT '',
		duration_seconds INT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		rejection_reason TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS questions (
		id UUID PRIMARY KEY,
		quiz_id UUID NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		points INT NOT NULL,
		ord INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS answers (
		id UUID PRIMARY KEY,
		question_id UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		is_correct BOOLEAN NOT NULL DEFAULT FALSE,
		ord INT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS submissions (
		id UUID PRIMARY KEY,
		quiz_id UUID NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		user_name TEXT NOT NULL DEFAULT '',
		user_email TEXT NOT NULL DEFAULT '',
		answers JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS results (
		id UUID PRIMARY KEY,
		quiz_id UUID NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		user_name TEXT NOT NULL DEFAULT '',
		score INT NOT NULL,
		max_score INT NOT NULL,
		percentage DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS login_attempts (
		id BIGSERIAL PRIMARY KEY,
		email TEXT NOT NULL,
		ip TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quizzes_status ON quizzes(status)`,
	`CREATE INDEX IF NOT EXISTS idx_results_quiz_score ON results(quiz_id, score DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_results_user ON results(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_login_attempts_email ON login_attempts(email, created_at DESC)`,
}

// Migrate applies the schema. Statements are idempotent so repeated boots
// are safe.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
