package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	"github.com/obrentanasic/drs-projekat/internal/domain"
)

type LoginAttemptRepository struct {
	pool *pgxpool.Pool
}

func NewLoginAttemptRepository(pool *pgxpool.Pool) *LoginAttemptRepository {
	return &LoginAttemptRepository{pool: pool}
}

func (r *LoginAttemptRepository) Record(ctx context.Context, attempt *domain.LoginAttempt) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO login_attempts (email, ip, outcome, created_at) VALUES ($1, $2, $3, $4)`,
		attempt.Email, attempt.IP, attempt.Outcome, attempt.CreatedAt)
	return err
}

func (r *LoginAttemptRepository) ListByEmail(ctx context.Context, email string, limit int) ([]*domain.LoginAttempt, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, email, ip, outcome, created_at FROM login_attempts
		 WHERE email = $1 ORDER BY created_at DESC LIMIT $2`, email, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []*domain.LoginAttempt
	for rows.Next() {
		var a domain.LoginAttempt
		if err := rows.Scan(&a.ID, &a.Email, &a.IP, &a.Outcome, &a.CreatedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, &a)
	}
	return attempts, rows.Err()
}

func (r *LoginAttemptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM login_attempts WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ ports.LoginAttemptRepository = (*LoginAttemptRepository)(nil)
