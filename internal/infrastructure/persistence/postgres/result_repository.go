package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	"github.com/obrentanasic/drs-projekat/internal/domain"
)

const (
	insertResultSQL = `INSERT INTO results
		(id, quiz_id, user_id, user_name, score, max_score, percentage, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`

	selectResultSQL = `SELECT id, quiz_id, user_id, user_name, score, max_score, percentage, created_at
		FROM results`
)

type ResultRepository struct {
	pool *pgxpool.Pool
}

func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Create stores a scored result. The result shares its ID with the
// submission, so a retried scoring task cannot produce duplicates.
func (r *ResultRepository) Create(ctx context.Context, result *domain.Result) error {
	_, err := r.pool.Exec(ctx, insertResultSQL,
		result.ID, result.QuizID.UUID, result.UserID.UUID, result.UserName,
		result.Score, result.MaxScore, result.Percentage, result.CreatedAt)
	return err
}

func (r *ResultRepository) GetByID(ctx context.Context, resultID uuid.UUID) (*domain.Result, error) {
	row := r.pool.QueryRow(ctx, selectResultSQL+" WHERE id = $1", resultID)
	return scanResult(row)
}

func (r *ResultRepository) ListByQuiz(ctx context.Context, quizID domain.QuizID, limit, offset int) ([]*domain.Result, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM results WHERE quiz_id = $1`, quizID.UUID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		selectResultSQL+" WHERE quiz_id = $1 ORDER BY score DESC, created_at ASC LIMIT $2 OFFSET $3",
		quizID.UUID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	results, err := collectResults(rows)
	return results, total, err
}

func (r *ResultRepository) ListByUser(ctx context.Context, userID domain.UserID, limit, offset int) ([]*domain.Result, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM results WHERE user_id = $1`, userID.UUID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		selectResultSQL+" WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		userID.UUID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	results, err := collectResults(rows)
	return results, total, err
}

func (r *ResultRepository) QuizStatistics(ctx context.Context, quizID domain.QuizID) (*domain.QuizStatistics, error) {
	stats := &domain.QuizStatistics{}
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*),
			COALESCE(AVG(score), 0), COALESCE(AVG(percentage), 0),
			COALESCE(MAX(score), 0), COALESCE(MIN(score), 0)
		FROM results WHERE quiz_id = $1`, quizID.UUID).
		Scan(&stats.TotalAttempts, &stats.AverageScore, &stats.AveragePercentage,
			&stats.MaxScore, &stats.MinScore)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func collectResults(rows pgx.Rows) ([]*domain.Result, error) {
	var results []*domain.Result
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func scanResult(row pgx.Row) (*domain.Result, error) {
	var res domain.Result
	err := row.Scan(&res.ID, &res.QuizID.UUID, &res.UserID.UUID, &res.UserName,
		&res.Score, &res.MaxScore, &res.Percentage, &res.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

var _ ports.ResultRepository = (*ResultRepository)(nil)
