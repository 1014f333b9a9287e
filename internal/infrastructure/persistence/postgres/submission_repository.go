package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	"github.com/obrentanasic/drs-projekat/internal/domain"
)

// SubmissionRepository stores answer sheets as JSONB until the worker picks
// them up. The answer map never needs relational queries, so a document
// column beats three join tables here.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

func (r *SubmissionRepository) Create(ctx context.Context, sub *domain.Submission) error {
	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO submissions (id, quiz_id, user_id, user_name, user_email, answers, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sub.ID, sub.QuizID.UUID, sub.UserID.UUID, sub.UserName, sub.UserEmail, answers, sub.CreatedAt)
	return err
}

func (r *SubmissionRepository) GetByID(ctx context.Context, subID uuid.UUID) (*domain.Submission, error) {
	var sub domain.Submission
	var answers []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, quiz_id, user_id, user_name, user_email, answers, created_at
		 FROM submissions WHERE id = $1`, subID).
		Scan(&sub.ID, &sub.QuizID.UUID, &sub.UserID.UUID, &sub.UserName, &sub.UserEmail, &answers, &sub.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(answers, &sub.Answers); err != nil {
		return nil, err
	}
	return &sub, nil
}

var _ ports.SubmissionRepository = (*SubmissionRepository)(nil)
