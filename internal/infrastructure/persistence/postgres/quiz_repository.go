package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	"github.com/obrentanasic/drs-projekat/internal/domain"
)

const (
	insertQuizSQL = `INSERT INTO quizzes
		(id, title, author_id, author_name, duration_seconds, status, rejection_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	updateQuizSQL = `UPDATE quizzes SET
		title = $2, duration_seconds = $3, status = $4, rejection_reason = $5, updated_at = $6
		WHERE id = $1`

	selectQuizSQL = `SELECT id, title, author_id, author_name, duration_seconds, status, rejection_reason, created_at, updated_at
		FROM quizzes`

	insertQuestionSQL = `INSERT INTO questions (id, quiz_id, text, points, ord) VALUES ($1, $2, $3, $4, $5)`
	insertAnswerSQL   = `INSERT INTO answers (id, question_id, text, is_correct, ord) VALUES ($1, $2, $3, $4, $5)`
	deleteQuestionsSQL = `DELETE FROM questions WHERE quiz_id = $1`

	selectQuestionsSQL = `SELECT q.id, q.text, q.points, q.ord, a.id, a.text, a.is_correct, a.ord
		FROM questions q JOIN answers a ON a.question_id = q.id
		WHERE q.quiz_id = $1
		ORDER BY q.ord, a.ord`
)

// QuizRepository stores quizzes with their question trees. Writes replace
// the whole tree inside one transaction; list queries return quizzes without
// questions since the listing views never show them.
type QuizRepository struct {
	pool *pgxpool.Pool
}

func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

func (r *QuizRepository) Create(ctx context.Context, quiz *domain.Quiz) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx, insertQuizSQL,
		quiz.ID.UUID, quiz.Title, quiz.AuthorID.UUID, quiz.AuthorName,
		quiz.DurationSeconds, quiz.Status, quiz.RejectionReason,
		quiz.CreatedAt, quiz.UpdatedAt); err != nil {
		return err
	}
	if err := insertQuestionTree(ctx, tx, quiz); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *QuizRepository) Update(ctx context.Context, quiz *domain.Quiz) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	tag, err := tx.Exec(ctx, updateQuizSQL,
		quiz.ID.UUID, quiz.Title, quiz.DurationSeconds, quiz.Status,
		quiz.RejectionReason, quiz.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	if _, err := tx.Exec(ctx, deleteQuestionsSQL, quiz.ID.UUID); err != nil {
		return err
	}
	if err := insertQuestionTree(ctx, tx, quiz); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertQuestionTree(ctx context.Context, tx pgx.Tx, quiz *domain.Quiz) error {
	for _, q := range quiz.Questions {
		if _, err := tx.Exec(ctx, insertQuestionSQL, q.ID, quiz.ID.UUID, q.Text, q.Points, q.Order); err != nil {
			return err
		}
		for _, a := range q.Answers {
			if _, err := tx.Exec(ctx, insertAnswerSQL, a.ID, q.ID, a.Text, a.IsCorrect, a.Order); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *QuizRepository) GetByID(ctx context.Context, quizID domain.QuizID) (*domain.Quiz, error) {
	row := r.pool.QueryRow(ctx, selectQuizSQL+" WHERE id = $1", quizID.UUID)
	quiz, err := scanQuiz(row)
	if err != nil || quiz == nil {
		return quiz, err
	}
	if err := r.loadQuestions(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (r *QuizRepository) loadQuestions(ctx context.Context, quiz *domain.Quiz) error {
	rows, err := r.pool.Query(ctx, selectQuestionsSQL, quiz.ID.UUID)
	if err != nil {
		return err
	}
	defer rows.Close()

	var current *domain.Question
	for rows.Next() {
		var q domain.Question
		var a domain.Answer
		if err := rows.Scan(&q.ID, &q.Text, &q.Points, &q.Order,
			&a.ID, &a.Text, &a.IsCorrect, &a.Order); err != nil {
			return err
		}
		if current == nil || current.ID != q.ID {
			quiz.Questions = append(quiz.Questions, q)
			current = &quiz.Questions[len(quiz.Questions)-1]
		}
		current.Answers = append(current.Answers, a)
	}
	return rows.Err()
}

func (r *QuizRepository) List(ctx context.Context, filter ports.QuizFilter) ([]*domain.Quiz, int64, error) {
	var clauses []string
	var args []interface{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.AuthorID != nil {
		args = append(args, filter.AuthorID.UUID)
		clauses = append(clauses, fmt.Sprintf("author_id = $%d", len(args)))
	}
	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM quizzes"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf("%s%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		selectQuizSQL, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var quizzes []*domain.Quiz
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, 0, err
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, total, rows.Err()
}

func (r *QuizRepository) Delete(ctx context.Context, quizID domain.QuizID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, quizID.UUID)
	return err
}

func scanQuiz(row pgx.Row) (*domain.Quiz, error) {
	var q domain.Quiz
	err := row.Scan(&q.ID.UUID, &q.Title, &q.AuthorID.UUID, &q.AuthorName,
		&q.DurationSeconds, &q.Status, &q.RejectionReason, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

var _ ports.QuizRepository = (*QuizRepository)(nil)
