package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/obrentanasic/drs-projekat/internal/domain"
)

// UserFilter narrows admin user listings. Zero value lists everyone.
type UserFilter struct {
	// Search matches name or email, case-insensitive substring.
	Search string
	Role   string
	Limit  int
	Offset int
}

// UserStats is the aggregate shown on the admin dashboard.
type UserStats struct {
	Total   int64
	ByRole  map[string]int64
	Blocked int64
}

// UserRepository defines persistence for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]*domain.User, int64, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, userID domain.UserID) error
	Stats(ctx context.Context) (*UserStats, error)
}

// QuizFilter narrows quiz listings.
type QuizFilter struct {
	Status   string
	AuthorID *domain.UserID
	Limit    int
	Offset   int
}

// QuizRepository defines persistence for quizzes with their questions and
// answers. Writes replace the whole question tree.
type QuizRepository interface {
	Create(ctx context.Context, quiz *domain.Quiz) error
	Update(ctx context.Context, quiz *domain.Quiz) error
	GetByID(ctx context.Context, quizID domain.QuizID) (*domain.Quiz, error)
	List(ctx context.Context, filter QuizFilter) ([]*domain.Quiz, int64, error)
	Delete(ctx context.Context, quizID domain.QuizID) error
}

// ResultRepository defines persistence for scored quiz results.
type ResultRepository interface {
	Create(ctx context.Context, result *domain.Result) error
	GetByID(ctx context.Context, resultID uuid.UUID) (*domain.Result, error)
	ListByQuiz(ctx context.Context, quizID domain.QuizID, limit, offset int) ([]*domain.Result, int64, error)
	ListByUser(ctx context.Context, userID domain.UserID, limit, offset int) ([]*domain.Result, int64, error)
	QuizStatistics(ctx context.Context, quizID domain.QuizID) (*domain.QuizStatistics, error)
}

// SubmissionRepository stores raw submissions until the worker scores them.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *domain.Submission) error
	GetByID(ctx context.Context, subID uuid.UUID) (*domain.Submission, error)
}

// LoginAttemptRepository records login attempts for the audit trail. It is
// write-mostly and must never block a login on failure.
type LoginAttemptRepository interface {
	Record(ctx context.Context, attempt *domain.LoginAttempt) error
	ListByEmail(ctx context.Context, email string, limit int) ([]*domain.LoginAttempt, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
