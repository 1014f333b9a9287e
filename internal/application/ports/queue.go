package ports

import (
	"context"

	"github.com/google/uuid"
)

// TaskEnqueuer enqueues async tasks (scoring, email).
type TaskEnqueuer interface {
	// EnqueueScoreSubmission hands a stored submission to the worker for
	// grading and the result email.
	EnqueueScoreSubmission(ctx context.Context, submissionID uuid.UUID) error
	EnqueueRoleChangedEmail(ctx context.Context, email, name, role string) error
}
