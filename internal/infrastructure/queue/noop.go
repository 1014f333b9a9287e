package queue

import (
	"context"

	"github.com/google/uuid"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
)

// NoopEnqueuer is a no-op enqueuer when Redis/Asynq is not configured.
// Submissions still land in storage; they are simply never scored, which is
// acceptable only in development.
type NoopEnqueuer struct{}

func NewNoopEnqueuer() *NoopEnqueuer {
	return &NoopEnqueuer{}
}

func (q *NoopEnqueuer) EnqueueScoreSubmission(ctx context.Context, submissionID uuid.UUID) error {
	return nil
}

func (q *NoopEnqueuer) EnqueueRoleChangedEmail(ctx context.Context, email, name, role string) error {
	return nil
}

var _ ports.TaskEnqueuer = (*NoopEnqueuer)(nil)
