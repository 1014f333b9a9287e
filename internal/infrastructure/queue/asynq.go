package queue

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
)

const (
	TypeScoreSubmission  = "submission:score"
	TypeRoleChangedEmail = "email:role_changed"
)

type scorePayload struct {
	SubmissionID string `json:"submission_id"`
}

type roleChangedPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type TaskEnqueuer struct {
	client *asynq.Client
	log    zerolog.Logger
}

func NewAsynqEnqueuer(redisOpt asynq.RedisClientOpt, log zerolog.Logger) (*TaskEnqueuer, error) {
	client := asynq.NewClient(redisOpt)
	return &TaskEnqueuer{client: client, log: log}, nil
}

func (q *TaskEnqueuer) Close() error {
	return q.client.Close()
}

func (q *TaskEnqueuer) EnqueueScoreSubmission(ctx context.Context, submissionID uuid.UUID) error {
	payload, _ := json.Marshal(scorePayload{SubmissionID: submissionID.String()})
	task := asynq.NewTask(TypeScoreSubmission, payload, asynq.MaxRetry(5))
	_, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		q.log.Warn().Err(err).Str("submission_id", submissionID.String()).Msg("enqueue scoring task failed")
		return err
	}
	return nil
}

func (q *TaskEnqueuer) EnqueueRoleChangedEmail(ctx context.Context, email, name, role string) error {
	payload, _ := json.Marshal(roleChangedPayload{Email: email, Name: name, Role: role})
	task := asynq.NewTask(TypeRoleChangedEmail, payload)
	_, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		q.log.Warn().Err(err).Str("email", email).Msg("enqueue role change email failed")
		return err
	}
	return nil
}

var _ ports.TaskEnqueuer = (*TaskEnqueuer)(nil)
