package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	"github.com/obrentanasic/drs-projekat/internal/domain"
)

// Worker runs the Asynq handlers: grading submitted answer sheets and the
// notification emails. Scoring happens here rather than in the request path
// so submissions return immediately regardless of quiz size.
type Worker struct {
	srv         *asynq.Server
	mux         *asynq.ServeMux
	submissions ports.SubmissionRepository
	quizzes     ports.QuizRepository
	results     ports.ResultRepository
	mailer      ports.Mailer
	log         zerolog.Logger
}

// NewWorker creates an Asynq server and registers handlers. Call Run() to start.
func NewWorker(redisOpt asynq.RedisClientOpt, submissions ports.SubmissionRepository, quizzes ports.QuizRepository, results ports.ResultRepository, mailer ports.Mailer, log zerolog.Logger) *Worker {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 4,
		LogLevel:    asynq.InfoLevel,
	})
	mux := asynq.NewServeMux()
	w := &Worker{
		srv:         srv,
		mux:         mux,
		submissions: submissions,
		quizzes:     quizzes,
		results:     results,
		mailer:      mailer,
		log:         log,
	}
	mux.HandleFunc(TypeScoreSubmission, w.handleScoreSubmission)
	mux.HandleFunc(TypeRoleChangedEmail, w.handleRoleChangedEmail)
	return w
}

func (w *Worker) handleScoreSubmission(ctx context.Context, t *asynq.Task) error {
	var p scorePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		w.log.Error().Err(err).Msg("scoring task payload invalid")
		return fmt.Errorf("decode payload: %w", asynq.SkipRetry)
	}
	subID, err := uuid.Parse(p.SubmissionID)
	if err != nil {
		return fmt.Errorf("bad submission id %q: %w", p.SubmissionID, asynq.SkipRetry)
	}
	sub, err := w.submissions.GetByID(ctx, subID)
	if err != nil {
		return err
	}
	if sub == nil {
		w.log.Warn().Str("submission_id", p.SubmissionID).Msg("submission vanished before scoring")
		return nil
	}
	quiz, err := w.quizzes.GetByID(ctx, sub.QuizID)
	if err != nil {
		return err
	}
	if quiz == nil {
		w.log.Warn().Str("quiz_id", sub.QuizID.String()).Msg("quiz deleted before submission was scored")
		return nil
	}

	score := domain.ScoreSubmission(quiz, sub)
	maxScore := quiz.MaxScore()
	percentage := 0.0
	if maxScore > 0 {
		percentage = float64(score) / float64(maxScore) * 100
	}
	result := &domain.Result{
		ID:         sub.ID,
		QuizID:     quiz.ID,
		UserID:     sub.UserID,
		UserName:   sub.UserName,
		Score:      score,
		MaxScore:   maxScore,
		Percentage: percentage,
		CreatedAt:  time.Now(),
	}
	if err := w.results.Create(ctx, result); err != nil {
		return err
	}
	w.log.Info().
		Str("submission_id", sub.ID.String()).
		Str("quiz_id", quiz.ID.String()).
		Int("score", score).
		Int("max_score", maxScore).
		Msg("submission scored")

	w.sendResultEmail(ctx, quiz, sub, result)
	return nil
}

// sendResultEmail is best-effort: the result is already stored, so a mail
// failure must not send the task back for re-scoring.
func (w *Worker) sendResultEmail(ctx context.Context, quiz *domain.Quiz, sub *domain.Submission, result *domain.Result) {
	if w.mailer == nil || sub.UserEmail == "" {
		return
	}
	subject := fmt.Sprintf("Your result for %q", quiz.Title)
	body := fmt.Sprintf("Hi %s,\n\nYour submission for %q has been graded.\n\nScore: %d / %d (%.1f%%)\n",
		sub.UserName, quiz.Title, result.Score, result.MaxScore, result.Percentage)
	if err := w.mailer.Send(ctx, sub.UserEmail, subject, body); err != nil {
		w.log.Warn().Err(err).Str("email", sub.UserEmail).Msg("result email failed")
	}
}

func (w *Worker) handleRoleChangedEmail(ctx context.Context, t *asynq.Task) error {
	var p roleChangedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		w.log.Error().Err(err).Msg("role change task payload invalid")
		return fmt.Errorf("decode payload: %w", asynq.SkipRetry)
	}
	if w.mailer == nil {
		w.log.Info().Str("email", p.Email).Str("role", p.Role).Msg("role change email (log only; configure SMTP for real email)")
		return nil
	}
	body := fmt.Sprintf("Hi %s,\n\nAn administrator changed your account role to %s.\n", p.Name, p.Role)
	return w.mailer.Send(ctx, p.Email, "Your account role has changed", body)
}

// Run blocks until shutdown. Use Shutdown for graceful stop.
func (w *Worker) Run() error {
	return w.srv.Run(w.mux)
}

// Shutdown stops the worker.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
