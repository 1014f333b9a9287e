package quiz

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	"github.com/obrentanasic/drs-projekat/internal/domain"
	domerrors "github.com/obrentanasic/drs-projekat/internal/domain/errors"
)

type SubmitQuizInput struct {
	QuizID    domain.QuizID
	UserID    domain.UserID
	UserName  string
	UserEmail string
	// Answers maps question ID to the selected answer IDs.
	Answers map[uuid.UUID][]uuid.UUID
}

type SubmitQuizResult struct {
	SubmissionID uuid.UUID
}

// SubmitQuiz accepts an answer sheet and hands it to the worker. The caller
// gets the submission ID back immediately; the score arrives by email and on
// the results endpoints once the worker has graded it.
type SubmitQuiz struct {
	quizzes     ports.QuizRepository
	submissions ports.SubmissionRepository
	queue       ports.TaskEnqueuer
	now         func() time.Time
}

func NewSubmitQuiz(quizzes ports.QuizRepository, submissions ports.SubmissionRepository, queue ports.TaskEnqueuer) *SubmitQuiz {
	return &SubmitQuiz{quizzes: quizzes, submissions: submissions, queue: queue, now: time.Now}
}

func (uc *SubmitQuiz) Execute(ctx context.Context, input SubmitQuizInput) (*SubmitQuizResult, error) {
	quiz, err := uc.quizzes.GetByID(ctx, input.QuizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, domerrors.ErrQuizNotFound
	}
	if quiz.Status != domain.QuizStatusApproved {
		return nil, domerrors.ErrQuizNotApproved
	}
	sub := &domain.Submission{
		ID:        uuid.New(),
		QuizID:    input.QuizID,
		UserID:    input.UserID,
		UserName:  input.UserName,
		UserEmail: input.UserEmail,
		Answers:   input.Answers,
		CreatedAt: uc.now(),
	}
	if err := uc.submissions.Create(ctx, sub); err != nil {
		return nil, err
	}
	if err := uc.queue.EnqueueScoreSubmission(ctx, sub.ID); err != nil {
		return nil, err
	}
	return &SubmitQuizResult{SubmissionID: sub.ID}, nil
}
