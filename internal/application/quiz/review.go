package quiz

import (
	"context"
	"strings"
	"time"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	"github.com/obrentanasic/drs-projekat/internal/domain"
	domerrors "github.com/obrentanasic/drs-projekat/internal/domain/errors"
)

type ReviewQuizInput struct {
	QuizID  domain.QuizID
	Approve bool
	// Reason is mandatory on rejection so the author knows what to fix.
	Reason string
}

// ReviewQuiz is the admin decision on a pending quiz.
type ReviewQuiz struct {
	quizzes ports.QuizRepository
	now     func() time.Time
}

func NewReviewQuiz(quizzes ports.QuizRepository) *ReviewQuiz {
	return &ReviewQuiz{quizzes: quizzes, now: time.Now}
}

func (uc *ReviewQuiz) Execute(ctx context.Context, input ReviewQuizInput) (*domain.Quiz, error) {
	quiz, err := uc.quizzes.GetByID(ctx, input.QuizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, domerrors.ErrQuizNotFound
	}
	if quiz.Status != domain.QuizStatusPending {
		return nil, &domerrors.ValidationError{Field: "status", Message: "only pending quizzes can be reviewed"}
	}
	if input.Approve {
		quiz.Status = domain.QuizStatusApproved
		quiz.RejectionReason = nil
	} else {
		reason := strings.TrimSpace(input.Reason)
		if reason == "" {
			return nil, &domerrors.ValidationError{Field: "reason", Message: "a rejection reason is required"}
		}
		quiz.Status = domain.QuizStatusRejected
		quiz.RejectionReason = &reason
	}
	quiz.UpdatedAt = uc.now()
	if err := uc.quizzes.Update(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// DeleteQuiz removes a quiz. Admins may delete any quiz; authors only their
// own and only while it is not approved.
type DeleteQuiz struct {
	quizzes ports.QuizRepository
}

func NewDeleteQuiz(quizzes ports.QuizRepository) *DeleteQuiz {
	return &DeleteQuiz{quizzes: quizzes}
}

func (uc *DeleteQuiz) Execute(ctx context.Context, quizID domain.QuizID, actorID domain.UserID, isAdmin bool) error {
	quiz, err := uc.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return err
	}
	if quiz == nil {
		return domerrors.ErrQuizNotFound
	}
	if !isAdmin {
		if quiz.AuthorID != actorID {
			return domerrors.ErrNotQuizAuthor
		}
		if quiz.Status == domain.QuizStatusApproved {
			return domerrors.ErrQuizNotEditable
		}
	}
	return uc.quizzes.Delete(ctx, quizID)
}
