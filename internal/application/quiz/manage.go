package quiz

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	"github.com/obrentanasic/drs-projekat/internal/domain"
	domerrors "github.com/obrentanasic/drs-projekat/internal/domain/errors"
)

type QuestionInput struct {
	Text    string
	Points  int
	Answers []AnswerInput
}

type AnswerInput struct {
	Text      string
	IsCorrect bool
}

type CreateQuizInput struct {
	AuthorID        domain.UserID
	AuthorName      string
	Title           string
	DurationSeconds int
	Questions       []QuestionInput
}

// CreateQuiz stores a new quiz in PENDING status awaiting admin review.
type CreateQuiz struct {
	quizzes ports.QuizRepository
	now     func() time.Time
}

func NewCreateQuiz(quizzes ports.QuizRepository) *CreateQuiz {
	return &CreateQuiz{quizzes: quizzes, now: time.Now}
}

func (uc *CreateQuiz) Execute(ctx context.Context, input CreateQuizInput) (*domain.Quiz, error) {
	questions, err := buildQuestions(input.Questions)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, &domerrors.ValidationError{Field: "title", Message: "title is required"}
	}
	if input.DurationSeconds <= 0 {
		return nil, &domerrors.ValidationError{Field: "duration_seconds", Message: "duration must be positive"}
	}
	now := uc.now()
	quiz := &domain.Quiz{
		ID:              domain.NewQuizID(uuid.New()),
		Title:           strings.TrimSpace(input.Title),
		AuthorID:        input.AuthorID,
		AuthorName:      input.AuthorName,
		DurationSeconds: input.DurationSeconds,
		Status:          domain.QuizStatusPending,
		Questions:       questions,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.quizzes.Create(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

type UpdateQuizInput struct {
	QuizID          domain.QuizID
	AuthorID        domain.UserID
	Title           string
	DurationSeconds int
	Questions       []QuestionInput
}

// UpdateQuiz lets the author rework a rejected quiz. The edit replaces the
// question tree and returns the quiz to PENDING for a fresh review.
type UpdateQuiz struct {
	quizzes ports.QuizRepository
	now     func() time.Time
}

func NewUpdateQuiz(quizzes ports.QuizRepository) *UpdateQuiz {
	return &UpdateQuiz{quizzes: quizzes, now: time.Now}
}

func (uc *UpdateQuiz) Execute(ctx context.Context, input UpdateQuizInput) (*domain.Quiz, error) {
	quiz, err := uc.quizzes.GetByID(ctx, input.QuizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, domerrors.ErrQuizNotFound
	}
	if quiz.AuthorID != input.AuthorID {
		return nil, domerrors.ErrNotQuizAuthor
	}
	if quiz.Status != domain.QuizStatusRejected {
		return nil, domerrors.ErrQuizNotEditable
	}
	questions, err := buildQuestions(input.Questions)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, &domerrors.ValidationError{Field: "title", Message: "title is required"}
	}
	if input.DurationSeconds <= 0 {
		return nil, &domerrors.ValidationError{Field: "duration_seconds", Message: "duration must be positive"}
	}
	quiz.Title = strings.TrimSpace(input.Title)
	quiz.DurationSeconds = input.DurationSeconds
	quiz.Questions = questions
	quiz.Status = domain.QuizStatusPending
	quiz.RejectionReason = nil
	quiz.UpdatedAt = uc.now()
	if err := uc.quizzes.Update(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// buildQuestions validates and materializes the question tree. Every question
// needs at least two answers and at least one correct one.
func buildQuestions(inputs []QuestionInput) ([]domain.Question, error) {
	if len(inputs) == 0 {
		return nil, &domerrors.ValidationError{Field: "questions", Message: "at least one question is required"}
	}
	questions := make([]domain.Question, 0, len(inputs))
	for qi, q := range inputs {
		if strings.TrimSpace(q.Text) == "" {
			return nil, &domerrors.ValidationError{Field: "questions", Message: "question text is required"}
		}
		if q.Points <= 0 {
			return nil, &domerrors.ValidationError{Field: "questions", Message: "question points must be positive"}
		}
		if len(q.Answers) < 2 {
			return nil, &domerrors.ValidationError{Field: "questions", Message: "each question needs at least two answers"}
		}
		answers := make([]domain.Answer, 0, len(q.Answers))
		hasCorrect := false
		for ai, a := range q.Answers {
			if strings.TrimSpace(a.Text) == "" {
				return nil, &domerrors.ValidationError{Field: "questions", Message: "answer text is required"}
			}
			if a.IsCorrect {
				hasCorrect = true
			}
			answers = append(answers, domain.Answer{
				ID:        uuid.New(),
				Text:      strings.TrimSpace(a.Text),
				IsCorrect: a.IsCorrect,
				Order:     ai,
			})
		}
		if !hasCorrect {
			return nil, &domerrors.ValidationError{Field: "questions", Message: "each question needs a correct answer"}
		}
		questions = append(questions, domain.Question{
			ID:      uuid.New(),
			Text:    strings.TrimSpace(q.Text),
			Points:  q.Points,
			Order:   qi,
			Answers: answers,
		})
	}
	return questions, nil
}

type ListQuizzesInput struct {
	Status   string
	AuthorID *domain.UserID
	Limit    int
	Offset   int
}

type ListQuizzesResult struct {
	Quizzes []*domain.Quiz
	Total   int64
}

type ListQuizzes struct {
	quizzes ports.QuizRepository
}

func NewListQuizzes(quizzes ports.QuizRepository) *ListQuizzes {
	return &ListQuizzes{quizzes: quizzes}
}

func (uc *ListQuizzes) Execute(ctx context.Context, input ListQuizzesInput) (*ListQuizzesResult, error) {
	if input.Limit <= 0 || input.Limit > 100 {
		input.Limit = 20
	}
	if input.Offset < 0 {
		input.Offset = 0
	}
	quizzes, total, err := uc.quizzes.List(ctx, ports.QuizFilter{
		Status:   input.Status,
		AuthorID: input.AuthorID,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &ListQuizzesResult{Quizzes: quizzes, Total: total}, nil
}

// GetQuizForPlay returns an approved quiz with the correctness flags hidden,
// so the payload a player downloads never reveals the answers.
type GetQuizForPlay struct {
	quizzes ports.QuizRepository
}

func NewGetQuizForPlay(quizzes ports.QuizRepository) *GetQuizForPlay {
	return &GetQuizForPlay{quizzes: quizzes}
}

func (uc *GetQuizForPlay) Execute(ctx context.Context, quizID domain.QuizID) (*domain.Quiz, error) {
	quiz, err := uc.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, domerrors.ErrQuizNotFound
	}
	if quiz.Status != domain.QuizStatusApproved {
		return nil, domerrors.ErrQuizNotApproved
	}
	stripped := *quiz
	stripped.Questions = make([]domain.Question, len(quiz.Questions))
	for i, q := range quiz.Questions {
		sq := q
		sq.Answers = make([]domain.Answer, len(q.Answers))
		for j, a := range q.Answers {
			a.IsCorrect = false
			sq.Answers[j] = a
		}
		stripped.Questions[i] = sq
	}
	return &stripped, nil
}
