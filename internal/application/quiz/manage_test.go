package quiz

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	"github.com/obrentanasic/drs-projekat/internal/domain"
	domerrors "github.com/obrentanasic/drs-projekat/internal/domain/errors"
)

type fakeQuizzes struct {
	byID map[domain.QuizID]*domain.Quiz
}

func newFakeQuizzes() *fakeQuizzes {
	return &fakeQuizzes{byID: map[domain.QuizID]*domain.Quiz{}}
}

func (f *fakeQuizzes) Create(ctx context.Context, q *domain.Quiz) error {
	f.byID[q.ID] = q
	return nil
}

func (f *fakeQuizzes) Update(ctx context.Context, q *domain.Quiz) error {
	f.byID[q.ID] = q
	return nil
}

func (f *fakeQuizzes) GetByID(ctx context.Context, id domain.QuizID) (*domain.Quiz, error) {
	q, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuizzes) List(ctx context.Context, filter ports.QuizFilter) ([]*domain.Quiz, int64, error) {
	var out []*domain.Quiz
	for _, q := range f.byID {
		if filter.Status != "" && q.Status != filter.Status {
			continue
		}
		out = append(out, q)
	}
	return out, int64(len(out)), nil
}

func (f *fakeQuizzes) Delete(ctx context.Context, id domain.QuizID) error {
	delete(f.byID, id)
	return nil
}

type fakeSubmissions struct {
	byID map[uuid.UUID]*domain.Submission
}

func (f *fakeSubmissions) Create(ctx context.Context, s *domain.Submission) error {
	f.byID[s.ID] = s
	return nil
}

func (f *fakeSubmissions) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	return f.byID[id], nil
}

type fakeEnqueuer struct {
	scored []uuid.UUID
}

func (f *fakeEnqueuer) EnqueueScoreSubmission(ctx context.Context, id uuid.UUID) error {
	f.scored = append(f.scored, id)
	return nil
}

func (f *fakeEnqueuer) EnqueueRoleChangedEmail(ctx context.Context, email, name, role string) error {
	return nil
}

func validQuizInput(author domain.UserID) CreateQuizInput {
	return CreateQuizInput{
		AuthorID:        author,
		AuthorName:      "Marko Markovic",
		Title:           "Geography basics",
		DurationSeconds: 300,
		Questions: []QuestionInput{
			{
				Text:   "Capital of Serbia?",
				Points: 2,
				Answers: []AnswerInput{
					{Text: "Belgrade", IsCorrect: true},
					{Text: "Novi Sad"},
				},
			},
			{
				Text:   "Which are EU members?",
				Points: 3,
				Answers: []AnswerInput{
					{Text: "Croatia", IsCorrect: true},
					{Text: "Hungary", IsCorrect: true},
					{Text: "Serbia"},
				},
			},
		},
	}
}

func mustCreate(t *testing.T, quizzes *fakeQuizzes, author domain.UserID) *domain.Quiz {
	t.Helper()
	q, err := NewCreateQuiz(quizzes).Execute(context.Background(), validQuizInput(author))
	if err != nil {
		t.Fatal(err)
	}
	return q
}

func TestCreateQuizStartsPending(t *testing.T) {
	quizzes := newFakeQuizzes()
	author := domain.NewUserID(uuid.New())

	q := mustCreate(t, quizzes, author)
	if q.Status != domain.QuizStatusPending {
		t.Errorf("Status = %q, want PENDING", q.Status)
	}
	if q.MaxScore() != 5 {
		t.Errorf("MaxScore = %d, want 5", q.MaxScore())
	}
	if len(q.Questions) != 2 || len(q.Questions[1].Answers) != 3 {
		t.Errorf("question tree not materialized: %+v", q.Questions)
	}
}

func TestCreateQuizValidation(t *testing.T) {
	quizzes := newFakeQuizzes()
	author := domain.NewUserID(uuid.New())
	uc := NewCreateQuiz(quizzes)
	ctx := context.Background()

	bad := validQuizInput(author)
	bad.Questions[0].Answers = bad.Questions[0].Answers[:1]
	if _, err := uc.Execute(ctx, bad); err == nil {
		t.Error("single-answer question accepted")
	}

	bad = validQuizInput(author)
	bad.Questions[0].Answers[0].IsCorrect = false
	if _, err := uc.Execute(ctx, bad); err == nil {
		t.Error("question without a correct answer accepted")
	}

	bad = validQuizInput(author)
	bad.Questions = nil
	if _, err := uc.Execute(ctx, bad); err == nil {
		t.Error("empty quiz accepted")
	}
}

func TestReviewApproveAndReject(t *testing.T) {
	quizzes := newFakeQuizzes()
	author := domain.NewUserID(uuid.New())
	review := NewReviewQuiz(quizzes)
	ctx := context.Background()

	approved := mustCreate(t, quizzes, author)
	q, err := review.Execute(ctx, ReviewQuizInput{QuizID: approved.ID, Approve: true})
	if err != nil {
		t.Fatal(err)
	}
	if q.Status != domain.QuizStatusApproved {
		t.Errorf("Status = %q", q.Status)
	}

	rejected := mustCreate(t, quizzes, author)
	if _, err := review.Execute(ctx, ReviewQuizInput{QuizID: rejected.ID}); err == nil {
		t.Fatal("rejection without a reason accepted")
	}
	q, err = review.Execute(ctx, ReviewQuizInput{QuizID: rejected.ID, Reason: "too easy"})
	if err != nil {
		t.Fatal(err)
	}
	if q.Status != domain.QuizStatusRejected || q.RejectionReason == nil || *q.RejectionReason != "too easy" {
		t.Errorf("rejected quiz = %+v", q)
	}

	// Already-reviewed quizzes cannot be reviewed again.
	if _, err := review.Execute(ctx, ReviewQuizInput{QuizID: approved.ID, Approve: true}); err == nil {
		t.Error("double review accepted")
	}
}

func TestEditRejectedReturnsToPending(t *testing.T) {
	quizzes := newFakeQuizzes()
	author := domain.NewUserID(uuid.New())
	ctx := context.Background()

	q := mustCreate(t, quizzes, author)
	if _, err := NewReviewQuiz(quizzes).Execute(ctx, ReviewQuizInput{QuizID: q.ID, Reason: "fix typos"}); err != nil {
		t.Fatal(err)
	}

	input := UpdateQuizInput{
		QuizID:          q.ID,
		AuthorID:        author,
		Title:           "Geography basics v2",
		DurationSeconds: 240,
		Questions:       validQuizInput(author).Questions,
	}
	updated, err := NewUpdateQuiz(quizzes).Execute(ctx, input)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != domain.QuizStatusPending {
		t.Errorf("Status after edit = %q, want PENDING", updated.Status)
	}
	if updated.RejectionReason != nil {
		t.Error("rejection reason survived the edit")
	}

	// A pending quiz cannot be edited again.
	if _, err := NewUpdateQuiz(quizzes).Execute(ctx, input); !errors.Is(err, domerrors.ErrQuizNotEditable) {
		t.Fatalf("editing pending quiz: err = %v", err)
	}

	// Only the author may edit.
	input.AuthorID = domain.NewUserID(uuid.New())
	quizzes.byID[q.ID].Status = domain.QuizStatusRejected
	if _, err := NewUpdateQuiz(quizzes).Execute(ctx, input); !errors.Is(err, domerrors.ErrNotQuizAuthor) {
		t.Fatalf("foreign edit: err = %v", err)
	}
}

func TestGetQuizForPlayHidesAnswers(t *testing.T) {
	quizzes := newFakeQuizzes()
	author := domain.NewUserID(uuid.New())
	ctx := context.Background()

	q := mustCreate(t, quizzes, author)
	uc := NewGetQuizForPlay(quizzes)

	if _, err := uc.Execute(ctx, q.ID); !errors.Is(err, domerrors.ErrQuizNotApproved) {
		t.Fatalf("pending quiz playable: err = %v", err)
	}

	if _, err := NewReviewQuiz(quizzes).Execute(ctx, ReviewQuizInput{QuizID: q.ID, Approve: true}); err != nil {
		t.Fatal(err)
	}
	playable, err := uc.Execute(ctx, q.ID)
	if err != nil {
		t.Fatal(err)
	}
	for _, question := range playable.Questions {
		for _, answer := range question.Answers {
			if answer.IsCorrect {
				t.Fatalf("correctness leaked for answer %q", answer.Text)
			}
		}
	}
	// The stored quiz keeps its flags.
	if quizzes.byID[q.ID].MaxScore() == 0 {
		t.Fatal("stored quiz mutated")
	}
	stored, _ := quizzes.GetByID(ctx, q.ID)
	if len(stored.Questions[0].CorrectAnswerIDs()) == 0 {
		t.Fatal("stored quiz lost its correct answers")
	}
}

func TestSubmitQuizEnqueues(t *testing.T) {
	quizzes := newFakeQuizzes()
	subs := &fakeSubmissions{byID: map[uuid.UUID]*domain.Submission{}}
	queue := &fakeEnqueuer{}
	author := domain.NewUserID(uuid.New())
	ctx := context.Background()

	q := mustCreate(t, quizzes, author)
	uc := NewSubmitQuiz(quizzes, subs, queue)

	player := domain.NewUserID(uuid.New())
	input := SubmitQuizInput{
		QuizID:    q.ID,
		UserID:    player,
		UserName:  "Ana Anic",
		UserEmail: "ana@example.com",
		Answers:   map[uuid.UUID][]uuid.UUID{},
	}
	if _, err := uc.Execute(ctx, input); !errors.Is(err, domerrors.ErrQuizNotApproved) {
		t.Fatalf("submission to pending quiz: err = %v", err)
	}

	if _, err := NewReviewQuiz(quizzes).Execute(ctx, ReviewQuizInput{QuizID: q.ID, Approve: true}); err != nil {
		t.Fatal(err)
	}
	res, err := uc.Execute(ctx, input)
	if err != nil {
		t.Fatal(err)
	}
	if subs.byID[res.SubmissionID] == nil {
		t.Fatal("submission not stored")
	}
	if len(queue.scored) != 1 || queue.scored[0] != res.SubmissionID {
		t.Fatalf("scoring task not enqueued: %v", queue.scored)
	}
}
