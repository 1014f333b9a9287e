package domain

import (
	"time"

	"github.com/google/uuid"
)

// Quiz review statuses. A quiz is created PENDING, reviewed by an admin,
// and only APPROVED quizzes are playable. A REJECTED quiz may be edited by
// its author, which returns it to PENDING.
const (
	QuizStatusPending  = "PENDING"
	QuizStatusApproved = "APPROVED"
	QuizStatusRejected = "REJECTED"
)

// ValidQuizStatuses lists the statuses the admin list filter accepts.
var ValidQuizStatuses = []string{QuizStatusPending, QuizStatusApproved, QuizStatusRejected}

// QuizID is a value object for quiz identity.
type QuizID struct{ uuid.UUID }

// NewQuizID creates a new QuizID from uuid.
func NewQuizID(id uuid.UUID) QuizID { return QuizID{UUID: id} }

// String returns the canonical string form.
func (q QuizID) String() string { return q.UUID.String() }

// Quiz is an authored quiz with its full question tree.
type Quiz struct {
	ID              QuizID
	Title           string
	AuthorID        UserID
	AuthorName      string
	DurationSeconds int
	Status          string
	RejectionReason *string
	Questions       []Question
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Question is a single weighted question. Order preserves authoring order.
type Question struct {
	ID      uuid.UUID
	Text    string
	Points  int
	Order   int
	Answers []Answer
}

// Answer is one answer option of a question.
type Answer struct {
	ID        uuid.UUID
	Text      string
	IsCorrect bool
	Order     int
}

// MaxScore is the sum of all question points.
func (q *Quiz) MaxScore() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// CorrectAnswerIDs returns the set of correct answer IDs for the question.
func (q *Question) CorrectAnswerIDs() map[uuid.UUID]struct{} {
	correct := make(map[uuid.UUID]struct{})
	for _, a := range q.Answers {
		if a.IsCorrect {
			correct[a.ID] = struct{}{}
		}
	}
	return correct
}
