package domain

import (
	"time"

	"github.com/google/uuid"
)

// Submission is a player's answer sheet, accepted immediately and scored
// asynchronously by the queue worker. Answers maps question ID to the set
// of selected answer IDs.
type Submission struct {
	ID        uuid.UUID
	QuizID    QuizID
	UserID    UserID
	UserName  string
	UserEmail string
	Answers   map[uuid.UUID][]uuid.UUID
	CreatedAt time.Time
}

// Result is a scored submission.
type Result struct {
	ID         uuid.UUID
	QuizID     QuizID
	UserID     UserID
	UserName   string
	Score      int
	MaxScore   int
	Percentage float64
	CreatedAt  time.Time
}

// ScoreSubmission grades a submission against the quiz: a question earns its
// points iff the selected answer set equals the correct answer set exactly.
func ScoreSubmission(quiz *Quiz, sub *Submission) (score int) {
	for _, question := range quiz.Questions {
		correct := question.CorrectAnswerIDs()
		selected := sub.Answers[question.ID]
		if len(selected) != len(correct) {
			continue
		}
		match := true
		for _, id := range selected {
			if _, ok := correct[id]; !ok {
				match = false
				break
			}
		}
		if match {
			score += question.Points
		}
	}
	return score
}

// QuizStatistics aggregates all results for a quiz.
type QuizStatistics struct {
	TotalAttempts     int
	AverageScore      float64
	AveragePercentage float64
	MaxScore          int
	MinScore          int
	MaxPossibleScore  int
}
