package quiz

import (
	"context"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	"github.com/obrentanasic/drs-projekat/internal/domain"
	domerrors "github.com/obrentanasic/drs-projekat/internal/domain/errors"
)

type LeaderboardResult struct {
	Results []*domain.Result
	Total   int64
}

// GetLeaderboard lists a quiz's results best-first.
type GetLeaderboard struct {
	quizzes ports.QuizRepository
	results ports.ResultRepository
}

func NewGetLeaderboard(quizzes ports.QuizRepository, results ports.ResultRepository) *GetLeaderboard {
	return &GetLeaderboard{quizzes: quizzes, results: results}
}

func (uc *GetLeaderboard) Execute(ctx context.Context, quizID domain.QuizID, limit, offset int) (*LeaderboardResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	quiz, err := uc.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, domerrors.ErrQuizNotFound
	}
	results, total, err := uc.results.ListByQuiz(ctx, quizID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &LeaderboardResult{Results: results, Total: total}, nil
}

// GetMyResults lists the caller's own results across all quizzes.
type GetMyResults struct {
	results ports.ResultRepository
}

func NewGetMyResults(results ports.ResultRepository) *GetMyResults {
	return &GetMyResults{results: results}
}

func (uc *GetMyResults) Execute(ctx context.Context, userID domain.UserID, limit, offset int) ([]*domain.Result, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.results.ListByUser(ctx, userID, limit, offset)
}

// GetQuizStatistics aggregates all results for one quiz.
type GetQuizStatistics struct {
	quizzes ports.QuizRepository
	results ports.ResultRepository
}

func NewGetQuizStatistics(quizzes ports.QuizRepository, results ports.ResultRepository) *GetQuizStatistics {
	return &GetQuizStatistics{quizzes: quizzes, results: results}
}

func (uc *GetQuizStatistics) Execute(ctx context.Context, quizID domain.QuizID) (*domain.QuizStatistics, error) {
	quiz, err := uc.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, domerrors.ErrQuizNotFound
	}
	stats, err := uc.results.QuizStatistics(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if stats != nil {
		stats.MaxPossibleScore = quiz.MaxScore()
	}
	return stats, nil
}
