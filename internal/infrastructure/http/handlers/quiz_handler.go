package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	appquiz "github.com/obrentanasic/drs-projekat/internal/application/quiz"
	"github.com/obrentanasic/drs-projekat/internal/domain"
	domerrors "github.com/obrentanasic/drs-projekat/internal/domain/errors"
	"github.com/obrentanasic/drs-projekat/internal/infrastructure/http/middleware"
)

// QuizHandler handles /quizzes/*: authoring, review, play and results.
type QuizHandler struct {
	create      *appquiz.CreateQuiz
	update      *appquiz.UpdateQuiz
	list        *appquiz.ListQuizzes
	getForPlay  *appquiz.GetQuizForPlay
	review      *appquiz.ReviewQuiz
	deleteQuiz  *appquiz.DeleteQuiz
	submit      *appquiz.SubmitQuiz
	leaderboard *appquiz.GetLeaderboard
	myResults   *appquiz.GetMyResults
	statistics  *appquiz.GetQuizStatistics
	users       ports.UserRepository
	validate    *validator.Validate
	log         zerolog.Logger
}

func NewQuizHandler(
	create *appquiz.CreateQuiz,
	update *appquiz.UpdateQuiz,
	list *appquiz.ListQuizzes,
	getForPlay *appquiz.GetQuizForPlay,
	review *appquiz.ReviewQuiz,
	deleteQuiz *appquiz.DeleteQuiz,
	submit *appquiz.SubmitQuiz,
	leaderboard *appquiz.GetLeaderboard,
	myResults *appquiz.GetMyResults,
	statistics *appquiz.GetQuizStatistics,
	users ports.UserRepository,
	log zerolog.Logger,
) *QuizHandler {
	return &QuizHandler{
		create:      create,
		update:      update,
		list:        list,
		getForPlay:  getForPlay,
		review:      review,
		deleteQuiz:  deleteQuiz,
		submit:      submit,
		leaderboard: leaderboard,
		myResults:   myResults,
		statistics:  statistics,
		users:       users,
		validate:    validator.New(),
		log:         log,
	}
}

type questionBody struct {
	Text    string       `json:"text" validate:"required,max=1000"`
	Points  int          `json:"points" validate:"required,min=1"`
	Answers []answerBody `json:"answers" validate:"required,min=2,dive"`
}

type answerBody struct {
	Text      string `json:"text" validate:"required,max=500"`
	IsCorrect bool   `json:"is_correct"`
}

type quizBody struct {
	Title           string         `json:"title" validate:"required,max=200"`
	DurationSeconds int            `json:"duration_seconds" validate:"required,min=1"`
	Questions       []questionBody `json:"questions" validate:"required,min=1,dive"`
}

func toQuestionInputs(body []questionBody) []appquiz.QuestionInput {
	questions := make([]appquiz.QuestionInput, 0, len(body))
	for _, q := range body {
		answers := make([]appquiz.AnswerInput, 0, len(q.Answers))
		for _, a := range q.Answers {
			answers = append(answers, appquiz.AnswerInput{Text: a.Text, IsCorrect: a.IsCorrect})
		}
		questions = append(questions, appquiz.QuestionInput{Text: q.Text, Points: q.Points, Answers: answers})
	}
	return questions
}

func quizIDParam(w http.ResponseWriter, r *http.Request) (domain.QuizID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid quiz id")
		return domain.QuizID{}, false
	}
	return domain.NewQuizID(id), true
}

// Create handles POST /quizzes. Moderator only; the new quiz starts PENDING.
func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var body quizBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	}
	author, err := h.users.GetByID(r.Context(), userID)
	if err != nil || author == nil {
		writeErr(w, http.StatusUnauthorized, "", "unknown account")
		return
	}
	quiz, err := h.create.Execute(r.Context(), appquiz.CreateQuizInput{
		AuthorID:        userID,
		AuthorName:      author.FullName(),
		Title:           body.Title,
		DurationSeconds: body.DurationSeconds,
		Questions:       toQuestionInputs(body.Questions),
	})
	if err != nil {
		h.writeQuizError(w, err, "create quiz failed")
		return
	}
	writeJSON(w, http.StatusCreated, quizJSON(quiz, true))
}

// Update handles PUT /quizzes/:id. Only the author may edit, and only while
// the quiz is REJECTED; the edit sends it back to PENDING.
func (h *QuizHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := quizIDParam(w, r)
	if !ok {
		return
	}
	var body quizBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	}
	quiz, err := h.update.Execute(r.Context(), appquiz.UpdateQuizInput{
		QuizID:          id,
		AuthorID:        userID,
		Title:           body.Title,
		DurationSeconds: body.DurationSeconds,
		Questions:       toQuestionInputs(body.Questions),
	})
	if err != nil {
		h.writeQuizError(w, err, "update quiz failed")
		return
	}
	writeJSON(w, http.StatusOK, quizJSON(quiz, true))
}

// List handles GET /quizzes?status=&mine=&limit=&offset=. Players only see
// APPROVED quizzes; moderators and admins may filter by status, and
// mine=true narrows to the caller's own quizzes.
func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	status := r.URL.Query().Get("status")
	if claims.Role == domain.RolePlayer {
		status = domain.QuizStatusApproved
	}
	var authorID *domain.UserID
	if r.URL.Query().Get("mine") == "true" {
		id, err := domain.ParseUserID(claims.UserID)
		if err != nil {
			writeErr(w, http.StatusUnauthorized, "", "invalid user id in token")
			return
		}
		authorID = &id
	}
	result, err := h.list.Execute(r.Context(), appquiz.ListQuizzesInput{
		Status:   status,
		AuthorID: authorID,
		Limit:    queryInt(r, "limit", 20),
		Offset:   queryInt(r, "offset", 0),
	})
	if err != nil {
		h.log.Error().Err(err).Msg("list quizzes failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	showReason := claims.Role != domain.RolePlayer
	items := make([]map[string]interface{}, 0, len(result.Quizzes))
	for _, q := range result.Quizzes {
		items = append(items, quizSummaryJSON(q, showReason))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"quizzes": items,
		"total":   result.Total,
	})
}

// Get handles GET /quizzes/:id. Returns the play view: only approved quizzes
// and with the correctness flags stripped.
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := quizIDParam(w, r)
	if !ok {
		return
	}
	quiz, err := h.getForPlay.Execute(r.Context(), id)
	if err != nil {
		h.writeQuizError(w, err, "get quiz failed")
		return
	}
	writeJSON(w, http.StatusOK, quizJSON(quiz, false))
}

// Review handles POST /quizzes/:id/review. Admin only.
// Body: { "approve": bool, "reason": "..." }.
func (h *QuizHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, ok := quizIDParam(w, r)
	if !ok {
		return
	}
	var body struct {
		Approve bool   `json:"approve"`
		Reason  string `json:"reason" validate:"max=1000"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	}
	quiz, err := h.review.Execute(r.Context(), appquiz.ReviewQuizInput{
		QuizID:  id,
		Approve: body.Approve,
		Reason:  body.Reason,
	})
	if err != nil {
		h.writeQuizError(w, err, "review quiz failed")
		return
	}
	writeJSON(w, http.StatusOK, quizJSON(quiz, true))
}

// Delete handles DELETE /quizzes/:id.
func (h *QuizHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := quizIDParam(w, r)
	if !ok {
		return
	}
	isAdmin := claims != nil && claims.Role == domain.RoleAdministrator
	if err := h.deleteQuiz.Execute(r.Context(), id, userID, isAdmin); err != nil {
		h.writeQuizError(w, err, "delete quiz failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Submit handles POST /quizzes/:id/submit. The answer sheet is stored and
// queued for scoring; the response is 202 with the submission ID.
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := quizIDParam(w, r)
	if !ok {
		return
	}
	var body struct {
		// Answers maps question ID to selected answer IDs.
		Answers map[string][]string `json:"answers" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	}
	answers := make(map[uuid.UUID][]uuid.UUID, len(body.Answers))
	for qStr, aStrs := range body.Answers {
		qID, err := uuid.Parse(qStr)
		if err != nil {
			writeErr(w, http.StatusBadRequest, ErrCodeValidationFailed, "invalid question id in answers")
			return
		}
		selected := make([]uuid.UUID, 0, len(aStrs))
		for _, aStr := range aStrs {
			aID, err := uuid.Parse(aStr)
			if err != nil {
				writeErr(w, http.StatusBadRequest, ErrCodeValidationFailed, "invalid answer id in answers")
				return
			}
			selected = append(selected, aID)
		}
		answers[qID] = selected
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil || user == nil {
		writeErr(w, http.StatusUnauthorized, "", "unknown account")
		return
	}
	result, err := h.submit.Execute(r.Context(), appquiz.SubmitQuizInput{
		QuizID:    id,
		UserID:    userID,
		UserName:  user.FullName(),
		UserEmail: user.Email,
		Answers:   answers,
	})
	if err != nil {
		h.writeQuizError(w, err, "submit quiz failed")
		return
	}
	middleware.RecordSubmissionAccepted()
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"submission_id": result.SubmissionID.String(),
		"status":        "queued",
	})
}

// Leaderboard handles GET /quizzes/:id/leaderboard.
func (h *QuizHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	id, ok := quizIDParam(w, r)
	if !ok {
		return
	}
	result, err := h.leaderboard.Execute(r.Context(), id, queryInt(r, "limit", 20), queryInt(r, "offset", 0))
	if err != nil {
		h.writeQuizError(w, err, "leaderboard failed")
		return
	}
	items := make([]map[string]interface{}, 0, len(result.Results))
	for i, res := range result.Results {
		item := resultJSON(res)
		item["rank"] = queryInt(r, "offset", 0) + i + 1
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": items,
		"total":   result.Total,
	})
}

// MyResults handles GET /quizzes/my-results.
func (h *QuizHandler) MyResults(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	results, total, err := h.myResults.Execute(r.Context(), userID, queryInt(r, "limit", 20), queryInt(r, "offset", 0))
	if err != nil {
		h.log.Error().Err(err).Msg("my results failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	items := make([]map[string]interface{}, 0, len(results))
	for _, res := range results {
		items = append(items, resultJSON(res))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": items,
		"total":   total,
	})
}

// Statistics handles GET /quizzes/:id/statistics.
func (h *QuizHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	id, ok := quizIDParam(w, r)
	if !ok {
		return
	}
	stats, err := h.statistics.Execute(r.Context(), id)
	if err != nil {
		h.writeQuizError(w, err, "quiz statistics failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_attempts":     stats.TotalAttempts,
		"average_score":      stats.AverageScore,
		"average_percentage": stats.AveragePercentage,
		"max_score":          stats.MaxScore,
		"min_score":          stats.MinScore,
		"max_possible_score": stats.MaxPossibleScore,
	})
}

func (h *QuizHandler) writeQuizError(w http.ResponseWriter, err error, logMsg string) {
	var vErr *domerrors.ValidationError
	switch {
	case errors.Is(err, domerrors.ErrQuizNotFound):
		writeErr(w, http.StatusNotFound, "", err.Error())
	case errors.Is(err, domerrors.ErrQuizNotApproved):
		writeErr(w, http.StatusNotFound, "", domerrors.ErrQuizNotFound.Error())
	case errors.Is(err, domerrors.ErrNotQuizAuthor):
		writeErr(w, http.StatusForbidden, "", err.Error())
	case errors.Is(err, domerrors.ErrQuizNotEditable):
		writeErr(w, http.StatusConflict, "", err.Error())
	case errors.As(err, &vErr):
		writeErr(w, http.StatusBadRequest, ErrCodeValidationFailed, vErr.Error())
	default:
		h.log.Error().Err(err).Msg(logMsg)
		writeErr(w, http.StatusInternalServerError, "", "internal error")
	}
}

// quizJSON renders a full quiz. includeCorrect controls whether answer
// correctness flags are present; the play view never includes them.
func quizJSON(q *domain.Quiz, includeCorrect bool) map[string]interface{} {
	questions := make([]map[string]interface{}, 0, len(q.Questions))
	for _, question := range q.Questions {
		answers := make([]map[string]interface{}, 0, len(question.Answers))
		for _, a := range question.Answers {
			item := map[string]interface{}{
				"id":   a.ID.String(),
				"text": a.Text,
			}
			if includeCorrect {
				item["is_correct"] = a.IsCorrect
			}
			answers = append(answers, item)
		}
		questions = append(questions, map[string]interface{}{
			"id":      question.ID.String(),
			"text":    question.Text,
			"points":  question.Points,
			"answers": answers,
		})
	}
	item := quizSummaryJSON(q, includeCorrect)
	item["questions"] = questions
	return item
}

func quizSummaryJSON(q *domain.Quiz, showReason bool) map[string]interface{} {
	item := map[string]interface{}{
		"id":               q.ID.String(),
		"title":            q.Title,
		"author_id":        q.AuthorID.String(),
		"author_name":      q.AuthorName,
		"duration_seconds": q.DurationSeconds,
		"status":           q.Status,
		"created_at":       q.CreatedAt,
		"updated_at":       q.UpdatedAt,
	}
	if showReason && q.RejectionReason != nil {
		item["rejection_reason"] = *q.RejectionReason
	}
	return item
}

func resultJSON(res *domain.Result) map[string]interface{} {
	return map[string]interface{}{
		"id":         res.ID.String(),
		"quiz_id":    res.QuizID.String(),
		"user_id":    res.UserID.String(),
		"user_name":  res.UserName,
		"score":      res.Score,
		"max_score":  res.MaxScore,
		"percentage": res.Percentage,
		"created_at": res.CreatedAt,
	}
}
