package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/obrentanasic/drs-projekat/internal/application/auth"
	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	appuser "github.com/obrentanasic/drs-projekat/internal/application/user"
	"github.com/obrentanasic/drs-projekat/internal/domain"
	domerrors "github.com/obrentanasic/drs-projekat/internal/domain/errors"
)

// AdminHandler handles /admin/users/*: account administration and the login
// audit trail. Every route is behind the ADMINISTRATOR role check.
type AdminHandler struct {
	listUsers  *appuser.ListUsers
	updateUser *appuser.UpdateUser
	deleteUser *appuser.DeleteUser
	blockUser  *appuser.BlockUser
	userStats  *appuser.GetUserStats
	attempts   ports.LoginAttemptRepository
	validate   *validator.Validate
	log        zerolog.Logger
}

func NewAdminHandler(listUsers *appuser.ListUsers, updateUser *appuser.UpdateUser, deleteUser *appuser.DeleteUser, blockUser *appuser.BlockUser, userStats *appuser.GetUserStats, attempts ports.LoginAttemptRepository, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		listUsers:  listUsers,
		updateUser: updateUser,
		deleteUser: deleteUser,
		blockUser:  blockUser,
		userStats:  userStats,
		attempts:   attempts,
		validate:   validator.New(),
		log:        log,
	}
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func targetID(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	id, err := domain.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid user id")
		return domain.UserID{}, false
	}
	return id, true
}

// List handles GET /admin/users?search=&role=&limit=&offset=.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.listUsers.Execute(r.Context(), appuser.ListUsersInput{
		Search: r.URL.Query().Get("search"),
		Role:   r.URL.Query().Get("role"),
		Limit:  queryInt(r, "limit", 20),
		Offset: queryInt(r, "offset", 0),
	})
	if err != nil {
		h.log.Error().Err(err).Msg("list users failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	items := make([]map[string]interface{}, 0, len(result.Users))
	for _, u := range result.Users {
		item := userJSON(u)
		if u.BlockedUntil != nil {
			item["blocked_until"] = u.BlockedUntil
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users": items,
		"total": result.Total,
	})
}

// Update handles PATCH /admin/users/:id. Body may carry a new role, a new
// email, or both.
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := targetID(w, r)
	if !ok {
		return
	}
	var body struct {
		Role  string `json:"role" validate:"omitempty,oneof=PLAYER MODERATOR ADMINISTRATOR"`
		Email string `json:"email" validate:"omitempty,email,max=254"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	}
	user, err := h.updateUser.Execute(r.Context(), appuser.UpdateUserInput{
		ActorID:  actorID,
		TargetID: id,
		Role:     body.Role,
		Email:    auth.SanitizeEmail(body.Email),
	})
	if err != nil {
		h.writeAdminError(w, r, "admin.update_user", id, err)
		return
	}
	AuditLog(h.log, r, "admin.update_user", user.Email, actorID.String(), true, "")
	writeJSON(w, http.StatusOK, userJSON(user))
}

// Delete handles DELETE /admin/users/:id.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := targetID(w, r)
	if !ok {
		return
	}
	if err := h.deleteUser.Execute(r.Context(), actorID, id); err != nil {
		h.writeAdminError(w, r, "admin.delete_user", id, err)
		return
	}
	AuditLog(h.log, r, "admin.delete_user", "", actorID.String(), true, "")
	w.WriteHeader(http.StatusNoContent)
}

// Block handles POST /admin/users/:id/block. Body: { "duration_hours": 24 };
// omit or zero for an indefinite block.
func (h *AdminHandler) Block(w http.ResponseWriter, r *http.Request) {
	h.setBlock(w, r, false)
}

// Unblock handles POST /admin/users/:id/unblock.
func (h *AdminHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	h.setBlock(w, r, true)
}

func (h *AdminHandler) setBlock(w http.ResponseWriter, r *http.Request, unblock bool) {
	actorID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := targetID(w, r)
	if !ok {
		return
	}
	var duration time.Duration
	if !unblock {
		var body struct {
			DurationHours int `json:"duration_hours"`
		}
		// Body is optional; no body means an indefinite block.
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.DurationHours < 0 {
			writeErr(w, http.StatusBadRequest, ErrCodeValidationFailed, "duration_hours must not be negative")
			return
		}
		duration = time.Duration(body.DurationHours) * time.Hour
	}
	user, err := h.blockUser.Execute(r.Context(), appuser.BlockUserInput{
		ActorID:  actorID,
		TargetID: id,
		Duration: duration,
		Unblock:  unblock,
	})
	if err != nil {
		event := "admin.block_user"
		if unblock {
			event = "admin.unblock_user"
		}
		h.writeAdminError(w, r, event, id, err)
		return
	}
	event := "admin.block_user"
	if unblock {
		event = "admin.unblock_user"
	}
	AuditLog(h.log, r, event, user.Email, actorID.String(), true, "")
	item := userJSON(user)
	if user.BlockedUntil != nil {
		item["blocked_until"] = user.BlockedUntil
	}
	writeJSON(w, http.StatusOK, item)
}

// Stats handles GET /admin/users/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.userStats.Execute(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("user stats failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":   stats.Total,
		"by_role": stats.ByRole,
		"blocked": stats.Blocked,
	})
}

// LoginHistory handles GET /admin/login-attempts?email=&limit=. Attempts are
// returned newest first.
func (h *AdminHandler) LoginHistory(w http.ResponseWriter, r *http.Request) {
	email := auth.SanitizeEmail(r.URL.Query().Get("email"))
	if email == "" {
		writeErr(w, http.StatusBadRequest, "", "email query parameter is required")
		return
	}
	attempts, err := h.attempts.ListByEmail(r.Context(), email, queryInt(r, "limit", 50))
	if err != nil {
		h.log.Error().Err(err).Msg("login history failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	items := make([]map[string]interface{}, 0, len(attempts))
	for _, a := range attempts {
		items = append(items, map[string]interface{}{
			"email":      a.Email,
			"ip":         a.IP,
			"outcome":    a.Outcome,
			"created_at": a.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"attempts": items})
}

func (h *AdminHandler) writeAdminError(w http.ResponseWriter, r *http.Request, event string, target domain.UserID, err error) {
	AuditLog(h.log, r, event, "", target.String(), false, err.Error())
	var vErr *domerrors.ValidationError
	switch {
	case errors.Is(err, domerrors.ErrUserNotFound):
		writeErr(w, http.StatusNotFound, "", err.Error())
	case errors.Is(err, domerrors.ErrSelfModification):
		writeErr(w, http.StatusForbidden, "", err.Error())
	case errors.Is(err, domerrors.ErrUserExists):
		writeErr(w, http.StatusConflict, "", err.Error())
	case errors.As(err, &vErr):
		writeErr(w, http.StatusBadRequest, ErrCodeValidationFailed, vErr.Error())
	default:
		h.log.Error().Err(err).Str("event", event).Msg("admin operation failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
	}
}
