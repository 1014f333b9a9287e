package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	appuser "github.com/obrentanasic/drs-projekat/internal/application/user"
	"github.com/obrentanasic/drs-projekat/internal/domain"
	domerrors "github.com/obrentanasic/drs-projekat/internal/domain/errors"
	"github.com/obrentanasic/drs-projekat/internal/infrastructure/http/middleware"
)

// UsersHandler handles the logged-in user's own account: /users/me.
type UsersHandler struct {
	getProfile     *appuser.GetProfile
	updateProfile  *appuser.UpdateProfile
	changePassword *appuser.ChangePassword
	validate       *validator.Validate
	log            zerolog.Logger
}

func NewUsersHandler(getProfile *appuser.GetProfile, updateProfile *appuser.UpdateProfile, changePassword *appuser.ChangePassword, log zerolog.Logger) *UsersHandler {
	return &UsersHandler{
		getProfile:     getProfile,
		updateProfile:  updateProfile,
		changePassword: changePassword,
		validate:       validator.New(),
		log:            log,
	}
}

// callerID extracts the authenticated user's ID from the request context.
func callerID(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return domain.UserID{}, false
	}
	id, err := domain.ParseUserID(claims.UserID)
	if err != nil {
		writeErr(w, http.StatusUnauthorized, "", "invalid user id in token")
		return domain.UserID{}, false
	}
	return id, true
}

func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	user, err := h.getProfile.Execute(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domerrors.ErrUserNotFound) {
			writeErr(w, http.StatusNotFound, "", err.Error())
			return
		}
		h.log.Error().Err(err).Msg("get profile failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, userJSON(user))
}

func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var body struct {
		FirstName string `json:"first_name" validate:"required,max=100"`
		LastName  string `json:"last_name" validate:"required,max=100"`
		Gender    string `json:"gender" validate:"max=20"`
		Country   string `json:"country" validate:"max=100"`
		Street    string `json:"street" validate:"max=200"`
		Number    string `json:"number" validate:"max=20"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	}
	user, err := h.updateProfile.Execute(r.Context(), appuser.UpdateProfileInput{
		UserID:    userID,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Gender:    body.Gender,
		Country:   body.Country,
		Street:    body.Street,
		Number:    body.Number,
	})
	if err != nil {
		var vErr *domerrors.ValidationError
		switch {
		case errors.Is(err, domerrors.ErrUserNotFound):
			writeErr(w, http.StatusNotFound, "", err.Error())
		case errors.As(err, &vErr):
			writeErr(w, http.StatusBadRequest, ErrCodeValidationFailed, vErr.Error())
		default:
			h.log.Error().Err(err).Msg("update profile failed")
			writeErr(w, http.StatusInternalServerError, "", "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, userJSON(user))
}

func (h *UsersHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var body struct {
		OldPassword string `json:"old_password" validate:"required,max=128"`
		NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	}
	err := h.changePassword.Execute(r.Context(), appuser.ChangePasswordInput{
		UserID:      userID,
		OldPassword: SanitizePassword(body.OldPassword),
		NewPassword: SanitizePassword(body.NewPassword),
	})
	if err != nil {
		var vErr *domerrors.ValidationError
		switch {
		case errors.Is(err, domerrors.ErrInvalidCredentials):
			writeErr(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "old password is incorrect")
		case errors.As(err, &vErr):
			writeErr(w, http.StatusBadRequest, ErrCodeValidationFailed, vErr.Error())
		case errors.Is(err, domerrors.ErrUserNotFound):
			writeErr(w, http.StatusNotFound, "", err.Error())
		default:
			h.log.Error().Err(err).Msg("change password failed")
			writeErr(w, http.StatusInternalServerError, "", "internal error")
		}
		return
	}
	AuditLog(h.log, r, "user.change_password", "", userID.String(), true, "")
	w.WriteHeader(http.StatusNoContent)
}
