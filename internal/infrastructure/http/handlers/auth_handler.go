package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/obrentanasic/drs-projekat/internal/application/auth"
	"github.com/obrentanasic/drs-projekat/internal/domain"
	domerrors "github.com/obrentanasic/drs-projekat/internal/domain/errors"
	"github.com/obrentanasic/drs-projekat/internal/infrastructure/http/middleware"
)

type AuthHandler struct {
	register *auth.RegisterUser
	login    *auth.Login
	refresh  *auth.Refresh
	logout   *auth.Logout
	validate *validator.Validate
	log      zerolog.Logger
}

func NewAuthHandler(register *auth.RegisterUser, login *auth.Login, refresh *auth.Refresh, logout *auth.Logout, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		register: register,
		login:    login,
		refresh:  refresh,
		logout:   logout,
		validate: validator.New(),
		log:      log,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FirstName   string `json:"first_name" validate:"required,max=100"`
		LastName    string `json:"last_name" validate:"required,max=100"`
		Email       string `json:"email" validate:"required,email,max=254"`
		Password    string `json:"password" validate:"required,min=8,max=128"`
		DateOfBirth string `json:"date_of_birth" validate:"required"`
		Gender      string `json:"gender" validate:"max=20"`
		Country     string `json:"country" validate:"max=100"`
		Street      string `json:"street" validate:"max=200"`
		Number      string `json:"number" validate:"max=20"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	}
	dob, err := time.Parse("2006-01-02", body.DateOfBirth)
	if err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidationFailed, "date_of_birth must be YYYY-MM-DD")
		return
	}
	result, err := h.register.Execute(r.Context(), auth.RegisterUserInput{
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		Email:       body.Email,
		Password:    SanitizePassword(body.Password),
		DateOfBirth: dob,
		Gender:      body.Gender,
		Country:     body.Country,
		Street:      body.Street,
		Number:      body.Number,
	})
	if err != nil {
		AuditLog(h.log, r, "user.register", auth.SanitizeEmail(body.Email), "", false, err.Error())
		var vErr *domerrors.ValidationError
		switch {
		case errors.Is(err, domerrors.ErrUserExists):
			writeErr(w, http.StatusConflict, "", err.Error())
		case errors.As(err, &vErr):
			writeErr(w, http.StatusBadRequest, ErrCodeValidationFailed, vErr.Error())
		default:
			h.log.Error().Err(err).Msg("register failed")
			writeErr(w, http.StatusInternalServerError, "", "internal error")
		}
		return
	}
	AuditLog(h.log, r, "user.register", result.User.Email, result.User.ID.String(), true, "")
	writeJSON(w, http.StatusCreated, userJSON(result.User))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email" validate:"required,email,max=254"`
		Password string `json:"password" validate:"required,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	}
	email := auth.SanitizeEmail(body.Email)
	password := SanitizePassword(body.Password)
	if email == "" || password == "" {
		writeErr(w, http.StatusBadRequest, "", "invalid email or password length")
		return
	}
	result, err := h.login.Execute(r.Context(), auth.LoginInput{
		Email:    email,
		Password: password,
		IP:       getClientIP(r),
	})
	if err != nil {
		h.writeLoginError(w, r, email, err)
		return
	}
	AuditLog(h.log, r, "user.login", email, result.User.ID.String(), true, "")
	middleware.RecordLoginAttempt("success")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"expires_in":    result.ExpiresIn,
		"user":          userJSON(result.User),
	})
}

func (h *AuthHandler) writeLoginError(w http.ResponseWriter, r *http.Request, email string, err error) {
	AuditLog(h.log, r, "user.login", email, "", false, err.Error())

	var locked *domerrors.AccountLockedError
	if errors.As(err, &locked) {
		middleware.RecordLoginAttempt("blocked")
		w.Header().Set("Retry-After", fmt.Sprintf("%d", locked.RemainingSeconds))
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error":               "too many failed login attempts",
			"code":                ErrCodeAccountLocked,
			"retry_after_seconds": locked.RemainingSeconds,
			"retry_after":         formatRetry(locked.RemainingSeconds),
		})
		return
	}
	var credErr *domerrors.CredentialsError
	if errors.As(err, &credErr) {
		middleware.RecordLoginAttempt("failure")
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"error":         domerrors.ErrInvalidCredentials.Error(),
			"code":          ErrCodeInvalidCredentials,
			"attempts_left": credErr.AttemptsLeft,
		})
		return
	}
	switch {
	case errors.Is(err, domerrors.ErrAccountDisabled):
		middleware.RecordLoginAttempt("failure")
		writeErr(w, http.StatusForbidden, ErrCodeAccountDisabled, err.Error())
	case errors.Is(err, domerrors.ErrInvalidCredentials):
		middleware.RecordLoginAttempt("failure")
		writeErr(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, err.Error())
	default:
		h.log.Error().Err(err).Msg("login failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
	}
}

// formatRetry renders remaining lockout time as "4m 37s" for the client's
// countdown message.
func formatRetry(seconds int) string {
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
		return
	}
	result, err := h.refresh.Execute(r.Context(), auth.RefreshInput{
		RefreshToken: TruncateRefreshToken(body.RefreshToken),
	})
	if err != nil {
		switch {
		case errors.Is(err, domerrors.ErrInvalidToken):
			writeErr(w, http.StatusUnauthorized, ErrCodeInvalidToken, err.Error())
		case errors.Is(err, domerrors.ErrAccountDisabled):
			writeErr(w, http.StatusForbidden, ErrCodeAccountDisabled, err.Error())
		default:
			h.log.Error().Err(err).Msg("refresh failed")
			writeErr(w, http.StatusInternalServerError, "", "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"expires_in":    result.ExpiresIn,
	})
}

// Logout requires the auth middleware; it revokes the presenting access token
// and, when supplied, the refresh token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return
	}
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	// Body is optional for logout.
	_ = json.NewDecoder(r.Body).Decode(&body)

	err := h.logout.Execute(r.Context(), auth.LogoutInput{
		AccessClaims: claims,
		RefreshToken: TruncateRefreshToken(body.RefreshToken),
	})
	if err != nil {
		h.log.Error().Err(err).Msg("logout failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	AuditLog(h.log, r, "user.logout", "", claims.UserID, true, "")
	w.WriteHeader(http.StatusNoContent)
}

func userJSON(u *domain.User) map[string]interface{} {
	return map[string]interface{}{
		"id":            u.ID.String(),
		"first_name":    u.FirstName,
		"last_name":     u.LastName,
		"email":         u.Email,
		"date_of_birth": u.DateOfBirth.Format("2006-01-02"),
		"gender":        u.Gender,
		"country":       u.Country,
		"street":        u.Street,
		"number":        u.Number,
		"role":          u.Role,
		"created_at":    u.CreatedAt,
		"updated_at":    u.UpdatedAt,
	}
}
