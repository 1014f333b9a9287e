package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for handlers to map to HTTP status.
var (
	ErrUserExists         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuizNotEditable    = errors.New("only rejected quizzes can be edited")
	ErrQuizNotApproved    = errors.New("quiz is not available for playing")
	ErrNotQuizAuthor      = errors.New("only the quiz author can modify this quiz")
	ErrAccountDisabled    = errors.New("account is blocked by an administrator")
	ErrSelfModification   = errors.New("administrators cannot modify their own account")
)

// ValidationError reports a request field that failed a domain rule, such as
// the minimum age or the password policy.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AccountLockedError is returned when the login throttle has locked out one of
// the attempt identifiers. It carries the data the HTTP layer needs for the
// 429 response.
type AccountLockedError struct {
	Identifier       string
	RemainingSeconds int
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("too many failed login attempts; retry in %dm %ds",
		e.RemainingSeconds/60, e.RemainingSeconds%60)
}

// CredentialsError is an invalid-credentials failure that also reports how
// many attempts remain before lockout. It matches ErrInvalidCredentials
// under errors.Is.
type CredentialsError struct {
	AttemptsLeft int
}

func (e *CredentialsError) Error() string { return ErrInvalidCredentials.Error() }

func (e *CredentialsError) Is(target error) bool { return target == ErrInvalidCredentials }
