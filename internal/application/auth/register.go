package auth

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	"github.com/obrentanasic/drs-projekat/internal/domain"
	domerrors "github.com/obrentanasic/drs-projekat/internal/domain/errors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// MinimumAge is the youngest a player may be at registration.
const MinimumAge = 13

type RegisterUserInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	DateOfBirth time.Time
	Gender      string
	Country     string
	Street      string
	Number      string
}

type RegisterUserResult struct {
	User *domain.User
}

type RegisterUser struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	now    func() time.Time
}

func NewRegisterUser(users ports.UserRepository, hasher ports.PasswordHasher) *RegisterUser {
	return &RegisterUser{users: users, hasher: hasher, now: time.Now}
}

func (uc *RegisterUser) Execute(ctx context.Context, input RegisterUserInput) (*RegisterUserResult, error) {
	email := SanitizeEmail(input.Email)
	if !emailRegex.MatchString(email) {
		return nil, &domerrors.ValidationError{Field: "email", Message: "invalid email address"}
	}
	if err := ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, &domerrors.ValidationError{Field: "name", Message: "first and last name are required"}
	}
	now := uc.now()
	probe := domain.User{DateOfBirth: input.DateOfBirth}
	if input.DateOfBirth.IsZero() || probe.Age(now) < MinimumAge {
		return nil, &domerrors.ValidationError{Field: "date_of_birth", Message: "players must be at least 13 years old"}
	}
	existing, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domerrors.ErrUserExists
	}
	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:           domain.NewUserID(uuid.New()),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        email,
		PasswordHash: hash,
		DateOfBirth:  input.DateOfBirth,
		Gender:       input.Gender,
		Country:      input.Country,
		Street:       input.Street,
		Number:       input.Number,
		Role:         domain.RolePlayer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return &RegisterUserResult{User: user}, nil
}

// SanitizeEmail lowercases and trims an email address. Oversized input is
// truncated to the RFC limit so it cannot bloat storage keys.
func SanitizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(email) > 254 {
		email = email[:254]
	}
	return email
}

// ValidatePassword enforces the password policy: at least 8 characters with
// an upper-case letter, a lower-case letter, and a digit.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return &domerrors.ValidationError{Field: "password", Message: "must be at least 8 characters"}
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return &domerrors.ValidationError{Field: "password", Message: "must contain upper-case, lower-case and a digit"}
	}
	return nil
}
