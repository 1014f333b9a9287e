package user

import (
	"context"
	"strings"
	"time"

	"github.com/obrentanasic/drs-projekat/internal/application/auth"
	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	"github.com/obrentanasic/drs-projekat/internal/domain"
	domerrors "github.com/obrentanasic/drs-projekat/internal/domain/errors"
)

type GetProfile struct {
	users ports.UserRepository
}

func NewGetProfile(users ports.UserRepository) *GetProfile {
	return &GetProfile{users: users}
}

func (uc *GetProfile) Execute(ctx context.Context, userID domain.UserID) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrUserNotFound
	}
	return user, nil
}

type UpdateProfileInput struct {
	UserID    domain.UserID
	FirstName string
	LastName  string
	Gender    string
	Country   string
	Street    string
	Number    string
}

// UpdateProfile lets a user edit their own display and address fields.
// Email, role and password change through dedicated flows.
type UpdateProfile struct {
	users ports.UserRepository
	now   func() time.Time
}

func NewUpdateProfile(users ports.UserRepository) *UpdateProfile {
	return &UpdateProfile{users: users, now: time.Now}
}

func (uc *UpdateProfile) Execute(ctx context.Context, input UpdateProfileInput) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrUserNotFound
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, &domerrors.ValidationError{Field: "name", Message: "first and last name are required"}
	}
	user.FirstName = strings.TrimSpace(input.FirstName)
	user.LastName = strings.TrimSpace(input.LastName)
	user.Gender = input.Gender
	user.Country = input.Country
	user.Street = input.Street
	user.Number = input.Number
	user.UpdatedAt = uc.now()
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

type ChangePasswordInput struct {
	UserID      domain.UserID
	OldPassword string
	NewPassword string
}

type ChangePassword struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	now    func() time.Time
}

func NewChangePassword(users ports.UserRepository, hasher ports.PasswordHasher) *ChangePassword {
	return &ChangePassword{users: users, hasher: hasher, now: time.Now}
}

func (uc *ChangePassword) Execute(ctx context.Context, input ChangePasswordInput) error {
	user, err := uc.users.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return domerrors.ErrUserNotFound
	}
	if !uc.hasher.Verify(input.OldPassword, user.PasswordHash) {
		return domerrors.ErrInvalidCredentials
	}
	if err := auth.ValidatePassword(input.NewPassword); err != nil {
		return err
	}
	hash, err := uc.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.UpdatedAt = uc.now()
	return uc.users.Update(ctx, user)
}
