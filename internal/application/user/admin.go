package user

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/obrentanasic/drs-projekat/internal/application/auth"
	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	"github.com/obrentanasic/drs-projekat/internal/domain"
	domerrors "github.com/obrentanasic/drs-projekat/internal/domain/errors"
)

type ListUsersInput struct {
	Search string
	Role   string
	Limit  int
	Offset int
}

type ListUsersResult struct {
	Users []*domain.User
	Total int64
}

type ListUsers struct {
	users ports.UserRepository
}

func NewListUsers(users ports.UserRepository) *ListUsers {
	return &ListUsers{users: users}
}

func (uc *ListUsers) Execute(ctx context.Context, input ListUsersInput) (*ListUsersResult, error) {
	if input.Limit <= 0 || input.Limit > 100 {
		input.Limit = 20
	}
	if input.Offset < 0 {
		input.Offset = 0
	}
	users, total, err := uc.users.List(ctx, ports.UserFilter{
		Search: input.Search,
		Role:   input.Role,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &ListUsersResult{Users: users, Total: total}, nil
}

type UpdateUserInput struct {
	// ActorID is the administrator performing the change.
	ActorID  domain.UserID
	TargetID domain.UserID
	// Role and Email are applied when non-empty.
	Role  string
	Email string
}

// UpdateUser is the admin-side account edit: role changes and email
// corrections. A role change notifies the user by email through the queue.
type UpdateUser struct {
	users ports.UserRepository
	queue ports.TaskEnqueuer
	log   zerolog.Logger
	now   func() time.Time
}

func NewUpdateUser(users ports.UserRepository, queue ports.TaskEnqueuer, log zerolog.Logger) *UpdateUser {
	return &UpdateUser{users: users, queue: queue, log: log, now: time.Now}
}

func (uc *UpdateUser) Execute(ctx context.Context, input UpdateUserInput) (*domain.User, error) {
	if input.ActorID == input.TargetID {
		return nil, domerrors.ErrSelfModification
	}
	user, err := uc.users.GetByID(ctx, input.TargetID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrUserNotFound
	}

	roleChanged := false
	if input.Role != "" && input.Role != user.Role {
		if !domain.IsValidRole(input.Role) {
			return nil, &domerrors.ValidationError{Field: "role", Message: "unknown role"}
		}
		user.Role = input.Role
		roleChanged = true
	}
	if input.Email != "" {
		email := auth.SanitizeEmail(input.Email)
		if email != user.Email {
			existing, err := uc.users.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, domerrors.ErrUserExists
			}
			user.Email = email
		}
	}
	user.UpdatedAt = uc.now()
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if roleChanged {
		if err := uc.queue.EnqueueRoleChangedEmail(ctx, user.Email, user.FullName(), user.Role); err != nil {
			uc.log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to enqueue role change email")
		}
	}
	return user, nil
}

type DeleteUser struct {
	users ports.UserRepository
}

func NewDeleteUser(users ports.UserRepository) *DeleteUser {
	return &DeleteUser{users: users}
}

func (uc *DeleteUser) Execute(ctx context.Context, actorID, targetID domain.UserID) error {
	if actorID == targetID {
		return domerrors.ErrSelfModification
	}
	user, err := uc.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if user == nil {
		return domerrors.ErrUserNotFound
	}
	return uc.users.Delete(ctx, targetID)
}

type BlockUserInput struct {
	ActorID  domain.UserID
	TargetID domain.UserID
	// Duration of the block; zero blocks indefinitely.
	Duration time.Duration
	// Unblock clears an existing block instead of setting one.
	Unblock bool
}

// BlockUser sets or clears an administrative block. Blocked users cannot log
// in until the block is lifted or expires.
type BlockUser struct {
	users ports.UserRepository
	now   func() time.Time
}

func NewBlockUser(users ports.UserRepository) *BlockUser {
	return &BlockUser{users: users, now: time.Now}
}

func (uc *BlockUser) Execute(ctx context.Context, input BlockUserInput) (*domain.User, error) {
	if input.ActorID == input.TargetID {
		return nil, domerrors.ErrSelfModification
	}
	user, err := uc.users.GetByID(ctx, input.TargetID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrUserNotFound
	}
	now := uc.now()
	if input.Unblock {
		user.BlockedUntil = nil
	} else {
		until := now.AddDate(100, 0, 0)
		if input.Duration > 0 {
			until = now.Add(input.Duration)
		}
		user.BlockedUntil = &until
	}
	user.UpdatedAt = now
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

type GetUserStats struct {
	users ports.UserRepository
}

func NewGetUserStats(users ports.UserRepository) *GetUserStats {
	return &GetUserStats{users: users}
}

func (uc *GetUserStats) Execute(ctx context.Context) (*ports.UserStats, error) {
	return uc.users.Stats(ctx)
}
