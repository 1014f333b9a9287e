package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	"github.com/obrentanasic/drs-projekat/internal/domain"
	domerrors "github.com/obrentanasic/drs-projekat/internal/domain/errors"
)

type fakeUsers struct {
	byID map[domain.UserID]*domain.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[domain.UserID]*domain.User{}}
}

func (f *fakeUsers) add(email, role string) *domain.User {
	u := &domain.User{
		ID:        domain.NewUserID(uuid.New()),
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Role:      role,
	}
	f.byID[u.ID] = u
	return u
}

func (f *fakeUsers) Create(ctx context.Context, u *domain.User) error {
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return f.byID[id], nil
}

func (f *fakeUsers) List(ctx context.Context, filter ports.UserFilter) ([]*domain.User, int64, error) {
	var out []*domain.User
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUsers) Update(ctx context.Context, u *domain.User) error {
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) Delete(ctx context.Context, id domain.UserID) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeUsers) Stats(ctx context.Context) (*ports.UserStats, error) {
	stats := &ports.UserStats{ByRole: map[string]int64{}}
	for _, u := range f.byID {
		stats.Total++
		stats.ByRole[u.Role]++
	}
	return stats, nil
}

type fakeQueue struct {
	roleEmails []string
}

func (f *fakeQueue) EnqueueScoreSubmission(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeQueue) EnqueueRoleChangedEmail(ctx context.Context, email, name, role string) error {
	f.roleEmails = append(f.roleEmails, email)
	return nil
}

func TestUpdateUserRoleChange(t *testing.T) {
	users := newFakeUsers()
	admin := users.add("admin@x.com", domain.RoleAdministrator)
	target := users.add("player@x.com", domain.RolePlayer)
	queue := &fakeQueue{}
	uc := NewUpdateUser(users, queue, zerolog.Nop())

	updated, err := uc.Execute(context.Background(), UpdateUserInput{
		ActorID:  admin.ID,
		TargetID: target.ID,
		Role:     domain.RoleModerator,
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Role != domain.RoleModerator {
		t.Errorf("Role = %q", updated.Role)
	}
	if len(queue.roleEmails) != 1 || queue.roleEmails[0] != "player@x.com" {
		t.Errorf("role change email not enqueued: %v", queue.roleEmails)
	}
}

func TestUpdateUserRejectsSelf(t *testing.T) {
	users := newFakeUsers()
	admin := users.add("admin@x.com", domain.RoleAdministrator)
	uc := NewUpdateUser(users, &fakeQueue{}, zerolog.Nop())

	_, err := uc.Execute(context.Background(), UpdateUserInput{
		ActorID:  admin.ID,
		TargetID: admin.ID,
		Role:     domain.RolePlayer,
	})
	if !errors.Is(err, domerrors.ErrSelfModification) {
		t.Fatalf("err = %v, want ErrSelfModification", err)
	}
}

func TestUpdateUserRejectsUnknownRole(t *testing.T) {
	users := newFakeUsers()
	admin := users.add("admin@x.com", domain.RoleAdministrator)
	target := users.add("player@x.com", domain.RolePlayer)
	uc := NewUpdateUser(users, &fakeQueue{}, zerolog.Nop())

	_, err := uc.Execute(context.Background(), UpdateUserInput{
		ActorID:  admin.ID,
		TargetID: target.ID,
		Role:     "SUPERUSER",
	})
	var vErr *domerrors.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestUpdateUserEmailConflict(t *testing.T) {
	users := newFakeUsers()
	admin := users.add("admin@x.com", domain.RoleAdministrator)
	target := users.add("player@x.com", domain.RolePlayer)
	users.add("taken@x.com", domain.RolePlayer)
	uc := NewUpdateUser(users, &fakeQueue{}, zerolog.Nop())

	_, err := uc.Execute(context.Background(), UpdateUserInput{
		ActorID:  admin.ID,
		TargetID: target.ID,
		Email:    "taken@x.com",
	})
	if !errors.Is(err, domerrors.ErrUserExists) {
		t.Fatalf("err = %v, want ErrUserExists", err)
	}
}

func TestBlockAndUnblock(t *testing.T) {
	users := newFakeUsers()
	admin := users.add("admin@x.com", domain.RoleAdministrator)
	target := users.add("player@x.com", domain.RolePlayer)
	uc := NewBlockUser(users)
	ctx := context.Background()

	blocked, err := uc.Execute(ctx, BlockUserInput{ActorID: admin.ID, TargetID: target.ID, Duration: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	if !blocked.IsBlocked(time.Now()) {
		t.Fatal("user not blocked")
	}

	unblocked, err := uc.Execute(ctx, BlockUserInput{ActorID: admin.ID, TargetID: target.ID, Unblock: true})
	if err != nil {
		t.Fatal(err)
	}
	if unblocked.IsBlocked(time.Now()) {
		t.Fatal("user still blocked after unblock")
	}
}

func TestDeleteUserRejectsSelf(t *testing.T) {
	users := newFakeUsers()
	admin := users.add("admin@x.com", domain.RoleAdministrator)
	uc := NewDeleteUser(users)

	if err := uc.Execute(context.Background(), admin.ID, admin.ID); !errors.Is(err, domerrors.ErrSelfModification) {
		t.Fatalf("err = %v, want ErrSelfModification", err)
	}
}
