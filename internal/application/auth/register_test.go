package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/obrentanasic/drs-projekat/internal/domain"
	domerrors "github.com/obrentanasic/drs-projekat/internal/domain/errors"
)

func validRegistration() RegisterUserInput {
	return RegisterUserInput{
		FirstName:   "Ana",
		LastName:    "Anic",
		Email:       "ana@example.com",
		Password:    "Passw0rd",
		DateOfBirth: time.Date(2000, 5, 1, 0, 0, 0, 0, time.UTC),
		Gender:      "F",
		Country:     "Serbia",
		Street:      "Bulevar oslobodjenja",
		Number:      "46",
	}
}

func TestRegisterUser(t *testing.T) {
	users := &stubUsers{byEmail: map[string]*domain.User{}}
	uc := NewRegisterUser(users, stubHasher{})

	res, err := uc.Execute(context.Background(), validRegistration())
	if err != nil {
		t.Fatal(err)
	}
	if res.User.Role != domain.RolePlayer {
		t.Errorf("new accounts must start as PLAYER, got %q", res.User.Role)
	}
	if res.User.PasswordHash == "Passw0rd" {
		t.Error("password stored in clear")
	}
	if users.byEmail["ana@example.com"] == nil {
		t.Error("user not persisted")
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	users := &stubUsers{byEmail: map[string]*domain.User{}}
	uc := NewRegisterUser(users, stubHasher{})

	input := validRegistration()
	input.Email = "  Ana@Example.COM "
	res, err := uc.Execute(context.Background(), input)
	if err != nil {
		t.Fatal(err)
	}
	if res.User.Email != "ana@example.com" {
		t.Errorf("Email = %q", res.User.Email)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := &stubUsers{byEmail: map[string]*domain.User{}}
	uc := NewRegisterUser(users, stubHasher{})
	ctx := context.Background()

	if _, err := uc.Execute(ctx, validRegistration()); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Execute(ctx, validRegistration()); !errors.Is(err, domerrors.ErrUserExists) {
		t.Fatalf("err = %v, want ErrUserExists", err)
	}
}

func TestRegisterRejectsUnderage(t *testing.T) {
	users := &stubUsers{byEmail: map[string]*domain.User{}}
	uc := NewRegisterUser(users, stubHasher{})

	input := validRegistration()
	input.DateOfBirth = time.Now().AddDate(-12, 0, 0)
	_, err := uc.Execute(context.Background(), input)
	var vErr *domerrors.ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "date_of_birth" {
		t.Fatalf("err = %v, want date_of_birth validation error", err)
	}
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		password string
		ok       bool
	}{
		{"Passw0rd", true},
		{"short1A", false},
		{"alllowercase1", false},
		{"ALLUPPERCASE1", false},
		{"NoDigitsHere", false},
	}
	for _, c := range cases {
		err := ValidatePassword(c.password)
		if c.ok && err != nil {
			t.Errorf("ValidatePassword(%q) = %v, want nil", c.password, err)
		}
		if !c.ok && err == nil {
			t.Errorf("ValidatePassword(%q) accepted", c.password)
		}
	}
}

func TestRegisterRejectsBadEmail(t *testing.T) {
	users := &stubUsers{byEmail: map[string]*domain.User{}}
	uc := NewRegisterUser(users, stubHasher{})

	input := validRegistration()
	input.Email = "not-an-email"
	_, err := uc.Execute(context.Background(), input)
	var vErr *domerrors.ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "email" {
		t.Fatalf("err = %v, want email validation error", err)
	}
}
