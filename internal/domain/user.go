package domain

import (
	"time"

	"github.com/google/uuid"
)

// Roles a user can hold on the platform.
const (
	RolePlayer        = "PLAYER"
	RoleModerator     = "MODERATOR"
	RoleAdministrator = "ADMINISTRATOR"
)

// ValidRoles lists every role accepted by the role-change endpoint.
var ValidRoles = []string{RolePlayer, RoleModerator, RoleAdministrator}

// IsValidRole reports whether role is one of ValidRoles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// UserID is a value object for user identity.
type UserID struct{ uuid.UUID }

// NewUserID creates a new UserID from uuid.
func NewUserID(id uuid.UUID) UserID { return UserID{UUID: id} }

// String returns the canonical string form.
func (u UserID) String() string { return u.UUID.String() }

// ParseUserID parses the canonical string form.
func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID{UUID: id}, nil
}

// User is a registered account. BlockedUntil is an administrative block
// set by an admin; it is unrelated to the login throttle's lockouts.
type User struct {
	ID           UserID
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	DateOfBirth  time.Time
	Gender       string
	Country      string
	Street       string
	Number       string
	Role         string
	BlockedUntil *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName returns "First Last" for display and notification emails.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsBlocked reports whether an administrative block is currently active.
func (u *User) IsBlocked(now time.Time) bool {
	return u.BlockedUntil != nil && now.Before(*u.BlockedUntil)
}

// Age returns the user's age in full years at the given date.
func (u *User) Age(now time.Time) int {
	years := now.Year() - u.DateOfBirth.Year()
	if u.DateOfBirth.AddDate(years, 0, 0).After(now) {
		years--
	}
	return years
}
