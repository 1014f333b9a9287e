package domain

import "time"

// Outcomes recorded for a login attempt.
const (
	AttemptSuccess = "SUCCESS"
	AttemptFailure = "FAILURE"
	AttemptBlocked = "BLOCKED"
)

// LoginAttempt is one row of the login audit trail. Email is recorded as
// submitted even when no such account exists.
type LoginAttempt struct {
	ID        int64
	Email     string
	IP        string
	Outcome   string
	CreatedAt time.Time
}
