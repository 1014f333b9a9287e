package ports

import "time"

// PasswordHasher hashes and verifies passwords (Argon2id).
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenClaims is what a validated token carries.
type TokenClaims struct {
	UserID string
	Role   string
	// JTI identifies the token for the revocation blacklist.
	JTI       string
	ExpiresAt time.Time
}

// TokenIssuer signs and validates JWTs (RS256). Access and refresh tokens
// share the key pair but carry distinct type claims, so one can never be
// presented as the other.
type TokenIssuer interface {
	IssueAccessToken(userID, role string, expiresInSeconds int64) (string, error)
	IssueRefreshToken(userID, role string, expiresInSeconds int64) (string, error)
	ValidateAccessToken(tokenString string) (*TokenClaims, error)
	ValidateRefreshToken(tokenString string) (*TokenClaims, error)
}
