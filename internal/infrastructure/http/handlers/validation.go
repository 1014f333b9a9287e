package handlers

import "strings"

// Validation limits.
const (
	MaxPasswordLength = 128
	MaxRefreshToken   = 1024
)

// SanitizePassword trims password; returns empty if over max length.
func SanitizePassword(password string) string {
	s := strings.TrimSpace(password)
	if len(s) > MaxPasswordLength {
		return ""
	}
	return s
}

// TruncateRefreshToken truncates token to MaxRefreshToken.
func TruncateRefreshToken(tok string) string {
	if len(tok) > MaxRefreshToken {
		return tok[:MaxRefreshToken]
	}
	return tok
}
