package handlers

// API error codes returned in JSON { "error": "...", "code": "..." } for stable client handling.
const (
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodeAccountLocked      = "account_locked"
	ErrCodeAccountDisabled    = "account_disabled"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeInvalidRequest     = "invalid_request"
	ErrCodeValidationFailed   = "validation_failed"
	ErrCodeNotFound           = "not_found"
	ErrCodeConflict           = "conflict"
	ErrCodeForbidden          = "forbidden"
	ErrCodeInvalidToken       = "invalid_token"
	ErrCodeInternal           = "internal_error"
)
