package domain

import "errors"

// Authentication and authorization failures. Client-facing messages are
// chosen by the HTTP error handler; these strings are for logs.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("access forbidden")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrValidation         = errors.New("validation failed")
)

// ErrStoreUnavailable marks a transient infrastructure failure (timeouts,
// connection loss). Callers may retry.
var ErrStoreUnavailable = errors.New("store unavailable")
