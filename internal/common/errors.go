// Package common defines shared constants and sentinel errors used across
// client and server layers of Tripwit. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors. Domain validators wrap this so callers can match
	// the whole family with errors.Is.
	ErrorValidation = errors.New("validation error")

	// Access-policy errors.
	ErrorReadOnly = errors.New("read-only access")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
