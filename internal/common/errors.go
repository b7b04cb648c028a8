// Package common defines shared constants and sentinel errors used across
// the Secrets server. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Authentication outcomes. Both are recoverable and become user-facing
	// messages at the HTTP boundary.
	ErrAccountNotFound = errors.New("account not found")
	ErrBadSecret       = errors.New("bad secret")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// ErrSecretTooLong is a validation error: the password exceeds what the
	// active codec can store.
	ErrSecretTooLong = fmt.Errorf("%w: secret too long", ErrorValidation)

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
