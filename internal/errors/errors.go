package errors

import (
	"errors"
	"fmt"
)

// Common error types for the analytics embed service
var (
	// Configuration errors
	ErrConfig           = errors.New("configuration error")
	ErrTemplateNotFound = errors.New("industry template not found")
	ErrTemplateInvalid  = errors.New("industry template invalid")

	// Authorization flow errors
	ErrInvalidState = errors.New("invalid or expired state")
	ErrAuthFailure  = errors.New("authorization failed")

	// Session errors
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionExpired      = errors.New("session expired")
	ErrTokenRefreshFailure = errors.New("token refresh failed")

	// Embed token errors
	ErrTokenInvalid  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
	ErrScopeMismatch = errors.New("token scope mismatch")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
