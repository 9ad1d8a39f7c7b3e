package errors

import (
	"errors"
	"fmt"
)

// Common error types for the learning portal
var (
	// Session errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNoSession          = errors.New("no active session")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")

	// Content errors
	ErrContentAccessDenied = errors.New("content access denied")
	ErrUnsupportedContent  = errors.New("unsupported content type")
	ErrSuperseded          = errors.New("request superseded")

	// Media errors
	ErrPlayback          = errors.New("playback failed")
	ErrControlsDisabled  = errors.New("controls unavailable")
	ErrUnsupportedSpeed  = errors.New("unsupported playback speed")
	ErrDocumentLoadFatal = errors.New("document failed to load")

	// Backend errors
	ErrBackend  = errors.New("backend error")
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
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

// UserMessager is implemented by errors that carry text safe to show a user.
type UserMessager interface {
	UserMessage() string
}

// UserMessage returns the first user-safe message in err's chain, or
// fallback when there is none.
func UserMessage(err error, fallback string) string {
	var m UserMessager
	if errors.As(err, &m) {
		if msg := m.UserMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
