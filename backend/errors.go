package backend

import (
	"fmt"
	"net/http"

	perrors "github.com/jrsteele09/go-learning-portal/internal/errors"
)

// APIError is a non-2xx answer from the backend. Message is the backend's
// "message" field and is the only part of the body ever kept.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend %s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("backend %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// UserMessage returns the backend's message for display.
func (e *APIError) UserMessage() string {
	return e.Message
}

// Is maps status codes onto the portal's sentinel errors.
func (e *APIError) Is(target error) bool {
	switch target {
	case perrors.ErrBackend:
		return true
	case perrors.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case perrors.ErrContentAccessDenied:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden || e.Status == http.StatusGone
	case perrors.ErrNotFound:
		return e.Status == http.StatusNotFound
	case perrors.ErrInvalidCredentials:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusBadRequest
	}
	return false
}
