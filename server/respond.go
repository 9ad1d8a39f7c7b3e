package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jrsteele09/go-learning-portal/backend"
	perrors "github.com/jrsteele09/go-learning-portal/internal/errors"
)

const (
	maxRequestBody        = 64 << 10
	msgSomethingWentWrong = "Something went wrong. Please try again."
	msgBadRequest         = "The request could not be read."
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeFailure reports err with the status it maps to and its user-facing
// message. Raw error text is never sent.
func writeFailure(w http.ResponseWriter, err error, fallback string) {
	writeError(w, statusFor(err), perrors.UserMessage(err, fallback))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return perrors.Wrapf(perrors.ErrInvalidInput, "decode body: %v", err)
	}
	return nil
}

func statusFor(err error) int {
	var apiErr *backend.APIError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, perrors.ErrInvalidInput), errors.Is(err, perrors.ErrUnsupportedSpeed):
		return http.StatusBadRequest
	case errors.Is(err, perrors.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, perrors.ErrControlsDisabled), errors.Is(err, perrors.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, perrors.ErrNotFound) && !errors.As(err, &apiErr):
		return http.StatusNotFound
	case errors.As(err, &apiErr):
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
