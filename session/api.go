package session

import (
	"context"

	"github.com/jrsteele09/go-learning-portal/users"
)

// AuthAPI is the slice of the backend the session store depends on.
// Implementations must report a 401 as an error matching
// errors.ErrUnauthorized.
type AuthAPI interface {
	// Me resolves the identity bound to the current browser context
	Me(ctx context.Context) (*users.User, error)

	Login(ctx context.Context, creds users.Credentials) (*users.User, error)

	// Logout invalidates the server-side session; best effort
	Logout(ctx context.Context) error

	Register(ctx context.Context, reg users.Registration) (*users.User, error)
	UpdateProfile(ctx context.Context, update users.ProfileUpdate) (*users.User, error)
	ChangePassword(ctx context.Context, change users.PasswordChange) error
	ForgotPassword(ctx context.Context, req users.ForgotPassword) error
	ResetPassword(ctx context.Context, reset users.PasswordReset) error
	VerifyEmail(ctx context.Context, token string) error
}
