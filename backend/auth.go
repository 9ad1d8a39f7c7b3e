package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-learning-portal/users"
)

// Backend endpoint paths
const (
	PathMe             = "/auth/me"
	PathLogin          = "/auth/login"
	PathLogout         = "/auth/logout"
	PathRegister       = "/auth/register"
	PathProfile        = "/auth/profile"
	PathChangePassword = "/auth/change-password"
	PathForgotPassword = "/auth/forgot-password"
	PathResetPassword  = "/auth/reset-password/"     // + token
	PathVerifyEmail    = "/api/auth/verify-email/" // + token
)

var userEnvelope = []string{"user", "data"}

func (c *Client) Me(ctx context.Context) (*users.User, error) {
	return c.userCall(ctx, http.MethodGet, PathMe, nil)
}

func (c *Client) Login(ctx context.Context, creds users.Credentials) (*users.User, error) {
	return c.userCall(ctx, http.MethodPost, PathLogin, creds)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, PathLogout, nil, nil)
}

func (c *Client) Register(ctx context.Context, reg users.Registration) (*users.User, error) {
	return c.userCall(ctx, http.MethodPost, PathRegister, reg)
}

func (c *Client) UpdateProfile(ctx context.Context, update users.ProfileUpdate) (*users.User, error) {
	return c.userCall(ctx, http.MethodPut, PathProfile, update)
}

func (c *Client) ChangePassword(ctx context.Context, change users.PasswordChange) error {
	return c.do(ctx, http.MethodPut, PathChangePassword, change, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, req users.ForgotPassword) error {
	return c.do(ctx, http.MethodPost, PathForgotPassword, req, nil)
}

func (c *Client) ResetPassword(ctx context.Context, reset users.PasswordReset) error {
	return c.do(ctx, http.MethodPost, PathResetPassword+url.PathEscape(reset.Token), reset, nil)
}

func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, PathVerifyEmail+url.PathEscape(token), nil, nil)
}

func (c *Client) userCall(ctx context.Context, method, path string, body any) (*users.User, error) {
	var u users.User
	if err := c.do(ctx, method, path, body, &u, userEnvelope...); err != nil {
		return nil, err
	}
	return &u, nil
}
