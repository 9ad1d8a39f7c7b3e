package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-learning-portal/session"
	"github.com/jrsteele09/go-learning-portal/users"
)

type SessionView struct {
	User          *users.User `json:"user"`
	Loading       bool        `json:"loading"`
	Authenticated bool        `json:"authenticated"`
	Error         string      `json:"error,omitempty"`
}

func newSessionView(s session.Session) SessionView {
	return SessionView{
		User:          s.User,
		Loading:       s.Loading,
		Authenticated: s.Authenticated(),
		Error:         s.Error,
	}
}

type LoginView struct {
	View          string `json:"view"`
	Next          string `json:"next,omitempty"`
	Authenticated bool   `json:"authenticated"`
	Loading       bool   `json:"loading"`
	Redirect      string `json:"redirect,omitempty"`
}

type AuthResult struct {
	User     *users.User `json:"user"`
	Redirect string      `json:"redirect"`
}

type messageResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

func (s *Server) backendContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.config.GetRequestTimeout())
}

// SessionHandler returns the visitor's current session.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := visitorFromContext(r.Context())
		writeJSON(w, http.StatusOK, newSessionView(v.Session()))
	}
}

// ClearSessionErrorHandler dismisses the recorded session error.
func (s *Server) ClearSessionErrorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := visitorFromContext(r.Context())
		v.store.ClearError()
		writeJSON(w, http.StatusOK, newSessionView(v.Session()))
	}
}

// LoginPageHandler is the login entry point. A local next parameter becomes
// the pending destination; an authenticated visitor is sent on.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := visitorFromContext(r.Context())
		if next := r.URL.Query().Get("next"); next != "" {
			v.Intent().Record(next)
		}
		snap := v.Session()
		view := LoginView{
			View:          "login",
			Authenticated: snap.Authenticated(),
			Loading:       snap.Loading,
		}
		if snap.Authenticated() {
			view.Redirect = s.guard.AfterLogin(v.Intent())
		} else {
			view.Next = v.Intent().Peek()
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := visitorFromContext(r.Context())
		var creds users.Credentials
		if err := decodeJSON(w, r, &creds); err != nil {
			writeFailure(w, err, msgBadRequest)
			return
		}
		ctx, cancel := s.backendContext(r)
		defer cancel()

		u, err := v.store.Login(ctx, creds)
		if err != nil {
			writeFailure(w, err, msgSomethingWentWrong)
			return
		}
		writeJSON(w, http.StatusOK, AuthResult{User: u, Redirect: s.guard.AfterLogin(v.Intent())})
	}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := visitorFromContext(r.Context())
		var reg users.Registration
		if err := decodeJSON(w, r, &reg); err != nil {
			writeFailure(w, err, msgBadRequest)
			return
		}
		ctx, cancel := s.backendContext(r)
		defer cancel()

		u, err := v.store.Register(ctx, reg)
		if err != nil {
			writeFailure(w, err, msgSomethingWentWrong)
			return
		}
		writeJSON(w, http.StatusCreated, AuthResult{User: u, Redirect: s.guard.AfterLogin(v.Intent())})
	}
}

// LogoutHandler always succeeds: the local session is cleared whatever the
// backend says.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := visitorFromContext(r.Context())
		ctx, cancel := s.backendContext(r)
		defer cancel()

		v.store.Logout(ctx)
		writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out.", Redirect: s.config.GetLoginPath()})
	}
}

func (s *Server) UpdateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := visitorFromContext(r.Context())
		var update users.ProfileUpdate
		if err := decodeJSON(w, r, &update); err != nil {
			writeFailure(w, err, msgBadRequest)
			return
		}
		ctx, cancel := s.backendContext(r)
		defer cancel()

		u, err := v.store.UpdateProfile(ctx, update)
		if err != nil {
			writeFailure(w, err, msgSomethingWentWrong)
			return
		}
		writeJSON(w, http.StatusOK, newSessionView(session.Session{User: u}))
	}
}

func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := visitorFromContext(r.Context())
		var change users.PasswordChange
		if err := decodeJSON(w, r, &change); err != nil {
			writeFailure(w, err, msgBadRequest)
			return
		}
		ctx, cancel := s.backendContext(r)
		defer cancel()

		if err := v.store.ChangePassword(ctx, change); err != nil {
			writeFailure(w, err, msgSomethingWentWrong)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Password changed."})
	}
}

func (s *Server) ForgotPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := visitorFromContext(r.Context())
		var req users.ForgotPassword
		if err := decodeJSON(w, r, &req); err != nil {
			writeFailure(w, err, msgBadRequest)
			return
		}
		ctx, cancel := s.backendContext(r)
		defer cancel()

		if err := v.store.ForgotPassword(ctx, req); err != nil {
			writeFailure(w, err, msgSomethingWentWrong)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "If that email is registered, a reset link is on its way."})
	}
}

func (s *Server) ResetPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := visitorFromContext(r.Context())
		var reset users.PasswordReset
		if err := decodeJSON(w, r, &reset); err != nil {
			writeFailure(w, err, msgBadRequest)
			return
		}
		reset.Token = r.PathValue("token")
		ctx, cancel := s.backendContext(r)
		defer cancel()

		if err := v.store.ResetPassword(ctx, reset); err != nil {
			writeFailure(w, err, msgSomethingWentWrong)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Password reset. You can now log in.", Redirect: s.config.GetLoginPath()})
	}
}

func (s *Server) VerifyEmailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := visitorFromContext(r.Context())
		ctx, cancel := s.backendContext(r)
		defer cancel()

		if err := v.store.VerifyEmail(ctx, r.PathValue("token")); err != nil {
			writeFailure(w, err, msgSomethingWentWrong)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Email verified."})
	}
}
