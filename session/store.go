package session

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-learning-portal/async"
	perrors "github.com/jrsteele09/go-learning-portal/internal/errors"
	"github.com/jrsteele09/go-learning-portal/internal/validation"
	"github.com/jrsteele09/go-learning-portal/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// User-facing messages, used when the backend gives none.
const (
	msgLoginFailed          = "Login failed. Please check your email and password."
	msgRegisterFailed       = "Registration failed. Please try again."
	msgUpdateProfileFailed  = "Failed to update profile."
	msgChangePasswordFailed = "Failed to change password."
	msgForgotPasswordFailed = "Failed to send password reset email."
	msgResetPasswordFailed  = "Failed to reset password."
	msgVerifyEmailFailed    = "Email verification failed."
	msgSessionExpired       = "Your session has expired. Please log in again."
	msgNotLoggedIn          = "You must be logged in to do that."
)

// Session is a read-only snapshot of the current browser context's identity.
type Session struct {
	User    *users.User // nil when anonymous or still loading
	Loading bool        // true until the initial probe settles
	Error   string      // last human-readable failure, if any
}

func (s Session) Authenticated() bool {
	return !s.Loading && s.User != nil
}

// Resetter is implemented by every piece of per-visitor state that must not
// outlive a session (content gateways, presenters, navigation intent...).
type Resetter interface {
	Reset()
}

// ResetFunc adapts a function to Resetter.
type ResetFunc func()

func (f ResetFunc) Reset() { f() }

// Store is the single owner of Session. All mutation goes through its named
// methods; readers only ever see copies.
type Store struct {
	api    AuthAPI
	logger zerolog.Logger

	user        async.Op[*users.User]
	probeTicket async.Ticket
	probeOnce   sync.Once
	ready       chan struct{}

	mu          sync.RWMutex
	errMsg      string
	resetters   []Resetter
	subscribers []func(Session)
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithLogger replaces the store logger.
func WithLogger(l zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore creates a store in the loading state. Probe must be called once to
// resolve it.
func NewStore(api AuthAPI, options ...StoreOption) (*Store, error) {
	if api == nil {
		return nil, errors.New("[NewStore] auth api is required")
	}
	s := &Store{
		api:    api,
		logger: log.With().Str("component", "session").Logger(),
		ready:  make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	s.probeTicket = s.user.Start()
	return s, nil
}

// Snapshot returns the current session. The user is a copy.
func (s *Store) Snapshot() Session {
	st := s.user.Snapshot()
	u, _ := st.Value()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Session{
		User:    u.Clone(),
		Loading: st.IsLoading(),
		Error:   s.errMsg,
	}
}

// Ready is closed once the initial probe has settled.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Subscribe registers fn to receive a snapshot after every session change.
func (s *Store) Subscribe(fn func(Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// OnReset registers r to be reset whenever the session is torn down.
func (s *Store) OnReset(r Resetter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetters = append(s.resetters, r)
}

// Probe resolves the initial session against the backend. Any failure means
// an anonymous visitor and records no error. Only the first call does work.
func (s *Store) Probe(ctx context.Context) {
	s.probeOnce.Do(func() {
		defer close(s.ready)
		u, err := s.api.Me(ctx)
		if err != nil {
			s.logger.Debug().Err(err).Msg("session probe: anonymous")
			u = nil
		}
		if !s.user.Resolve(s.probeTicket, u.Clone()) {
			// A login or logout already decided the session.
			return
		}
		s.notify()
	})
}

// Login submits credentials. On failure the prior session is left intact.
func (s *Store) Login(ctx context.Context, creds users.Credentials) (*users.User, error) {
	s.setError("")
	if err := validation.Struct(creds); err != nil {
		return nil, s.fail(err, msgLoginFailed, "[Store Login] invalid credentials")
	}
	u, err := s.api.Login(ctx, creds)
	if err != nil {
		return nil, s.fail(err, msgLoginFailed, "[Store Login]")
	}
	if u == nil {
		return nil, s.fail(perrors.ErrInternal, msgLoginFailed, "[Store Login] empty user")
	}
	s.setUser(u)
	s.logger.Info().Str("user_id", u.ID).Str("role", string(u.Role)).Msg("logged in")
	return u.Clone(), nil
}

// Register creates an account and, on success, behaves like Login.
func (s *Store) Register(ctx context.Context, reg users.Registration) (*users.User, error) {
	s.setError("")
	if err := validation.Struct(reg); err != nil {
		return nil, s.fail(err, msgRegisterFailed, "[Store Register] invalid registration")
	}
	u, err := s.api.Register(ctx, reg)
	if err != nil {
		return nil, s.fail(err, msgRegisterFailed, "[Store Register]")
	}
	if u == nil {
		return nil, s.fail(perrors.ErrInternal, msgRegisterFailed, "[Store Register] empty user")
	}
	s.setUser(u)
	s.logger.Info().Str("user_id", u.ID).Msg("registered")
	return u.Clone(), nil
}

// Logout asks the backend to end the session and then clears every piece of
// per-visitor state whatever the backend said.
func (s *Store) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("backend logout failed; clearing local session anyway")
	}
	s.teardown("")
	s.logger.Info().Msg("logged out")
}

// UpdateProfile applies a partial profile update and stores the returned user.
func (s *Store) UpdateProfile(ctx context.Context, update users.ProfileUpdate) (*users.User, error) {
	s.setError("")
	if err := s.requireUser(); err != nil {
		return nil, err
	}
	if err := validation.Struct(update); err != nil {
		return nil, s.fail(err, msgUpdateProfileFailed, "[Store UpdateProfile] invalid update")
	}
	u, err := s.api.UpdateProfile(ctx, update)
	if err != nil {
		return nil, s.failAuthenticated(err, msgUpdateProfileFailed, "[Store UpdateProfile]")
	}
	if u == nil {
		return nil, s.fail(perrors.ErrInternal, msgUpdateProfileFailed, "[Store UpdateProfile] empty user")
	}
	s.setUser(u)
	return u.Clone(), nil
}

func (s *Store) ChangePassword(ctx context.Context, change users.PasswordChange) error {
	s.setError("")
	if err := s.requireUser(); err != nil {
		return err
	}
	if err := validation.Struct(change); err != nil {
		return s.fail(err, msgChangePasswordFailed, "[Store ChangePassword] invalid request")
	}
	if err := s.api.ChangePassword(ctx, change); err != nil {
		return s.failAuthenticated(err, msgChangePasswordFailed, "[Store ChangePassword]")
	}
	return nil
}

func (s *Store) ForgotPassword(ctx context.Context, req users.ForgotPassword) error {
	s.setError("")
	if err := validation.Struct(req); err != nil {
		return s.fail(err, msgForgotPasswordFailed, "[Store ForgotPassword] invalid request")
	}
	if err := s.api.ForgotPassword(ctx, req); err != nil {
		return s.fail(err, msgForgotPasswordFailed, "[Store ForgotPassword]")
	}
	return nil
}

func (s *Store) ResetPassword(ctx context.Context, reset users.PasswordReset) error {
	s.setError("")
	if err := validation.Struct(reset); err != nil {
		return s.fail(err, msgResetPasswordFailed, "[Store ResetPassword] invalid request")
	}
	if err := s.api.ResetPassword(ctx, reset); err != nil {
		return s.fail(err, msgResetPasswordFailed, "[Store ResetPassword]")
	}
	return nil
}

func (s *Store) VerifyEmail(ctx context.Context, token string) error {
	s.setError("")
	if token == "" {
		return s.fail(perrors.ErrInvalidInput, msgVerifyEmailFailed, "[Store VerifyEmail] empty token")
	}
	if err := s.api.VerifyEmail(ctx, token); err != nil {
		return s.fail(err, msgVerifyEmailFailed, "[Store VerifyEmail]")
	}
	return nil
}

// ClearError drops the recorded error message.
func (s *Store) ClearError() {
	s.setError("")
}

// Error wraps a failed session operation with the message shown to the user.
type Error struct {
	Message string
	err     error
}

func (e *Error) Error() string       { return e.err.Error() }
func (e *Error) Unwrap() error       { return e.err }
func (e *Error) UserMessage() string { return e.Message }

func (s *Store) fail(err error, fallback, op string) error {
	msg := perrors.UserMessage(err, fallback)
	s.setError(msg)
	s.logger.Debug().Err(err).Str("message", msg).Msg(op)
	return &Error{Message: msg, err: errors.Wrap(err, op)}
}

// failAuthenticated is fail for operations that need a live session: a 401
// means the session is gone and everything tied to it is torn down.
func (s *Store) failAuthenticated(err error, fallback, op string) error {
	if !perrors.Is(err, perrors.ErrUnauthorized) {
		return s.fail(err, fallback, op)
	}
	s.logger.Info().Msg("backend rejected session; tearing down")
	s.teardown(msgSessionExpired)
	return &Error{Message: msgSessionExpired, err: errors.Wrap(err, op)}
}

func (s *Store) requireUser() error {
	if st := s.user.Snapshot(); st.IsSuccess() {
		if u, _ := st.Value(); u != nil {
			return nil
		}
	}
	s.setError(msgNotLoggedIn)
	return &Error{Message: msgNotLoggedIn, err: perrors.ErrNoSession}
}

func (s *Store) setUser(u *users.User) {
	s.user.Set(async.NewSuccess(u.Clone()))
	s.notify()
}

func (s *Store) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = msg
}

// teardown nulls the session, records msg and resets every registered
// Resetter.
func (s *Store) teardown(msg string) {
	s.user.Set(async.NewSuccess[*users.User](nil))
	s.mu.Lock()
	s.errMsg = msg
	resetters := append([]Resetter(nil), s.resetters...)
	s.mu.Unlock()

	for _, r := range resetters {
		r.Reset()
	}
	s.notify()
}

func (s *Store) notify() {
	snap := s.Snapshot()
	s.mu.RLock()
	subs := append([]func(Session){}, s.subscribers...)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(snap)
	}
}
