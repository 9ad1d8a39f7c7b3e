package apifake

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-learning-portal/backend"
	"github.com/jrsteele09/go-learning-portal/session"
	"github.com/jrsteele09/go-learning-portal/users"
	"golang.org/x/crypto/bcrypt"
)

var _ session.AuthAPI = (*FakeAuthAPI)(nil)

type account struct {
	user users.User
	hash []byte
}

func hashPassword(password string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return hash
}

func (a *account) checkPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil
}

// FakeAuthAPI is an in-memory backend for one browser context: it remembers
// which account is logged in the way a session cookie would.
type FakeAuthAPI struct {
	lock      sync.Mutex
	accounts  map[string]*account // email -> account
	current   string              // email of the logged-in account
	resets    map[string]string   // reset token -> email
	verify    map[string]string   // verify token -> email
	meGate    chan struct{}
	expired   bool
	logoutErr error
	calls     map[string]int
}

func NewFakeAuthAPI() *FakeAuthAPI {
	return &FakeAuthAPI{
		accounts: make(map[string]*account),
		resets:   make(map[string]string),
		verify:   make(map[string]string),
		calls:    make(map[string]int),
	}
}

// AddUser stores an account. Missing IDs are generated.
func (f *FakeAuthAPI) AddUser(u users.User, password string) users.User {
	f.lock.Lock()
	defer f.lock.Unlock()
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	f.accounts[u.Email] = &account{user: u, hash: hashPassword(password)}
	return u
}

// SignIn marks email as already logged in, as if a cookie survived a reload.
func (f *FakeAuthAPI) SignIn(email string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.current = email
}

// HoldMe makes Me block until the returned release function is called.
func (f *FakeAuthAPI) HoldMe() (release func()) {
	f.lock.Lock()
	defer f.lock.Unlock()
	gate := make(chan struct{})
	f.meGate = gate
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// ExpireSession makes the server forget the current login; authenticated
// calls then answer 401.
func (f *FakeAuthAPI) ExpireSession() {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.expired = true
	f.current = ""
}

func (f *FakeAuthAPI) FailLogout(err error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.logoutErr = err
}

// IssueResetToken registers a password reset token for email.
func (f *FakeAuthAPI) IssueResetToken(email string) string {
	f.lock.Lock()
	defer f.lock.Unlock()
	token := uuid.New().String()
	f.resets[token] = email
	return token
}

func (f *FakeAuthAPI) IssueVerifyToken(email string) string {
	f.lock.Lock()
	defer f.lock.Unlock()
	token := uuid.New().String()
	f.verify[token] = email
	return token
}

// Calls returns how many times the named method was invoked.
func (f *FakeAuthAPI) Calls(method string) int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.calls[method]
}

func (f *FakeAuthAPI) Me(ctx context.Context) (*users.User, error) {
	f.lock.Lock()
	f.calls["Me"]++
	gate := f.meGate
	f.lock.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	acc, ok := f.accounts[f.current]
	if !ok {
		return nil, unauthorized("/auth/me", "Not authenticated")
	}
	u := acc.user
	return &u, nil
}

func (f *FakeAuthAPI) Login(_ context.Context, creds users.Credentials) (*users.User, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls["Login"]++
	acc, ok := f.accounts[creds.Email]
	if !ok || !acc.checkPassword(creds.Password) {
		return nil, unauthorized(backend.PathLogin, "Invalid email or password")
	}
	f.current = creds.Email
	f.expired = false
	u := acc.user
	return &u, nil
}

func (f *FakeAuthAPI) Logout(_ context.Context) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls["Logout"]++
	f.current = ""
	return f.logoutErr
}

func (f *FakeAuthAPI) Register(_ context.Context, reg users.Registration) (*users.User, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls["Register"]++
	if _, exists := f.accounts[reg.Email]; exists {
		return nil, &backend.APIError{Method: http.MethodPost, Path: backend.PathRegister, Status: http.StatusConflict, Message: "Email already registered"}
	}
	u := users.User{
		ID:        uuid.New().String(),
		Email:     reg.Email,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Role:      reg.Role,
		Phone:     reg.Phone,
	}
	f.accounts[reg.Email] = &account{user: u, hash: hashPassword(reg.Password)}
	f.current = reg.Email
	return &u, nil
}

func (f *FakeAuthAPI) UpdateProfile(_ context.Context, update users.ProfileUpdate) (*users.User, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls["UpdateProfile"]++
	acc, err := f.currentAccount(backend.PathProfile)
	if err != nil {
		return nil, err
	}
	acc.user = acc.user.Apply(update)
	u := acc.user
	return &u, nil
}

func (f *FakeAuthAPI) ChangePassword(_ context.Context, change users.PasswordChange) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls["ChangePassword"]++
	acc, err := f.currentAccount(backend.PathChangePassword)
	if err != nil {
		return err
	}
	if !acc.checkPassword(change.CurrentPassword) {
		return &backend.APIError{Method: http.MethodPut, Path: backend.PathChangePassword, Status: http.StatusBadRequest, Message: "Current password is incorrect"}
	}
	acc.hash = hashPassword(change.NewPassword)
	return nil
}

func (f *FakeAuthAPI) ForgotPassword(_ context.Context, req users.ForgotPassword) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls["ForgotPassword"]++
	return nil
}

func (f *FakeAuthAPI) ResetPassword(_ context.Context, reset users.PasswordReset) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls["ResetPassword"]++
	email, ok := f.resets[reset.Token]
	if !ok {
		return &backend.APIError{Method: http.MethodPost, Path: backend.PathResetPassword, Status: http.StatusBadRequest, Message: "Reset link is invalid or has expired"}
	}
	delete(f.resets, reset.Token)
	f.accounts[email].hash = hashPassword(reset.Password)
	return nil
}

func (f *FakeAuthAPI) VerifyEmail(_ context.Context, token string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls["VerifyEmail"]++
	email, ok := f.verify[token]
	if !ok {
		return &backend.APIError{Method: http.MethodPost, Path: backend.PathVerifyEmail, Status: http.StatusBadRequest, Message: "Verification link is invalid"}
	}
	delete(f.verify, token)
	f.accounts[email].user.Verified = true
	return nil
}

func (f *FakeAuthAPI) currentAccount(path string) (*account, error) {
	acc, ok := f.accounts[f.current]
	if !ok || f.expired {
		return nil, unauthorized(path, "Session expired")
	}
	return acc, nil
}

func unauthorized(path, msg string) error {
	return &backend.APIError{Status: http.StatusUnauthorized, Path: path, Message: msg}
}
