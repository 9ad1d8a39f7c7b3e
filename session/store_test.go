package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	perrors "github.com/jrsteele09/go-learning-portal/internal/errors"
	"github.com/jrsteele09/go-learning-portal/internal/utils"
	"github.com/jrsteele09/go-learning-portal/session"
	"github.com/jrsteele09/go-learning-portal/session/apifake"
	"github.com/jrsteele09/go-learning-portal/users"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "ada@example.com"
	testPassword = "Password123"
)

type testFixture struct {
	api   *apifake.FakeAuthAPI
	store *session.Store
	user  users.User
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	api := apifake.NewFakeAuthAPI()
	u := api.AddUser(users.User{
		ID:        "user-1",
		Email:     testEmail,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      users.RoleStudent,
	}, testPassword)

	store, err := session.NewStore(api)
	require.NoError(t, err)
	return &testFixture{api: api, store: store, user: u}
}

func (f *testFixture) login(t *testing.T) {
	t.Helper()
	_, err := f.store.Login(context.Background(), users.Credentials{Email: testEmail, Password: testPassword})
	require.NoError(t, err)
}

func TestNewStore_RequiresAPI(t *testing.T) {
	_, err := session.NewStore(nil)
	require.Error(t, err)
}

func TestNewStore_StartsLoading(t *testing.T) {
	f := setupTestFixture(t)
	s := f.store.Snapshot()
	require.True(t, s.Loading)
	require.Nil(t, s.User)
	require.False(t, s.Authenticated())
}

// TestProbe_UnauthorizedIsSilent tests that an anonymous probe is not an error
func TestProbe_UnauthorizedIsSilent(t *testing.T) {
	f := setupTestFixture(t)
	f.store.Probe(context.Background())

	s := f.store.Snapshot()
	require.False(t, s.Loading)
	require.Nil(t, s.User)
	require.Empty(t, s.Error)

	select {
	case <-f.store.Ready():
	default:
		t.Fatal("Ready should be closed after the probe")
	}
}

func TestProbe_ExistingSession(t *testing.T) {
	f := setupTestFixture(t)
	f.api.SignIn(testEmail)
	f.store.Probe(context.Background())

	s := f.store.Snapshot()
	require.True(t, s.Authenticated())
	require.Equal(t, "user-1", s.User.ID)
}

func TestProbe_RunsOnce(t *testing.T) {
	f := setupTestFixture(t)
	f.store.Probe(context.Background())
	f.store.Probe(context.Background())
	require.Equal(t, 1, f.api.Calls("Me"))
}

func TestProbe_StaysLoadingUntilBackendAnswers(t *testing.T) {
	f := setupTestFixture(t)
	f.api.SignIn(testEmail)
	release := f.api.HoldMe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.store.Probe(context.Background())
	}()

	require.Never(t, func() bool { return !f.store.Snapshot().Loading }, 50*time.Millisecond, 5*time.Millisecond)
	release()
	<-done
	require.True(t, f.store.Snapshot().Authenticated())
}

func TestProbe_LateResultDoesNotOverrideLogin(t *testing.T) {
	f := setupTestFixture(t)
	release := f.api.HoldMe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.store.Probe(context.Background())
	}()

	f.login(t)
	release()
	<-done

	s := f.store.Snapshot()
	require.True(t, s.Authenticated())
	require.Equal(t, testEmail, s.User.Email)
}

func TestLogin_Success(t *testing.T) {
	f := setupTestFixture(t)
	f.store.Probe(context.Background())

	u, err := f.store.Login(context.Background(), users.Credentials{Email: testEmail, Password: testPassword})
	require.NoError(t, err)
	require.Equal(t, f.user.ID, u.ID)

	s := f.store.Snapshot()
	require.Equal(t, f.user, *s.User)
	require.Empty(t, s.Error)
}

func TestLogin_FailureLeavesAnonymousSession(t *testing.T) {
	f := setupTestFixture(t)
	f.store.Probe(context.Background())

	_, err := f.store.Login(context.Background(), users.Credentials{Email: testEmail, Password: "wrong"})
	require.Error(t, err)
	require.ErrorIs(t, err, perrors.ErrUnauthorized)
	require.Equal(t, "Invalid email or password", perrors.UserMessage(err, ""))

	s := f.store.Snapshot()
	require.Nil(t, s.User)
	require.Equal(t, "Invalid email or password", s.Error)
}

// TestLogin_FailureKeepsPriorSession tests that a failed login never destroys
// an existing session
func TestLogin_FailureKeepsPriorSession(t *testing.T) {
	f := setupTestFixture(t)
	f.store.Probe(context.Background())
	f.login(t)
	before := f.store.Snapshot().User

	_, err := f.store.Login(context.Background(), users.Credentials{Email: "other@example.com", Password: "nope"})
	require.Error(t, err)
	require.Equal(t, before, f.store.Snapshot().User)
}

func TestLogin_InvalidInputSkipsBackend(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.store.Login(context.Background(), users.Credentials{Email: "not-an-email", Password: ""})
	require.ErrorIs(t, err, perrors.ErrInvalidInput)
	require.Equal(t, 0, f.api.Calls("Login"))
	require.NotEmpty(t, f.store.Snapshot().Error)
}

func TestSnapshot_ReturnsCopy(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	s := f.store.Snapshot()
	s.User.Email = "tampered@example.com"
	require.Equal(t, testEmail, f.store.Snapshot().User.Email)
}

func TestLogout_ClearsSessionAndResets(t *testing.T) {
	f := setupTestFixture(t)
	f.store.Probe(context.Background())
	f.login(t)

	var resets int
	f.store.OnReset(session.ResetFunc(func() { resets++ }))
	f.store.OnReset(session.ResetFunc(func() { resets++ }))

	f.store.Logout(context.Background())

	s := f.store.Snapshot()
	require.Nil(t, s.User)
	require.False(t, s.Loading)
	require.Equal(t, 2, resets)
	require.Equal(t, 1, f.api.Calls("Logout"))
}

func TestLogout_BackendFailureStillClears(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	f.api.FailLogout(errors.New("connection refused"))

	var reset bool
	f.store.OnReset(session.ResetFunc(func() { reset = true }))
	f.store.Logout(context.Background())

	require.Nil(t, f.store.Snapshot().User)
	require.True(t, reset)
}

func TestSubscribe_NotifiedOnChange(t *testing.T) {
	f := setupTestFixture(t)
	var seen []session.Session
	f.store.Subscribe(func(s session.Session) { seen = append(seen, s) })

	f.store.Probe(context.Background())
	f.login(t)
	f.store.Logout(context.Background())

	require.Len(t, seen, 3)
	require.False(t, seen[0].Authenticated())
	require.True(t, seen[1].Authenticated())
	require.False(t, seen[2].Authenticated())
}

func TestRegister_SuccessActsLikeLogin(t *testing.T) {
	f := setupTestFixture(t)
	f.store.Probe(context.Background())

	u, err := f.store.Register(context.Background(), users.Registration{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
		Password:  "Password123",
		Role:      users.RoleTeacher,
	})
	require.NoError(t, err)
	require.Equal(t, users.RoleTeacher, u.Role)
	require.Equal(t, "grace@example.com", f.store.Snapshot().User.Email)
}

func TestRegister_FailurePropagates(t *testing.T) {
	f := setupTestFixture(t)
	f.store.Probe(context.Background())

	_, err := f.store.Register(context.Background(), users.Registration{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     testEmail,
		Password:  "Password123",
		Role:      users.RoleStudent,
	})
	require.Error(t, err)
	require.Equal(t, "Email already registered", f.store.Snapshot().Error)
	require.Nil(t, f.store.Snapshot().User)
}

func TestUpdateProfile_ReplacesUser(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	u, err := f.store.UpdateProfile(context.Background(), users.ProfileUpdate{Bio: utils.Ptr("Analyst")})
	require.NoError(t, err)
	require.Equal(t, "Analyst", u.Bio)
	require.Equal(t, "Analyst", f.store.Snapshot().User.Bio)
}

func TestUpdateProfile_RequiresSession(t *testing.T) {
	f := setupTestFixture(t)
	f.store.Probe(context.Background())

	_, err := f.store.UpdateProfile(context.Background(), users.ProfileUpdate{Bio: utils.Ptr("x")})
	require.ErrorIs(t, err, perrors.ErrNoSession)
	require.Equal(t, 0, f.api.Calls("UpdateProfile"))
}

// TestUpdateProfile_UnauthorizedTearsDown tests that a 401 on an
// authenticated call destroys the session
func TestUpdateProfile_UnauthorizedTearsDown(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	var reset bool
	f.store.OnReset(session.ResetFunc(func() { reset = true }))

	f.api.ExpireSession()
	_, err := f.store.UpdateProfile(context.Background(), users.ProfileUpdate{Bio: utils.Ptr("x")})
	require.ErrorIs(t, err, perrors.ErrUnauthorized)

	s := f.store.Snapshot()
	require.Nil(t, s.User)
	require.True(t, reset)
	require.Equal(t, "Your session has expired. Please log in again.", s.Error)
}

func TestChangePassword_FailureKeepsSession(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	err := f.store.ChangePassword(context.Background(), users.PasswordChange{CurrentPassword: "wrong", NewPassword: "Password456"})
	require.Error(t, err)
	require.Equal(t, "Current password is incorrect", f.store.Snapshot().Error)
	require.NotNil(t, f.store.Snapshot().User)

	err = f.store.ChangePassword(context.Background(), users.PasswordChange{CurrentPassword: testPassword, NewPassword: "Password456"})
	require.NoError(t, err)
	require.Empty(t, f.store.Snapshot().Error)
}

func TestChangePassword_SamePasswordRejected(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	err := f.store.ChangePassword(context.Background(), users.PasswordChange{CurrentPassword: testPassword, NewPassword: testPassword})
	require.ErrorIs(t, err, perrors.ErrInvalidInput)
	require.Equal(t, 0, f.api.Calls("ChangePassword"))
}

func TestForgotAndResetPassword(t *testing.T) {
	f := setupTestFixture(t)
	f.store.Probe(context.Background())
	ctx := context.Background()

	require.NoError(t, f.store.ForgotPassword(ctx, users.ForgotPassword{Email: testEmail}))

	err := f.store.ResetPassword(ctx, users.PasswordReset{Token: "bogus", Password: "Password456"})
	require.Error(t, err)
	require.Equal(t, "Reset link is invalid or has expired", f.store.Snapshot().Error)

	token := f.api.IssueResetToken(testEmail)
	require.NoError(t, f.store.ResetPassword(ctx, users.PasswordReset{Token: token, Password: "Password456"}))
	require.Empty(t, f.store.Snapshot().Error)
	require.Nil(t, f.store.Snapshot().User)

	_, err = f.store.Login(ctx, users.Credentials{Email: testEmail, Password: "Password456"})
	require.NoError(t, err)
}

func TestVerifyEmail(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	require.Error(t, f.store.VerifyEmail(ctx, ""))
	require.Equal(t, 0, f.api.Calls("VerifyEmail"))

	require.Error(t, f.store.VerifyEmail(ctx, "bogus"))
	require.Equal(t, "Verification link is invalid", f.store.Snapshot().Error)

	token := f.api.IssueVerifyToken(testEmail)
	require.NoError(t, f.store.VerifyEmail(ctx, token))
	require.Empty(t, f.store.Snapshot().Error)
}
