package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-learning-portal/backend"
	"github.com/jrsteele09/go-learning-portal/content"
	perrors "github.com/jrsteele09/go-learning-portal/internal/errors"
	"github.com/jrsteele09/go-learning-portal/users"
	"github.com/stretchr/testify/require"
)

const sessionCookie = "connect.sid"

// fakeAPI is a tiny stand-in for the platform API: one user, cookie session.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds users.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid email or password","stack":"at login.js:42"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "s1", Path: "/"})
		_, _ = w.Write([]byte(`{"user":{"_id":"u-1","email":"` + creds.Email + `","role":"student"}}`))
	})

	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(sessionCookie); err != nil || c.Value != "s1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Not authenticated"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"u-1","email":"ada@example.com","role":"student"}`))
	})

	mux.HandleFunc("POST /auth/reset-password/{token}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "tok-1", r.PathValue("token"))
		require.Equal(t, map[string]string{"password": "NewPassword1"}, body)
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /courses/{c}/modules/{m}/content/{x}/secure-view", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("x") {
		case "video-1":
			_, _ = w.Write([]byte(`{"url":"https://cdn/a.mp4","fallbackUrl":"https://cdn/a.webm","type":"video"}`))
		case "doc-1":
			_, _ = w.Write([]byte(`{"data":{"url":"https://cdn/n.pdf","type":"application/pdf"}}`))
		case "quiz-1":
			_, _ = w.Write([]byte(`{"url":"https://cdn/q","type":"quiz"}`))
		default:
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"message":"Not enrolled in this course"}`))
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_LoginThenMeUsesCookieJar(t *testing.T) {
	srv := fakeAPI(t)
	c, err := backend.New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Me(ctx)
	require.ErrorIs(t, err, perrors.ErrUnauthorized)

	u, err := c.Login(ctx, users.Credentials{Email: "ada@example.com", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, "u-1", u.ID)

	u, err = c.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", u.Email)
}

func TestClient_SeparateClientsDoNotShareCookies(t *testing.T) {
	srv := fakeAPI(t)
	ctx := context.Background()
	a, err := backend.New(srv.URL)
	require.NoError(t, err)
	b, err := backend.New(srv.URL)
	require.NoError(t, err)

	_, err = a.Login(ctx, users.Credentials{Email: "ada@example.com", Password: "secret"})
	require.NoError(t, err)

	_, err = b.Me(ctx)
	require.ErrorIs(t, err, perrors.ErrUnauthorized)
}

func TestClient_ErrorKeepsOnlyMessage(t *testing.T) {
	srv := fakeAPI(t)
	c, err := backend.New(srv.URL)
	require.NoError(t, err)

	_, err = c.Login(context.Background(), users.Credentials{Email: "ada@example.com", Password: "wrong"})
	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "Invalid email or password", apiErr.UserMessage())
	require.NotContains(t, err.Error(), "login.js")
	require.Equal(t, "Invalid email or password", perrors.UserMessage(err, "fallback"))
}

func TestClient_ResetPasswordSendsOnlyPassword(t *testing.T) {
	srv := fakeAPI(t)
	c, err := backend.New(srv.URL)
	require.NoError(t, err)

	err = c.ResetPassword(context.Background(), users.PasswordReset{Token: "tok-1", Password: "NewPassword1"})
	require.NoError(t, err)
}

func TestClient_SecureView(t *testing.T) {
	srv := fakeAPI(t)
	c, err := backend.New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()
	ref := content.Ref{CourseID: "c1", ModuleID: "m1"}

	ref.ContentID = "video-1"
	d, err := c.SecureView(ctx, ref)
	require.NoError(t, err)
	require.Equal(t, content.KindVideo, d.Kind)
	require.Equal(t, "https://cdn/a.mp4", d.URL)
	require.Equal(t, "https://cdn/a.webm", d.FallbackURL)

	ref.ContentID = "doc-1"
	d, err = c.SecureView(ctx, ref)
	require.NoError(t, err)
	require.Equal(t, content.KindDocument, d.Kind)
	require.Equal(t, "application/pdf", d.MimeType)

	ref.ContentID = "quiz-1"
	_, err = c.SecureView(ctx, ref)
	require.ErrorIs(t, err, perrors.ErrUnsupportedContent)

	ref.ContentID = "locked"
	_, err = c.SecureView(ctx, ref)
	require.ErrorIs(t, err, perrors.ErrContentAccessDenied)
	require.Equal(t, "Not enrolled in this course", perrors.UserMessage(err, ""))
}

func TestSecureViewPath_Escapes(t *testing.T) {
	path := backend.SecureViewPath(content.Ref{CourseID: "c 1", ModuleID: "m/1", ContentID: "x"})
	require.Equal(t, "/courses/c%201/modules/m%2F1/content/x/secure-view", path)
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := backend.New("/api")
	require.Error(t, err)
}
