package guard

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-learning-portal/session"
	"github.com/rs/zerolog/log"
)

// Decision is the outcome of checking one navigation.
type Decision int

const (
	// Loading means the session is unresolved; nothing may be decided yet.
	Loading Decision = iota
	Unauthenticated
	Authenticated
)

func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// Decide maps a session snapshot to a decision. Roles are not consulted:
// which routes exist per role, and the backend, enforce that.
func Decide(s session.Session) Decision {
	switch {
	case s.Loading:
		return Loading
	case s.User == nil:
		return Unauthenticated
	default:
		return Authenticated
	}
}

// Visitor is what the guard needs from the current browser context.
type Visitor interface {
	Session() session.Session
	Intent() *Intent
}

// VisitorLookup finds the browser context a request belongs to.
type VisitorLookup func(r *http.Request) (Visitor, error)

// Guard gates protected paths on the session of the requesting visitor.
type Guard struct {
	loginPath   string
	landingPath string
	prefixes    []string
}

func New(loginPath, landingPath string, protectedPrefixes ...string) *Guard {
	return &Guard{
		loginPath:   loginPath,
		landingPath: landingPath,
		prefixes:    protectedPrefixes,
	}
}

// Protected reports whether path needs an authenticated session.
func (g *Guard) Protected(path string) bool {
	for _, p := range g.prefixes {
		if path == p || strings.HasPrefix(path, strings.TrimRight(p, "/")+"/") {
			return true
		}
	}
	return false
}

// LoginURL returns the login entry point carrying next as the return path.
func (g *Guard) LoginURL(next string) string {
	if next == "" {
		return g.loginPath
	}
	return g.loginPath + "?next=" + url.QueryEscape(next)
}

// AfterLogin returns where to send a visitor who just logged in: the recorded
// intent if any, else the landing path. The intent is consumed.
func (g *Guard) AfterLogin(intent *Intent) string {
	if p, ok := intent.Consume(); ok {
		return p
	}
	return g.landingPath
}

// Middleware enforces the guard on protected paths. While the session is
// loading a neutral placeholder is served instead of the view.
func (g *Guard) Middleware(lookup VisitorLookup) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !g.Protected(r.URL.Path) {
				next(w, r)
				return
			}

			v, err := lookup(r)
			if err != nil {
				log.Err(err).Str("path", r.URL.Path).Msg("guard: visitor lookup failed")
				http.Error(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
				return
			}

			switch Decide(v.Session()) {
			case Loading:
				w.Header().Set("Retry-After", "1")
				w.Header().Set("Cache-Control", "no-store")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusAccepted)
				_, _ = w.Write([]byte(`{"view":"loading"}`))
			case Unauthenticated:
				if r.Method != http.MethodGet && r.Method != http.MethodHead {
					http.Redirect(w, r, g.loginPath, http.StatusSeeOther)
					return
				}
				target := r.URL.RequestURI()
				v.Intent().Record(target)
				http.Redirect(w, r, g.LoginURL(target), http.StatusSeeOther)
			case Authenticated:
				next(w, r)
			}
		}
	}
}
