package server

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-learning-portal/content"
	"github.com/jrsteele09/go-learning-portal/guard"
	perrors "github.com/jrsteele09/go-learning-portal/internal/errors"
	"github.com/jrsteele09/go-learning-portal/media"
	"github.com/jrsteele09/go-learning-portal/session"
	"github.com/jrsteele09/go-learning-portal/uistate"
)

// Backend is everything a visitor needs from the REST backend.
type Backend interface {
	session.AuthAPI
	content.SecureViewAPI
}

// BackendFactory returns a backend connection for a new visitor. Each
// visitor gets its own so backend cookies are never shared.
type BackendFactory func() (Backend, error)

var _ guard.Visitor = (*Visitor)(nil)

// Visitor is the state of one browser context.
type Visitor struct {
	ID      string
	store   *session.Store
	intent  *guard.Intent
	gateway *content.Gateway
	layout  *uistate.LayoutStore
	theme   *uistate.ThemeStore
	logger  zerolog.Logger

	mu           sync.Mutex
	presenter    media.Presenter
	presenterRef content.Ref
	lastSeen     time.Time
}

type visitorDeps struct {
	api            Backend
	prefs          uistate.PreferenceStore
	requestTimeout time.Duration
	logger         zerolog.Logger
}

func newVisitor(ctx context.Context, id string, deps visitorDeps) (*Visitor, error) {
	logger := deps.logger.With().Str("visitor", id).Logger()
	store, err := session.NewStore(deps.api, session.WithLogger(logger.With().Str("component", "session").Logger()))
	if err != nil {
		return nil, perrors.Wrapf(err, "visitor %s", id)
	}
	gateway, err := content.NewGateway(deps.api,
		content.WithTimeout(deps.requestTimeout),
		content.WithLogger(logger.With().Str("component", "content").Logger()),
	)
	if err != nil {
		return nil, perrors.Wrapf(err, "visitor %s", id)
	}

	v := &Visitor{
		ID:       id,
		store:    store,
		intent:   &guard.Intent{},
		gateway:  gateway,
		layout:   uistate.NewLayoutStore(),
		theme:    uistate.NewThemeStore(ctx, deps.prefs, id),
		logger:   logger,
		lastSeen: time.Now(),
	}

	// Everything tied to the session goes when it does. The theme stays.
	store.OnReset(gateway)
	store.OnReset(session.ResetFunc(v.closePresenter))
	store.OnReset(v.intent)
	store.OnReset(v.layout)

	store.Subscribe(func(s session.Session) {
		e := v.logger.Debug().Bool("loading", s.Loading).Bool("authenticated", s.Authenticated())
		if s.User != nil {
			e = e.Str("user_id", s.User.ID)
		}
		e.Msg("session changed")
	})
	return v, nil
}

func (v *Visitor) Session() session.Session { return v.store.Snapshot() }
func (v *Visitor) Intent() *guard.Intent     { return v.intent }

// startProbe resolves the initial session in the background. Until it
// settles the guard serves the loading placeholder.
func (v *Visitor) startProbe(timeout time.Duration) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		v.store.Probe(ctx)
	}()
}

func (v *Visitor) touch(now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if now.After(v.lastSeen) {
		v.lastSeen = now
	}
}

func (v *Visitor) LastSeen() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastSeen
}

// present returns the presenter for desc, reusing the open one when it
// already shows the same descriptor for ref. desc must still be what the
// gateway holds for ref and the session must still be live; a logout or
// unmount since desc was resolved leaves nothing installed.
func (v *Visitor) present(ref content.Ref, desc content.AccessDescriptor, opts media.Options) (media.Presenter, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.store.Snapshot().Authenticated() {
		return nil, perrors.Wrapf(perrors.ErrNoSession, "present %s", ref)
	}
	cur := v.gateway.View()
	held, ok := cur.State.Value()
	if !cur.Bound || cur.Ref != ref || !ok || held != desc {
		return nil, perrors.Wrapf(perrors.ErrSuperseded, "present %s", ref)
	}
	if v.presenter != nil && v.presenterRef == ref && v.presenter.Descriptor() == desc {
		return v.presenter, nil
	}
	p, err := media.New(desc, opts)
	if err != nil {
		return nil, err
	}
	if v.presenter != nil {
		v.presenter.Close()
	}
	v.presenter, v.presenterRef = p, ref
	return p, nil
}

// presenterFor returns the open presenter if it belongs to ref.
func (v *Visitor) presenterFor(ref content.Ref) (media.Presenter, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.presenter == nil || v.presenterRef != ref {
		return nil, false
	}
	return v.presenter, true
}

func (v *Visitor) closePresenter() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.presenter != nil {
		v.presenter.Close()
	}
	v.presenter, v.presenterRef = nil, content.Ref{}
}

// unmount leaves the current content view. The gateway is reset first since
// present checks it before installing.
func (v *Visitor) unmount() {
	v.gateway.Reset()
	v.closePresenter()
}
