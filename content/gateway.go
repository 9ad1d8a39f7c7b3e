package content

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/go-learning-portal/async"
	perrors "github.com/jrsteele09/go-learning-portal/internal/errors"
	"github.com/jrsteele09/go-learning-portal/internal/validation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTimeout = 15 * time.Second

	msgAccessFailed = "Unable to load this content. You may not have access, or the link may have expired."
	msgTimedOut     = "Loading this content took too long. Please try again later."
	msgUnsupported  = "This type of content cannot be displayed."
)

// AccessError is a failed resolution. It is terminal for its Ref.
type AccessError struct {
	Ref     Ref
	Message string
	err     error
}

func (e *AccessError) Error() string       { return "resolve " + e.Ref.String() + ": " + e.err.Error() }
func (e *AccessError) Unwrap() error       { return e.err }
func (e *AccessError) UserMessage() string { return e.Message }

// View is what a gateway currently exposes: the ref it is bound to and the
// state of that ref's descriptor.
type View struct {
	Ref   Ref
	Bound bool
	State async.State[AccessDescriptor]
}

// Gateway turns a Ref into an AccessDescriptor for one mounted view. It holds
// at most one request in flight; binding a new Ref cancels the previous
// request and guarantees its answer is never observed.
type Gateway struct {
	api     SecureViewAPI
	timeout time.Duration
	logger  zerolog.Logger

	op async.Op[AccessDescriptor]

	mu     sync.Mutex
	ref    Ref
	bound  bool
	cancel context.CancelFunc
	done   chan struct{}
}

// GatewayOption defines a function type to modify the Gateway instance.
type GatewayOption func(*Gateway)

// WithTimeout bounds each secure-view request.
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithLogger(l zerolog.Logger) GatewayOption {
	return func(g *Gateway) {
		g.logger = l
	}
}

func NewGateway(api SecureViewAPI, options ...GatewayOption) (*Gateway, error) {
	if api == nil {
		return nil, errors.New("[NewGateway] secure view api is required")
	}
	g := &Gateway{
		api:     api,
		timeout: DefaultTimeout,
		logger:  log.With().Str("component", "content").Logger(),
	}
	for _, opt := range options {
		opt(g)
	}
	return g, nil
}

// Resolve binds the gateway to ref and returns the settled state for it.
//
// A new ref discards the held descriptor, cancels any request in flight and
// issues exactly one request. Resolving the ref already bound never issues
// another request: it waits for the one in flight, or returns the settled
// result, failures included. A caller whose ref was superseded before its
// answer arrived gets ErrSuperseded.
func (g *Gateway) Resolve(ctx context.Context, ref Ref) (async.State[AccessDescriptor], error) {
	if err := validation.Struct(ref); err != nil {
		return async.State[AccessDescriptor]{}, err
	}

	g.mu.Lock()
	if g.bound && g.ref == ref {
		done := g.done
		g.mu.Unlock()
		return g.await(ctx, ref, done)
	}

	if g.cancel != nil {
		g.cancel()
	}
	ticket := g.op.Start()
	// The fetch outlives the caller's request; only supersession, Reset or
	// the timeout stop it.
	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
	done := make(chan struct{})
	g.ref, g.bound, g.cancel, g.done = ref, true, cancel, done
	g.mu.Unlock()

	g.logger.Debug().Str("ref", ref.String()).Msg("resolving secure view")
	d, err := g.api.SecureView(reqCtx, ref)
	timedOut := reqCtx.Err() == context.DeadlineExceeded
	cancel()

	var state async.State[AccessDescriptor]
	var applied bool
	if err != nil {
		accessErr := newAccessError(ref, err, timedOut)
		state = async.NewFailure[AccessDescriptor](accessErr)
		applied = g.op.Reject(ticket, accessErr)
	} else {
		state = async.NewSuccess(d)
		applied = g.op.Resolve(ticket, d)
	}
	close(done)

	if !applied {
		g.logger.Debug().Str("ref", ref.String()).Msg("discarding superseded secure view result")
		return async.State[AccessDescriptor]{}, perrors.ErrSuperseded
	}
	if err != nil {
		g.logger.Info().Err(err).Str("ref", ref.String()).Msg("secure view failed")
	}
	return state, nil
}

func (g *Gateway) await(ctx context.Context, ref Ref, done chan struct{}) (async.State[AccessDescriptor], error) {
	select {
	case <-done:
	case <-ctx.Done():
		return async.State[AccessDescriptor]{}, ctx.Err()
	}
	// A settled state for ref or nothing: the request waited on may have
	// been replaced by a newer one for the same ref.
	v := g.View()
	if !v.Bound || v.Ref != ref || !v.State.Settled() {
		return async.State[AccessDescriptor]{}, perrors.ErrSuperseded
	}
	return v.State, nil
}

// View returns the bound ref and its current state.
func (g *Gateway) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	return View{Ref: g.ref, Bound: g.bound, State: g.op.Snapshot()}
}

// Descriptor returns the held descriptor, if the bound ref resolved.
func (g *Gateway) Descriptor() (AccessDescriptor, bool) {
	return g.op.Snapshot().Value()
}

// Reset unbinds the gateway, cancels any request in flight and drops the
// held descriptor. Resolving the same ref afterwards fetches again.
func (g *Gateway) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.ref, g.bound = Ref{}, false
	g.op.Reset()
}

func newAccessError(ref Ref, err error, timedOut bool) *AccessError {
	msg := perrors.UserMessage(err, msgAccessFailed)
	switch {
	case timedOut:
		msg = msgTimedOut
	case perrors.Is(err, perrors.ErrUnsupportedContent):
		msg = msgUnsupported
	}
	return &AccessError{
		Ref:     ref,
		Message: msg,
		err:     fmt.Errorf("%w: %w", perrors.ErrContentAccessDenied, err),
	}
}
