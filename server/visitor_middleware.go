package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-learning-portal/guard"
	perrors "github.com/jrsteele09/go-learning-portal/internal/errors"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyVisitor stores the *Visitor of the request
const ContextKeyVisitor ContextKey = "visitor"

// VisitorMiddleware resolves the visitor for the request's cookie, creating
// one (and issuing the cookie) on the first visit.
func (s *Server) VisitorMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := s.visitorFor(w, r)
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to resolve visitor")
			writeError(w, http.StatusInternalServerError, msgSomethingWentWrong)
			return
		}
		v.touch(time.Now())
		next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyVisitor, v)))
	}
}

func (s *Server) visitorFor(w http.ResponseWriter, r *http.Request) (*Visitor, error) {
	id, hasCookie := s.cookies.Read(r)
	if hasCookie {
		if v, err := s.visitors.Get(id); err == nil {
			return v, nil
		}
		// Known browser whose state was pruned: keep its id so the theme
		// preference survives.
	} else {
		id = uuid.New().String()
	}

	api, err := s.newBackend()
	if err != nil {
		return nil, perrors.Wrapf(err, "backend for visitor %s", id)
	}
	v, err := newVisitor(r.Context(), id, visitorDeps{
		api:            api,
		prefs:          s.prefs,
		requestTimeout: s.config.GetRequestTimeout(),
		logger:         s.logger,
	})
	if err != nil {
		return nil, err
	}
	actual, loaded, err := s.visitors.LoadOrStore(v)
	if err != nil {
		return nil, err
	}
	if !loaded {
		actual.startProbe(s.config.GetProbeTimeout())
		s.logger.Debug().Str("visitor", id).Msg("new visitor")
	}
	if !hasCookie {
		if err := s.cookies.Write(w, r, id); err != nil {
			return nil, err
		}
	}
	return actual, nil
}

func visitorFromContext(ctx context.Context) (*Visitor, bool) {
	v, ok := ctx.Value(ContextKeyVisitor).(*Visitor)
	return v, ok && v != nil
}

func lookupVisitor(r *http.Request) (guard.Visitor, error) {
	v, ok := visitorFromContext(r.Context())
	if !ok {
		return nil, perrors.Wrapf(perrors.ErrInternal, "no visitor on request")
	}
	return v, nil
}
