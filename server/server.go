package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-learning-portal/backend"
	"github.com/jrsteele09/go-learning-portal/guard"
	"github.com/jrsteele09/go-learning-portal/internal/config"
	"github.com/jrsteele09/go-learning-portal/uistate"
)

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	guard      *guard.Guard
	cookies    *VisitorCookies
	visitors   VisitorRepo
	prefs      uistate.PreferenceStore
	newBackend BackendFactory
	logger     zerolog.Logger
}

// Option defines a function type to modify the Server instance.
type Option func(*Server)

// WithBackendFactory replaces the HTTP backend used for new visitors.
func WithBackendFactory(f BackendFactory) Option {
	return func(s *Server) {
		s.newBackend = f
	}
}

// WithPreferenceStore sets where theme preferences are persisted.
func WithPreferenceStore(p uistate.PreferenceStore) Option {
	return func(s *Server) {
		s.prefs = p
	}
}

func WithVisitorRepo(r VisitorRepo) Option {
	return func(s *Server) {
		s.visitors = r
	}
}

func New(cfg config.Config, options ...Option) (*Server, error) {
	cookies, err := NewVisitorCookies(cfg.GetCookieSecret(), cfg.GetVisitorCookieMaxAge())
	if err != nil {
		return nil, errors.Wrap(err, "[Server New]")
	}

	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		guard:    guard.New(cfg.GetLoginPath(), cfg.GetLandingPath(), cfg.GetProtectedPrefixes()...),
		cookies:  cookies,
		visitors: NewInMemoryVisitorRepo(),
		prefs:    uistate.NewMemoryPreferenceStore(),
		logger:   log.With().Str("component", "server").Logger(),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.newBackend == nil {
		if s.newBackend, err = httpBackendFactory(cfg.GetBackendURL()); err != nil {
			return nil, errors.Wrap(err, "[Server New]")
		}
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func httpBackendFactory(baseURL string) (BackendFactory, error) {
	// Fail at startup rather than on the first visitor.
	if _, err := backend.New(baseURL); err != nil {
		return nil, err
	}
	logger := log.With().Str("component", "backend").Logger()
	return func() (Backend, error) {
		c, err := backend.New(baseURL, backend.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return c, nil
	}, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// PruneVisitors drops visitors idle since before now minus the idle timeout.
func (s *Server) PruneVisitors(now time.Time) int {
	pruned := s.visitors.Prune(now.Add(-s.config.GetVisitorIdleTimeout()))
	for _, v := range pruned {
		v.unmount()
	}
	if len(pruned) > 0 {
		s.logger.Debug().Int("pruned", len(pruned)).Int("remaining", s.visitors.Len()).Msg("pruned idle visitors")
	}
	return len(pruned)
}

// RunPruner prunes idle visitors every interval until ctx is done.
func (s *Server) RunPruner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.PruneVisitors(now)
		}
	}
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Debug().Msgf("[%s%s%s] %s", color, fmt.Sprintf(" %-7s", method), ResetColor, path)
}
