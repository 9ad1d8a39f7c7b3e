// Package uistate holds per-visitor presentation state: the persisted theme
// preference and the transient layout flags.
package uistate

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	perrors "github.com/jrsteele09/go-learning-portal/internal/errors"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t, nil
	}
	return "", perrors.Wrapf(perrors.ErrInvalidInput, "theme %q", s)
}

// Effective resolves ThemeSystem against the browser's colour-scheme hint.
func (t Theme) Effective(prefersDark bool) Theme {
	if t != ThemeSystem {
		return t
	}
	if prefersDark {
		return ThemeDark
	}
	return ThemeLight
}

// ThemeStore is the visitor's theme preference. It is not reset on logout.
type ThemeStore struct {
	mu     sync.RWMutex
	key    string
	theme  Theme
	prefs  PreferenceStore
	logger zerolog.Logger
}

// NewThemeStore loads the persisted preference for key. A missing or
// unreadable preference falls back to ThemeSystem.
func NewThemeStore(ctx context.Context, prefs PreferenceStore, key string) *ThemeStore {
	s := &ThemeStore{
		key:    key,
		theme:  ThemeSystem,
		prefs:  prefs,
		logger: log.With().Str("component", "theme").Logger(),
	}
	t, ok, err := prefs.GetTheme(ctx, key)
	switch {
	case err != nil:
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to load theme preference")
	case ok:
		s.theme = t
	}
	return s
}

func (s *ThemeStore) Theme() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetTheme changes and persists the preference. The in-memory value changes
// even when persisting fails.
func (s *ThemeStore) SetTheme(ctx context.Context, t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	s.mu.Lock()
	s.theme = t
	s.mu.Unlock()

	if err := s.prefs.SetTheme(ctx, s.key, t); err != nil {
		s.logger.Error().Err(err).Str("key", s.key).Msg("failed to persist theme preference")
		return perrors.Wrapf(err, "persist theme")
	}
	return nil
}

// Toggle flips between light and dark. System is treated as light.
func (s *ThemeStore) Toggle(ctx context.Context) (Theme, error) {
	next := ThemeDark
	if s.Theme() == ThemeDark {
		next = ThemeLight
	}
	return next, s.SetTheme(ctx, next)
}
