package uistate_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	perrors "github.com/jrsteele09/go-learning-portal/internal/errors"
	"github.com/jrsteele09/go-learning-portal/uistate"
)

type brokenPrefs struct{}

func (brokenPrefs) GetTheme(context.Context, string) (uistate.Theme, bool, error) {
	return "", false, errors.New("store down")
}

func (brokenPrefs) SetTheme(context.Context, string, uistate.Theme) error {
	return errors.New("store down")
}

func TestParseTheme(t *testing.T) {
	th, err := uistate.ParseTheme(" Dark ")
	require.NoError(t, err)
	require.Equal(t, uistate.ThemeDark, th)

	_, err = uistate.ParseTheme("sepia")
	require.ErrorIs(t, err, perrors.ErrInvalidInput)
}

func TestTheme_Effective(t *testing.T) {
	require.Equal(t, uistate.ThemeDark, uistate.ThemeSystem.Effective(true))
	require.Equal(t, uistate.ThemeLight, uistate.ThemeSystem.Effective(false))
	require.Equal(t, uistate.ThemeLight, uistate.ThemeLight.Effective(true))
}

func TestThemeStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	prefs := uistate.NewMemoryPreferenceStore()

	s := uistate.NewThemeStore(ctx, prefs, "visitor-1")
	require.Equal(t, uistate.ThemeSystem, s.Theme())
	require.NoError(t, s.SetTheme(ctx, uistate.ThemeDark))

	again := uistate.NewThemeStore(ctx, prefs, "visitor-1")
	require.Equal(t, uistate.ThemeDark, again.Theme())

	other := uistate.NewThemeStore(ctx, prefs, "visitor-2")
	require.Equal(t, uistate.ThemeSystem, other.Theme())
}

func TestThemeStore_Toggle(t *testing.T) {
	ctx := context.Background()
	s := uistate.NewThemeStore(ctx, uistate.NewMemoryPreferenceStore(), "v")

	th, err := s.Toggle(ctx)
	require.NoError(t, err)
	require.Equal(t, uistate.ThemeDark, th)
	th, err = s.Toggle(ctx)
	require.NoError(t, err)
	require.Equal(t, uistate.ThemeLight, th)
}

func TestThemeStore_RejectsUnknownTheme(t *testing.T) {
	ctx := context.Background()
	s := uistate.NewThemeStore(ctx, uistate.NewMemoryPreferenceStore(), "v")
	require.ErrorIs(t, s.SetTheme(ctx, "sepia"), perrors.ErrInvalidInput)
	require.Equal(t, uistate.ThemeSystem, s.Theme())
}

func TestThemeStore_PersistFailureKeepsInMemoryValue(t *testing.T) {
	ctx := context.Background()
	s := uistate.NewThemeStore(ctx, brokenPrefs{}, "v")
	require.Equal(t, uistate.ThemeSystem, s.Theme())

	require.Error(t, s.SetTheme(ctx, uistate.ThemeLight))
	require.Equal(t, uistate.ThemeLight, s.Theme())
}

func TestLayoutStore(t *testing.T) {
	s := uistate.NewLayoutStore()
	require.Equal(t, uistate.Layout{}, s.Snapshot())

	require.True(t, s.ToggleSidebar().SidebarCollapsed)
	require.True(t, s.SetMobileMenuOpen(true).MobileMenuOpen)
	require.False(t, s.ToggleMobileMenu().MobileMenuOpen)
	s.SetMobileMenuOpen(true)

	s.Reset()
	require.Equal(t, uistate.Layout{}, s.Snapshot())
}

func TestRedisPreferenceStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := uistate.DialRedis(ctx, addr, os.Getenv("REDIS_PASSWORD"))
	require.NoError(t, err)
	defer client.Close()

	prefs := uistate.NewRedisPreferenceStore(client)
	key := uuid.NewString()

	_, ok, err := prefs.GetTheme(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, prefs.SetTheme(ctx, key, uistate.ThemeDark))
	th, ok, err := prefs.GetTheme(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uistate.ThemeDark, th)
	require.NoError(t, client.Del(ctx, "portal:theme:"+key).Err())
}
