package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-learning-portal/internal/config"
	"github.com/stretchr/testify/require"
)

func TestGetPort_PrefixesColon(t *testing.T) {
	t.Setenv("PORT", "9090")
	require.Equal(t, ":9090", config.New().GetPort())

	t.Setenv("PORT", ":7070")
	require.Equal(t, ":7070", config.New().GetPort())
}

func TestGetBackendURL_TrimsTrailingSlash(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://api.example.com/")
	require.Equal(t, "https://api.example.com", config.New().GetBackendURL())
}

func TestGetDuration_FallsBackOnBadValue(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "not-a-duration")
	require.Equal(t, 15*time.Second, config.New().GetRequestTimeout())

	t.Setenv("REQUEST_TIMEOUT", "3s")
	require.Equal(t, 3*time.Second, config.New().GetRequestTimeout())
}

func TestParseAllowedOrigins(t *testing.T) {
	origins := config.ParseAllowedOrigins(" https://a.example.com, ,https://b.example.com")
	require.True(t, origins.IsAllowedOrigin("https://a.example.com"))
	require.True(t, origins.IsAllowedOrigin("https://b.example.com"))
	require.Len(t, origins, 2)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte("APP_NAME=From DotEnv\n"), 0o600))

	t.Setenv("APP_NAME", "restored-after-test")
	require.NoError(t, os.Unsetenv("APP_NAME"))

	require.NoError(t, config.LoadDotEnv("TEST"))
	require.Equal(t, "From DotEnv", config.New().GetAppName())

	// A missing file is not an error.
	require.NoError(t, config.LoadDotEnv("PROD"))
}
