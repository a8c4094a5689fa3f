package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Overrides{EnvFile: filepath.Join(t.TempDir(), "absent.env")})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Progress.PushInterval)
	assert.Equal(t, 5*time.Second, cfg.Progress.MinDelta)
	assert.Equal(t, 400*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 2, cfg.Search.MinQueryLength)
	assert.True(t, filepath.IsAbs(cfg.State.Dir))
	assert.Equal(t, filepath.Join(cfg.State.Dir, "mpv.sock"), cfg.Player.MpvSocket)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("API_BASE_URL", "https://books.example.com")
	t.Setenv("PROGRESS_PUSH_INTERVAL", "45s")
	t.Setenv("TELEGRAM_INIT_DATA", "query_id=abc")

	cfg, err := Load(Overrides{EnvFile: filepath.Join(t.TempDir(), "absent.env")})
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Environment)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "https://books.example.com", cfg.API.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.Progress.PushInterval)
	assert.Equal(t, "query_id=abc", cfg.Telegram.InitData)
}

func TestLoad_OverridesBeatEnv(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("STATE_DIR", "/var/lib/booksmood")

	dir := t.TempDir()
	cfg, err := Load(Overrides{
		Environment: "staging",
		StateDir:    dir,
		EnvFile:     filepath.Join(dir, "absent.env"),
	})
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.App.Environment)
	assert.Equal(t, dir, cfg.State.Dir)
}

func TestLoad_InvalidEnvironment(t *testing.T) {
	_, err := Load(Overrides{
		Environment: "sandbox",
		EnvFile:     filepath.Join(t.TempDir(), "absent.env"),
	})
	assert.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("SEARCH_DEBOUNCE", "soon")

	_, err := Load(Overrides{EnvFile: filepath.Join(t.TempDir(), "absent.env")})
	assert.Error(t, err)
}
