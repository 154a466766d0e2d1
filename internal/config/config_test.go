package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[library]
dir = "/tmp/music"
max_songs = 50

[playback]
poll_interval = 100
emoji = false
`), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/music", cfg.Library.Dir)
	assert.Equal(t, 50, cfg.Library.MaxSongs)
	assert.Equal(t, 10, cfg.Library.MaxPlaylists)
	assert.Equal(t, 20, cfg.Library.HistorySize)
	assert.Equal(t, 100*time.Millisecond, cfg.Playback.PollEvery())
	assert.Equal(t, 2500*time.Millisecond, cfg.Playback.ErrorPause())
	assert.False(t, cfg.Playback.EmojiEnabled())
	assert.Equal(t, "auto", cfg.TUI.Theme)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[library\n"), 0o644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CRATE_LIBRARY_DIR", "/env/dir")
	t.Setenv("CRATE_MAX_PLAYLISTS", "3")
	t.Setenv("CRATE_LOG_LEVEL", "debug")
	t.Setenv("CRATE_POLL_INTERVAL", "not-a-number")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "/env/dir", cfg.Library.Dir)
	assert.Equal(t, 3, cfg.Library.MaxPlaylists)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 200, cfg.Playback.PollInterval)
}

func TestDefaultLibraryDirUsesXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	assert.Equal(t, filepath.Join("/xdg/data", "crate"), Default().Library.Dir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"negative songs", func(c *Config) { c.Library.MaxSongs = -1 }, "library: max_songs must be non-negative"},
		{"negative poll", func(c *Config) { c.Playback.PollInterval = -5 }, "playback: poll_interval must be non-negative"},
		{"bad template", func(c *Config) { c.Playback.Format = "{{.Title" }, "playback: invalid format template"},
		{"bad theme", func(c *Config) { c.TUI.Theme = "neon" }, "tui: invalid theme: neon"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log: invalid log level: loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
