package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	emoji := true
	return &Config{
		Library: LibraryConfig{
			Dir:          defaultLibraryDir(),
			MaxPlaylists: 10,
			MaxSongs:     100,
			HistorySize:  20,
		},
		Playback: PlaybackConfig{
			PollInterval: 200,
			ErrorDelay:   2500,
			Emoji:        &emoji,
		},
		TUI: TUIConfig{
			Theme:         "auto",
			ProgressWidth: 40,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Library
	if c.Library.Dir == "" {
		c.Library.Dir = d.Library.Dir
	}
	if c.Library.MaxPlaylists == 0 {
		c.Library.MaxPlaylists = d.Library.MaxPlaylists
	}
	if c.Library.MaxSongs == 0 {
		c.Library.MaxSongs = d.Library.MaxSongs
	}
	if c.Library.HistorySize == 0 {
		c.Library.HistorySize = d.Library.HistorySize
	}

	// Playback
	if c.Playback.PollInterval == 0 {
		c.Playback.PollInterval = d.Playback.PollInterval
	}
	if c.Playback.ErrorDelay == 0 {
		c.Playback.ErrorDelay = d.Playback.ErrorDelay
	}
	if c.Playback.Emoji == nil {
		c.Playback.Emoji = d.Playback.Emoji
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.ProgressWidth == 0 {
		c.TUI.ProgressWidth = d.TUI.ProgressWidth
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// PollEvery returns the playback poll interval.
func (c *PlaybackConfig) PollEvery() time.Duration {
	return time.Duration(c.PollInterval) * time.Millisecond
}

// ErrorPause returns how long to wait after a track fails to open.
func (c *PlaybackConfig) ErrorPause() time.Duration {
	return time.Duration(c.ErrorDelay) * time.Millisecond
}

// EmojiEnabled reports whether event lines carry emoji.
func (c *PlaybackConfig) EmojiEnabled() bool {
	return c.Emoji == nil || *c.Emoji
}

// defaultLibraryDir returns $XDG_DATA_HOME/crate, falling back to ~/.local/share/crate.
func defaultLibraryDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "crate")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "crate"
	}
	return filepath.Join(home, ".local", "share", "crate")
}
