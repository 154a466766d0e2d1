package config

import (
	"errors"
	"fmt"
	"text/template"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Library.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("library: %w", err))
	}
	if err := c.Playback.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("playback: %w", err))
	}
	if err := c.TUI.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tui: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks LibraryConfig for errors.
func (c *LibraryConfig) Validate() error {
	if c.MaxPlaylists < 0 {
		return errors.New("max_playlists must be non-negative")
	}
	if c.MaxSongs < 0 {
		return errors.New("max_songs must be non-negative")
	}
	if c.HistorySize < 0 {
		return errors.New("history_size must be non-negative")
	}
	return nil
}

// Validate checks PlaybackConfig for errors.
func (c *PlaybackConfig) Validate() error {
	if c.PollInterval < 0 {
		return errors.New("poll_interval must be non-negative")
	}
	if c.ErrorDelay < 0 {
		return errors.New("error_delay must be non-negative")
	}
	if c.Format != "" {
		if _, err := template.New("format").Parse(c.Format); err != nil {
			return fmt.Errorf("invalid format template: %w", err)
		}
	}
	return nil
}

// Validate checks TUIConfig for errors.
func (c *TUIConfig) Validate() error {
	switch c.Theme {
	case "", "auto", "dark", "light":
		// valid
	default:
		return fmt.Errorf("invalid theme: %s (must be auto, dark, or light)", c.Theme)
	}
	if c.ProgressWidth < 0 {
		return errors.New("progress_width must be non-negative")
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	return nil
}
