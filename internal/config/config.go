package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.craterc, $XDG_CONFIG_HOME/crate/config.toml, ~/.config/crate/config.toml
func Load() (*Config, error) {
	cfg := &Config{}

	path := FindConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultPath returns where `crate config init` writes a new config file.
func DefaultPath() (string, error) {
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		xdgConfig = filepath.Join(home, ".config")
	}
	return filepath.Join(xdgConfig, "crate", "config.toml"), nil
}

// FindConfigFile returns the first existing config file path.
func FindConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, ".craterc"),
	}
	if p, err := DefaultPath(); err == nil {
		paths = append(paths, p)
	}
	paths = append(paths, filepath.Join(home, ".config", "crate", "config.toml"))

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Library
	if v := os.Getenv("CRATE_LIBRARY_DIR"); v != "" {
		cfg.Library.Dir = v
	}
	if v := os.Getenv("CRATE_MAX_PLAYLISTS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Library.MaxPlaylists = i
		}
	}
	if v := os.Getenv("CRATE_MAX_SONGS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Library.MaxSongs = i
		}
	}

	// Playback
	if v := os.Getenv("CRATE_POLL_INTERVAL"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Playback.PollInterval = i
		}
	}

	// TUI
	if v := os.Getenv("CRATE_TUI_THEME"); v != "" {
		cfg.TUI.Theme = v
	}

	// Log
	if v := os.Getenv("CRATE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CRATE_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
