package config

// Config is the root configuration structure.
type Config struct {
	Library  LibraryConfig  `toml:"library"`
	Playback PlaybackConfig `toml:"playback"`
	TUI      TUIConfig      `toml:"tui"`
	Log      LogConfig      `toml:"log"`
}

// LibraryConfig holds playlist storage settings.
type LibraryConfig struct {
	Dir          string `toml:"dir"`
	MaxPlaylists int    `toml:"max_playlists"`
	MaxSongs     int    `toml:"max_songs"`
	HistorySize  int    `toml:"history_size"`
}

// PlaybackConfig holds settings for interactive playback sessions.
type PlaybackConfig struct {
	PollInterval int    `toml:"poll_interval"` // milliseconds
	ErrorDelay   int    `toml:"error_delay"`   // milliseconds
	Emoji        *bool  `toml:"emoji"`
	Timestamps   bool   `toml:"timestamps"`
	Format       string `toml:"format"`
}

// TUIConfig holds terminal rendering settings.
type TUIConfig struct {
	Theme         string `toml:"theme"`
	ProgressWidth int    `toml:"progress_width"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
