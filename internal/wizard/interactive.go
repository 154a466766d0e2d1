package wizard

import (
	"os"

	"golang.org/x/term"

	"github.com/tessro/crate/internal/core"
)

// Interactive provides interactive fallback functionality.
type Interactive struct {
	enabled    bool
	searchFunc SearchFunc
	playlist   string
	playlists  []core.Summary
}

// NewInteractive creates a new interactive handler.
func NewInteractive() *Interactive {
	return &Interactive{
		enabled: true,
	}
}

// SetEnabled enables or disables interactive mode.
func (i *Interactive) SetEnabled(enabled bool) {
	i.enabled = enabled
}

// SetSearchFunc sets the search function and playlist name for the song picker.
func (i *Interactive) SetSearchFunc(playlist string, fn SearchFunc) {
	i.playlist = playlist
	i.searchFunc = fn
}

// SetPlaylists sets the choices for the playlist picker.
func (i *Interactive) SetPlaylists(playlists []core.Summary) {
	i.playlists = playlists
}

// IsTerminal returns true if stdin and stdout are both terminals.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// CanInteract returns true if interactive mode is available.
func (i *Interactive) CanInteract() bool {
	return i.enabled && IsTerminal()
}

// PromptSong launches the song picker if interactive mode is available.
// Returns the selected song, or nil if cancelled or not interactive.
func (i *Interactive) PromptSong() (*SearchResult, error) {
	if !i.CanInteract() || i.searchFunc == nil {
		return nil, nil
	}
	return RunSongSearch(i.playlist, i.searchFunc)
}

// PromptPlaylist launches the playlist picker if interactive mode is
// available. Returns the chosen 1-based index, or 0 if cancelled or not
// interactive.
func (i *Interactive) PromptPlaylist() (int, error) {
	if !i.CanInteract() || len(i.playlists) == 0 {
		return 0, nil
	}
	return RunPlaylistPicker(i.playlists)
}

// NeedsArg returns true if a positional argument is required but missing.
func NeedsArg(args []string) bool {
	return len(args) == 0
}
