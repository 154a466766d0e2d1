package wizard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/crate/internal/core"
)

// PlaylistModel is the bubbletea model for the playlist picker.
type PlaylistModel struct {
	playlists []core.Summary
	cursor    int
	selected  int
	width     int
	height    int
}

// Styles for playlist picker
var (
	playlistTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	playlistItemStyle = lipgloss.NewStyle().
				PaddingLeft(2)

	playlistSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Background(lipgloss.Color("237"))

	playlistCurrentStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82"))

	playlistOtherStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243"))
)

// NewPlaylistModel creates a playlist picker with the cursor on the
// current playlist.
func NewPlaylistModel(playlists []core.Summary) PlaylistModel {
	m := PlaylistModel{
		playlists: playlists,
		width:     80,
		height:    20,
	}
	for i, p := range playlists {
		if p.Current {
			m.cursor = i
		}
	}
	return m
}

// Init initializes the model.
func (m PlaylistModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m PlaylistModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit

		case "enter", " ":
			if m.cursor < len(m.playlists) {
				m.selected = m.cursor + 1
				return m, tea.Quit
			}

		case "up", "k", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j", "ctrl+n":
			if m.cursor < len(m.playlists)-1 {
				m.cursor++
			}

		case "home", "g":
			m.cursor = 0

		case "end", "G":
			m.cursor = max(len(m.playlists)-1, 0)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View renders the model.
func (m PlaylistModel) View() string {
	var b strings.Builder

	b.WriteString(playlistTitleStyle.Render("🎶 Select Playlist"))
	b.WriteString("\n\n")

	if len(m.playlists) == 0 {
		b.WriteString(playlistOtherStyle.Render("No playlists yet"))
		b.WriteString("\n\n")
		b.WriteString(playlistOtherStyle.Render("Create one with: crate playlist create <name>"))
	} else {
		for i, p := range m.playlists {
			var line strings.Builder

			if p.Current {
				line.WriteString(playlistCurrentStyle.Render("● "))
			} else {
				line.WriteString(playlistOtherStyle.Render("○ "))
			}
			line.WriteString(p.Name)
			line.WriteString(" " + playlistOtherStyle.Render(fmt.Sprintf("(%d songs)", p.Songs)))

			if i == m.cursor {
				b.WriteString(playlistSelectedStyle.Render("▸ " + line.String()))
			} else {
				b.WriteString(playlistItemStyle.Render("  " + line.String()))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(playlistOtherStyle.Render("↑/↓ navigate • enter select • esc quit"))
	b.WriteString("\n")
	b.WriteString(playlistOtherStyle.Render("● current  ○ other"))

	return b.String()
}

// Selected returns the 1-based index of the chosen playlist, or 0 if none.
func (m PlaylistModel) Selected() int {
	return m.selected
}

// RunPlaylistPicker runs the playlist picker and returns the chosen
// 1-based index, or 0 if cancelled.
func RunPlaylistPicker(playlists []core.Summary) (int, error) {
	model := NewPlaylistModel(playlists)
	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return 0, err
	}
	return finalModel.(PlaylistModel).Selected(), nil
}
