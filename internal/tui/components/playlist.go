package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/crate/internal/core"
	"github.com/tessro/crate/internal/tui/styles"
)

// Playlist displays a playlist's songs, numbered from 1.
type Playlist struct {
	offset int
	marked int
}

// NewPlaylist creates a new Playlist component
func NewPlaylist() *Playlist {
	return &Playlist{}
}

// Mark highlights the song at a 1-based position. Zero clears the mark.
func (p *Playlist) Mark(position int) {
	p.marked = position
}

// ScrollDown scrolls the list down
func (p *Playlist) ScrollDown() {
	p.offset++
}

// ScrollUp scrolls the list up
func (p *Playlist) ScrollUp() {
	if p.offset > 0 {
		p.offset--
	}
}

// Render renders the playlist panel
func (p *Playlist) Render(pl *core.Playlist, width, height int) string {
	name := "Playlist"
	if pl != nil {
		name = fmt.Sprintf("%s (%d/%d)", pl.Name(), pl.Len(), pl.Cap())
	}
	title := styles.PanelTitle(name, true)

	var content string
	if pl == nil || pl.IsEmpty() {
		content = styles.Muted.Render("Playlist is empty")
	} else {
		content = p.renderSongs(pl.Songs(), width-4, height-4)
	}

	return styles.Panel(false).Width(width).Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (p *Playlist) renderSongs(songs []core.Song, width, maxLines int) string {
	if p.offset >= len(songs) {
		p.offset = 0
	}

	// Leave room for the "more" indicator
	visibleCount := max(maxLines-1, 1)
	start := p.offset
	end := min(start+visibleCount, len(songs))

	lines := make([]string, 0, end-start+1)

	// "XX. " (4) + "▶ " or "  " (2) + " — " (3)
	const overhead = 9

	for i := start; i < end; i++ {
		song := songs[i]
		num := fmt.Sprintf("%2d.", i+1)
		title, artist := fitPair(song.Title, song.Artist, width-overhead)

		var line string
		if i+1 == p.marked {
			line = styles.Playing.Render(fmt.Sprintf("%s ▶ %s — %s", num, title, artist))
		} else {
			line = fmt.Sprintf("%s   %s — %s",
				styles.Dim.Render(num),
				title,
				styles.Muted.Render(artist))
		}
		lines = append(lines, line)
	}

	if end < len(songs) {
		lines = append(lines, styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(songs)-end)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
