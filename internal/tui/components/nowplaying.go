package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/crate/internal/core"
	"github.com/tessro/crate/internal/tui/styles"
)

// DefaultProgressWidth is the bar width used when none is configured.
const DefaultProgressWidth = 40

// NowPlaying displays the song being played
type NowPlaying struct {
	barWidth int
}

// NewNowPlaying creates a NowPlaying component with a progress bar of
// barWidth cells.
func NewNowPlaying(barWidth int) *NowPlaying {
	if barWidth <= 0 {
		barWidth = DefaultProgressWidth
	}
	return &NowPlaying{barWidth: barWidth}
}

// Render renders the now playing panel
func (n *NowPlaying) Render(state *core.PlaybackState, width int) string {
	title := styles.PanelTitle("Now Playing", true)

	var content string
	if !state.HasSong() {
		content = styles.Muted.Render("Nothing playing")
	} else {
		content = n.renderSong(state)
	}

	return styles.Panel(true).Width(width).Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		content,
	))
}

func (n *NowPlaying) renderSong(state *core.PlaybackState) string {
	song := state.Song
	icon := styles.StatusIcon(!state.Paused)

	lines := []string{icon + " " + styles.Title.Render(song.Title)}
	if song.Artist != "" {
		lines = append(lines, "  "+styles.Subtitle.Render(song.Artist))
	}
	if song.Path != "" {
		lines = append(lines, "  "+styles.Dim.Render(song.Path))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Progress renders "[mm:ss] ===>   [mm:ss]" with a "(Paused)" suffix
// while paused.
func (n *NowPlaying) Progress(state *core.PlaybackState) string {
	var elapsed, total string
	var percent float64
	paused := false
	if state != nil {
		elapsed = formatDuration(state.Elapsed)
		total = formatDuration(state.Total)
		percent = state.ProgressPercent()
		paused = state.Paused
	} else {
		elapsed, total = formatDuration(0), formatDuration(0)
	}

	line := fmt.Sprintf("[%s] %s [%s]", elapsed, styles.ProgressBar(percent, n.barWidth), total)
	if paused {
		line += " " + styles.Paused.Render("(Paused)")
	}
	return line
}
