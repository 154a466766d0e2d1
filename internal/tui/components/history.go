package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tessro/crate/internal/core"
	"github.com/tessro/crate/internal/tui/styles"
)

// History displays recently played songs, most recent first.
type History struct {
	now func() time.Time
}

// NewHistory creates a new History component
func NewHistory() *History {
	return &History{now: time.Now}
}

// SetClock replaces the reference time for relative timestamps.
func (h *History) SetClock(now func() time.Time) {
	h.now = now
}

// Render renders the history panel
func (h *History) Render(entries []core.HistoryEntry, width int) string {
	title := styles.PanelTitle("History", true)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("No history yet")
	} else {
		content = h.Lines(entries, width-4)
	}

	return styles.Panel(false).Width(width).Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		content,
	))
}

// Lines renders one numbered line per entry, fitted to width.
func (h *History) Lines(entries []core.HistoryEntry, width int) string {
	lines := make([]string, 0, len(entries))

	// "NN. " (4) + " — " (3) + gap before time (1)
	const overhead = 8

	for i, entry := range entries {
		ago := humanize.RelTime(entry.PlayedAt, h.now(), "ago", "from now")
		if entry.PlayedAt.IsZero() {
			ago = ""
		}

		available := width - overhead - len(ago)
		title, artist := fitPair(entry.Title, entry.Artist, available)

		info := title
		if artist != "" {
			info = fmt.Sprintf("%s — %s", title, styles.Muted.Render(artist))
		}
		used := lipgloss.Width(title)
		if artist != "" {
			used += 3 + lipgloss.Width(artist)
		}
		padding := max(width-4-used-len(ago), 1)

		lines = append(lines, fmt.Sprintf("%s %s%s%s",
			styles.Dim.Render(fmt.Sprintf("%2d.", i+1)),
			info,
			lipgloss.NewStyle().Width(padding).Render(""),
			styles.Dim.Render(ago)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
