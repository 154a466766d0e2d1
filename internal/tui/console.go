// Package tui renders playback sessions and library views in the terminal.
package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/tessro/crate/internal/playback"
	"github.com/tessro/crate/internal/tui/components"
	"github.com/tessro/crate/internal/tui/styles"
)

const controlsHint = "[SPACE] Pause/Resume | [ENTER] Stop | [n] Next | [p] Previous"

// eraseLine clears from the cursor to the end of the line.
const eraseLine = "\x1b[K"

// Console prints playback events as lines and keeps a progress line
// updated in place. It implements playback.Observer.
type Console struct {
	mu         sync.Mutex
	out        io.Writer
	formatter  *playback.Formatter
	nowPlaying *components.NowPlaying
	newline    string
	onProgress bool
}

// NewConsole creates a console writing to out.
func NewConsole(out io.Writer, formatter *playback.Formatter, nowPlaying *components.NowPlaying) *Console {
	if formatter == nil {
		formatter = playback.NewFormatter()
	}
	if nowPlaying == nil {
		nowPlaying = components.NewNowPlaying(0)
	}
	return &Console{
		out:        out,
		formatter:  formatter,
		nowPlaying: nowPlaying,
		newline:    "\n",
	}
}

// SetRawMode makes line breaks carriage-return too, which a terminal in
// raw mode does not do on its own.
func (c *Console) SetRawMode(raw bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if raw {
		c.newline = "\r\n"
	} else {
		c.newline = "\n"
	}
}

// OnEvent renders one event.
func (c *Console) OnEvent(e playback.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e.Type {
	case playback.EventProgress:
		fmt.Fprintf(c.out, "\r%s%s", c.nowPlaying.Progress(&e.Playback), eraseLine)
		c.onProgress = true
		return
	case playback.EventPause, playback.EventResume:
		// The progress line shows the paused state.
		return
	}

	if c.onProgress {
		io.WriteString(c.out, c.newline)
		c.onProgress = false
	}

	line := c.formatter.Format(e)
	switch e.Type {
	case playback.EventTrackError:
		line = styles.Failure.Render(line)
	case playback.EventTrackStart:
		line = c.newline + styles.Title.Render(line) + c.newline + styles.Dim.Render(controlsHint)
	case playback.EventSessionEnd:
		line = styles.Notice.Render(line)
	}
	c.println(line)
}

func (c *Console) println(s string) {
	s = strings.ReplaceAll(s, "\n", c.newline)
	if c.newline == "\r\n" {
		// Undo doubling where the text already carried \r\n.
		s = strings.ReplaceAll(s, "\r\r\n", "\r\n")
	}
	io.WriteString(c.out, s+c.newline)
}
