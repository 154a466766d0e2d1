package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/crate/internal/core"
	"github.com/tessro/crate/internal/playback"
	"github.com/tessro/crate/internal/tui/components"
	"github.com/tessro/crate/internal/tui/styles"
)

// KeyQueue is a playback.KeySource fed from the dashboard's key handler.
type KeyQueue struct {
	ch chan rune
}

// NewKeyQueue creates an empty queue.
func NewKeyQueue() *KeyQueue {
	return &KeyQueue{ch: make(chan rune, 16)}
}

// Push queues r for the navigator. It reports false when the queue is full.
func (q *KeyQueue) Push(r rune) bool {
	select {
	case q.ch <- r:
		return true
	default:
		return false
	}
}

// KeyAvailable reports whether ReadKey would return without blocking.
// The navigator is the only reader.
func (q *KeyQueue) KeyAvailable() bool {
	return len(q.ch) > 0
}

// ReadKey returns the next queued key.
func (q *KeyQueue) ReadKey() (rune, error) {
	return <-q.ch, nil
}

// Options configures the dashboard.
type Options struct {
	ProgressWidth int
	HistorySize   int
	Formatter     *playback.Formatter
}

// SessionFunc runs a playback session that reports to obs and reads
// controls from keys.
type SessionFunc func(ctx context.Context, obs playback.Observer, keys playback.KeySource) (playback.Result, error)

type eventMsg playback.Event

type sessionDoneMsg struct {
	result playback.Result
	err    error
}

// Model is the playback dashboard.
type Model struct {
	width  int
	height int

	playlist  *core.Playlist
	keys      *KeyQueue
	state     core.PlaybackState
	track     int
	tracks    int
	recent    []core.HistoryEntry
	maxRecent int

	nowPlaying   *components.NowPlaying
	playlistView *components.Playlist
	historyView  *components.History
	formatter    *playback.Formatter

	status    string
	lastError error

	showHelp bool
	done     bool
	result   playback.Result
	err      error
	quitting bool
}

// NewModel creates a dashboard over pl. recent seeds the history panel,
// most recent first.
func NewModel(pl *core.Playlist, recent []core.HistoryEntry, keys *KeyQueue, opts Options) Model {
	if opts.Formatter == nil {
		opts.Formatter = playback.NewFormatter(playback.WithEmoji(false))
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = core.DefaultHistorySize
	}
	return Model{
		playlist:     pl,
		keys:         keys,
		recent:       recent,
		maxRecent:    opts.HistorySize,
		nowPlaying:   components.NewNowPlaying(opts.ProgressWidth),
		playlistView: components.NewPlaylist(),
		historyView:  components.NewHistory(),
		formatter:    opts.Formatter,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case eventMsg:
		m.handleEvent(playback.Event(msg))
		return m, nil

	case sessionDoneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		if m.quitting {
			return m, tea.Quit
		}
		m.status = m.formatter.Format(playback.Event{Type: playback.EventSessionEnd, Result: msg.result}) + ". Press q to quit."
		return m, nil
	}
	return m, nil
}

func (m *Model) handleEvent(e playback.Event) {
	m.state = e.Playback
	switch e.Type {
	case playback.EventProgress, playback.EventPause, playback.EventResume:
		return
	case playback.EventTrackStart:
		m.track, m.tracks = e.Track, e.Tracks
		m.lastError = nil
		if e.Playback.HasSong() {
			m.addToHistory(*e.Playback.Song, e.Timestamp)
			if _, pos, err := m.playlist.FindByTitle(e.Playback.Song.Title); err == nil {
				m.playlistView.Mark(pos)
			}
		}
	case playback.EventTrackError:
		m.lastError = e.Err
	case playback.EventSessionEnd:
		m.state = core.PlaybackState{}
		m.playlistView.Mark(0)
	}
	m.status = m.formatter.Format(e)
}

func (m *Model) addToHistory(song core.Song, at time.Time) {
	entry := core.HistoryEntry{
		Title:    song.Title,
		Artist:   song.Artist,
		Path:     song.Path,
		PlayedAt: at,
	}
	m.recent = append([]core.HistoryEntry{entry}, m.recent...)
	if len(m.recent) > m.maxRecent {
		m.recent = m.recent[:m.maxRecent]
	}
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if m.done {
			m.quitting = true
			return m, tea.Quit
		}
		m.quitting = true
		m.keys.Push('\r')
		return m, nil
	}

	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	switch msg.String() {
	case "?":
		m.showHelp = true
		return m, nil
	case "j", "down":
		m.playlistView.ScrollDown()
		return m, nil
	case "k", "up":
		m.playlistView.ScrollUp()
		return m, nil
	}

	if m.done {
		return m, nil
	}

	switch msg.String() {
	case " ":
		m.keys.Push(' ')
	case "enter":
		m.keys.Push('\r')
	case "n":
		m.keys.Push('n')
	case "p":
		m.keys.Push('p')
	}
	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.quitting && m.done {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth
	topHeight := 7
	bottomHeight := max(m.height-topHeight-2, 5)

	nowPlaying := m.renderNowPlaying(leftWidth - 2)
	playlistView := m.playlistView.Render(m.playlist, leftWidth-2, bottomHeight-2)
	historyView := m.historyView.Render(m.recent, rightWidth-2)

	leftCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, playlistView)
	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, historyView)

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) renderNowPlaying(width int) string {
	panel := m.nowPlaying.Render(&m.state, width)
	if !m.state.HasSong() {
		return panel
	}
	progress := m.nowPlaying.Progress(&m.state)
	if m.tracks > 0 {
		progress += styles.Dim.Render(fmt.Sprintf("  %d/%d", m.track, m.tracks))
	}
	return lipgloss.JoinVertical(lipgloss.Left, panel, " "+progress)
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:quit  ?:help  space:pause/resume  enter:stop  n:next  p:prev  j/k:scroll")

	switch {
	case m.lastError != nil:
		status = styles.Failure.Render(m.status)
	case m.status != "":
		status = styles.Notice.Render(m.status) + "   " + status
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "Crate - Keyboard Shortcuts"

	help := `
  ` + title + `

  Playback
    Space        Pause/Resume
    Enter        Stop
    n            Next song
    p            Previous song

  Playlist
    j/↓          Scroll down
    k/↑          Scroll up

  q, Ctrl+C    Stop and quit
  ?            Toggle help

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

// Run shows the dashboard while session plays pl. It returns when the
// session has ended and the user has quit.
func Run(ctx context.Context, pl *core.Playlist, recent []core.HistoryEntry, opts Options, session SessionFunc) (playback.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keys := NewKeyQueue()
	var p *tea.Program
	obs := playback.ObserverFunc(func(e playback.Event) {
		p.Send(eventMsg(e))
	})
	p = tea.NewProgram(NewModel(pl, recent, keys, opts), tea.WithAltScreen())

	done := make(chan sessionDoneMsg, 1)
	go func() {
		result, err := session(ctx, obs, keys)
		msg := sessionDoneMsg{result: result, err: err}
		done <- msg
		p.Send(msg)
	}()

	_, runErr := p.Run()
	cancel()
	msg := <-done

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return msg.result, runErr
	}
	return msg.result, msg.err
}
