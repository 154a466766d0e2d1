package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessro/crate/internal/core"
	"github.com/tessro/crate/internal/playback"
)

func testPlaylist(t *testing.T) *core.Playlist {
	t.Helper()
	p := core.NewPlaylist("Mix", 10)
	require.NoError(t, p.Append(core.Song{Title: "First", Artist: "One", Path: "/1.mp3"}))
	require.NoError(t, p.Append(core.Song{Title: "Second", Artist: "Two", Path: "/2.mp3"}))
	return p
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func drain(q *KeyQueue) []rune {
	var out []rune
	for q.KeyAvailable() {
		r, _ := q.ReadKey()
		out = append(out, r)
	}
	return out
}

func TestKeyQueue(t *testing.T) {
	q := NewKeyQueue()
	assert.False(t, q.KeyAvailable())

	assert.True(t, q.Push('n'))
	assert.True(t, q.KeyAvailable())

	r, err := q.ReadKey()
	require.NoError(t, err)
	assert.Equal(t, 'n', r)
	assert.False(t, q.KeyAvailable())

	for range 16 {
		q.Push(' ')
	}
	assert.False(t, q.Push('p'))
}

func TestModelForwardsControls(t *testing.T) {
	keys := NewKeyQueue()
	var m tea.Model = NewModel(testPlaylist(t), nil, keys, Options{})

	for _, k := range []string{" ", "n", "p", "enter", "x"} {
		m, _ = m.Update(key(k))
	}

	assert.Equal(t, []rune{' ', 'n', 'p', '\r'}, drain(keys))
}

func TestModelQuitStopsSessionFirst(t *testing.T) {
	keys := NewKeyQueue()
	var m tea.Model = NewModel(testPlaylist(t), nil, keys, Options{})

	m, cmd := m.Update(key("q"))
	assert.Nil(t, cmd)
	assert.Equal(t, []rune{'\r'}, drain(keys))

	m, cmd = m.Update(sessionDoneMsg{result: playback.ResultStopped})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	model := m.(Model)
	assert.True(t, model.done)
	assert.Equal(t, playback.ResultStopped, model.result)
}

func TestModelStaysOpenAfterSessionEnds(t *testing.T) {
	keys := NewKeyQueue()
	var m tea.Model = NewModel(testPlaylist(t), nil, keys, Options{})

	m, cmd := m.Update(sessionDoneMsg{result: playback.ResultExhausted})
	assert.Nil(t, cmd)
	assert.Contains(t, m.(Model).status, "End of playlist")

	m, _ = m.Update(key("n"))
	assert.Empty(t, drain(keys))

	_, cmd = m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelTracksEvents(t *testing.T) {
	pl := testPlaylist(t)
	seed := []core.HistoryEntry{{Title: "Old", Artist: "Someone"}}
	var m tea.Model = NewModel(pl, seed, NewKeyQueue(), Options{HistorySize: 2})

	second := &core.Song{Title: "Second", Artist: "Two", Path: "/2.mp3"}
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	m, _ = m.Update(eventMsg(playback.Event{
		Type: playback.EventTrackStart, Timestamp: at, Track: 1, Tracks: 2,
		Playback: core.PlaybackState{Song: second, Total: time.Minute},
	}))
	model := m.(Model)
	assert.Equal(t, "Second", model.state.Song.Title)
	require.Len(t, model.recent, 2)
	assert.Equal(t, "Second", model.recent[0].Title)
	assert.Equal(t, at, model.recent[0].PlayedAt)
	assert.Contains(t, model.status, "Now playing (1/2)")

	m, _ = m.Update(eventMsg(playback.Event{
		Type:     playback.EventProgress,
		Playback: core.PlaybackState{Song: second, Elapsed: 30 * time.Second, Total: time.Minute},
	}))
	model = m.(Model)
	assert.Equal(t, 30*time.Second, model.state.Elapsed)
	assert.Contains(t, model.status, "Now playing", "progress keeps the status line")

	m, _ = m.Update(eventMsg(playback.Event{
		Type: playback.EventTrackError, Err: errors.New("decode failed"),
		Playback: core.PlaybackState{Song: second},
	}))
	model = m.(Model)
	assert.Error(t, model.lastError)
	assert.Contains(t, model.status, "decode failed")

	m, _ = m.Update(eventMsg(playback.Event{Type: playback.EventSessionEnd}))
	model = m.(Model)
	assert.False(t, model.state.HasSong())
}

func TestModelView(t *testing.T) {
	var m tea.Model = NewModel(testPlaylist(t), nil, NewKeyQueue(), Options{})
	assert.Equal(t, "Loading...", m.View())

	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	view := m.View()
	assert.Contains(t, view, "Now Playing")
	assert.Contains(t, view, "First")
	assert.Contains(t, view, "History")

	m, _ = m.Update(key("?"))
	assert.Contains(t, m.View(), "Keyboard Shortcuts")
}
