package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessro/crate/internal/config"
	"github.com/tessro/crate/internal/core"
	"github.com/tessro/crate/internal/device"
	crateerrors "github.com/tessro/crate/internal/errors"
	"github.com/tessro/crate/internal/playback"
	"github.com/tessro/crate/internal/wizard"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := config.Default()
	c.Library.Dir = t.TempDir()
	c.Log.Level = "error"
	return c
}

func openTestApp(t *testing.T, c *config.Config) *app {
	t.Helper()
	a, err := openApp(c)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"1", 1, true},
		{" 12 ", 12, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"two", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parsePosition(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "/music/...", TruncateString("/music/library/a.mp3", 10))
	assert.Equal(t, "ab", TruncateString("abcdef", 2))
	assert.Equal(t, "héllo", TruncateString("héllo", 5))
}

func TestTableRendersHeadersAndRows(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableWriter(&buf, "#", "Name")
	tbl.Row("1", "Favorites")
	tbl.Row("2", "Road Trip")
	tbl.Flush()

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Favorites")
	assert.Contains(t, out, "Road Trip")
	assert.Less(t, strings.Index(out, "Favorites"), strings.Index(out, "Road Trip"))
}

func TestSetConfigValue(t *testing.T) {
	var base bytes.Buffer
	require.NoError(t, encodeConfig(&base, config.Default()))

	t.Run("integer", func(t *testing.T) {
		out, err := setConfigValue(base.Bytes(), "library.max_songs", "250")
		require.NoError(t, err)

		var c config.Config
		_, err = toml.Decode(string(out), &c)
		require.NoError(t, err)
		assert.Equal(t, 250, c.Library.MaxSongs)
		assert.Equal(t, 10, c.Library.MaxPlaylists)
		assert.True(t, strings.HasPrefix(string(out), "# Crate Configuration"))
	})

	t.Run("boolean", func(t *testing.T) {
		out, err := setConfigValue(base.Bytes(), "playback.emoji", "false")
		require.NoError(t, err)

		var c config.Config
		_, err = toml.Decode(string(out), &c)
		require.NoError(t, err)
		require.NotNil(t, c.Playback.Emoji)
		assert.False(t, *c.Playback.Emoji)
	})

	t.Run("new section", func(t *testing.T) {
		out, err := setConfigValue(nil, "tui.theme", "dark")
		require.NoError(t, err)
		assert.Contains(t, string(out), `theme = "dark"`)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := setConfigValue(base.Bytes(), "audio.device", "x")
		assert.ErrorIs(t, err, crateerrors.ErrInvalidConfig)
		assert.Contains(t, crateerrors.GetSuggestion(err), "library.max_songs")
	})

	t.Run("bad integer", func(t *testing.T) {
		_, err := setConfigValue(base.Bytes(), "library.max_songs", "lots")
		assert.Error(t, err)
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := setConfigValue(base.Bytes(), "tui.theme", "neon")
		assert.ErrorIs(t, err, crateerrors.ErrInvalidConfig)
	})
}

func TestAppSaveAndReopen(t *testing.T) {
	c := testConfig(t)

	a := openTestApp(t, c)
	_, err := a.reg.Create("Favorites")
	require.NoError(t, err)
	p, err := a.reg.Create("Road Trip")
	require.NoError(t, err)
	require.NoError(t, addSong(p, core.Song{Title: "Intro", Artist: "The xx", Path: "/m/intro.mp3"}))
	a.history.Record(core.Song{Title: "Intro", Artist: "The xx", Path: "/m/intro.mp3"})
	require.NoError(t, a.save())

	b := openTestApp(t, c)
	assert.Equal(t, 2, b.reg.Len())
	cur, err := b.current()
	require.NoError(t, err)
	assert.Equal(t, "Road Trip", cur.Name())
	assert.Equal(t, 1, cur.Len())
	require.Equal(t, 1, b.history.Len())
	assert.Equal(t, "Intro", b.history.Entries()[0].Title)
}

func TestAppPlaylistResolution(t *testing.T) {
	a := openTestApp(t, testConfig(t))

	_, err := a.current()
	assert.ErrorIs(t, err, crateerrors.ErrNoPlaylistSelected)

	_, err = a.reg.Create("Favorites")
	require.NoError(t, err)
	_, err = a.reg.Create("Chill")
	require.NoError(t, err)

	i, p, err := a.playlist("")
	require.NoError(t, err)
	assert.Equal(t, 2, i)
	assert.Equal(t, "Chill", p.Name())

	i, p, err = a.playlist("1")
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.Equal(t, "Favorites", p.Name())

	i, p, err = a.playlist("favorites")
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.Equal(t, "Favorites", p.Name())

	_, _, err = a.playlist("3")
	assert.ErrorIs(t, err, crateerrors.ErrIndexOutOfRange)

	_, _, err = a.playlist("Missing")
	assert.ErrorIs(t, err, crateerrors.ErrPlaylistNotFound)
}

func TestAddSongRequiresAllFields(t *testing.T) {
	p := core.NewPlaylist("Favorites", 10)

	for _, s := range []core.Song{
		{Artist: "A", Path: "/a.mp3"},
		{Title: "T", Path: "/a.mp3"},
		{Title: "T", Artist: "A"},
	} {
		err := addSong(p, s)
		assert.ErrorIs(t, err, crateerrors.ErrInvalidSong)
	}
	assert.Equal(t, 0, p.Len())

	require.NoError(t, addSong(p, core.Song{Title: "T", Artist: "A", Path: "/a.mp3"}))
	assert.Equal(t, 1, p.Len())
}

func TestSearchFuncScopes(t *testing.T) {
	p := core.NewPlaylist("Mix", 10)
	require.NoError(t, p.Append(core.Song{Title: "Karma Police", Artist: "Radiohead", Path: "/1.mp3"}))
	require.NoError(t, p.Append(core.Song{Title: "Creep", Artist: "Radiohead", Path: "/2.mp3"}))
	require.NoError(t, p.Append(core.Song{Title: "Radio Ga Ga", Artist: "Queen", Path: "/3.mp3"}))

	search := searchFunc(p)

	titles, err := search("RADIO", wizard.SearchTitles)
	require.NoError(t, err)
	assert.Equal(t, []wizard.SearchResult{{Title: "Radio Ga Ga", Artist: "Queen"}}, titles)

	both, err := search("radio", wizard.SearchTitlesAndArtists)
	require.NoError(t, err)
	assert.Len(t, both, 3)

	none, err := search("jazz", wizard.SearchTitlesAndArtists)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCheckPlayable(t *testing.T) {
	p := core.NewPlaylist("Mix", 10)
	assert.Error(t, checkPlayable(p, 1))

	require.NoError(t, p.Append(core.Song{Title: "A", Artist: "B", Path: "/a.mp3"}))
	assert.NoError(t, checkPlayable(p, 1))
	assert.ErrorIs(t, checkPlayable(p, 2), crateerrors.ErrIndexOutOfRange)
}

func TestWriteSongTable(t *testing.T) {
	p := core.NewPlaylist("Mix", 10)
	require.NoError(t, p.Append(core.Song{Title: "First", Artist: "One", Path: "/1.mp3"}))
	require.NoError(t, p.Append(core.Song{Title: "Second", Artist: "Two", Path: "/2.mp3"}))

	var buf bytes.Buffer
	writeSongTable(&buf, p)

	out := buf.String()
	assert.Less(t, strings.Index(out, "First"), strings.Index(out, "Second"))
	assert.Contains(t, out, "Mix: 2 of 10 songs")
}

func TestWritePlaylistTableMarksCurrent(t *testing.T) {
	reg := core.NewRegistry(core.Limits{MaxPlaylists: 5, MaxSongs: 10})
	_, err := reg.Create("Favorites")
	require.NoError(t, err)
	_, err = reg.Create("Chill")
	require.NoError(t, err)

	var buf bytes.Buffer
	writePlaylistTable(&buf, reg)

	out := buf.String()
	lines := strings.Split(out, "\n")
	var chill string
	for _, l := range lines {
		if strings.Contains(l, "Chill") {
			chill = l
		}
	}
	assert.Contains(t, chill, StatusIcon(true))
	assert.Contains(t, out, "2 of 5 playlists")
}

func TestJSONObserver(t *testing.T) {
	var buf bytes.Buffer
	o := newJSONObserver(&buf)

	song := &core.Song{Title: "Intro", Artist: "The xx", Path: "/m/intro.mp3"}
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	o.OnEvent(playback.Event{Type: playback.EventTrackStart, Session: "s1", Timestamp: at, Track: 1, Tracks: 3,
		Playback: core.PlaybackState{Song: song, Total: 2 * time.Minute}})
	o.OnEvent(playback.Event{Type: playback.EventProgress, Timestamp: at})
	o.OnEvent(playback.Event{Type: playback.EventTrackError, Timestamp: at, Err: errors.New("boom"),
		Playback: core.PlaybackState{Song: song}})
	o.OnEvent(playback.Event{Type: playback.EventSessionEnd, Timestamp: at, Result: playback.ResultStopped})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var start jsonEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &start))
	assert.Equal(t, "track_start", start.Type)
	assert.Equal(t, "Intro", start.Title)
	assert.Equal(t, int64(120000), start.LengthMS)
	assert.Equal(t, 3, start.Tracks)

	var failed jsonEvent
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &failed))
	assert.Equal(t, "boom", failed.Error)

	var end jsonEvent
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &end))
	assert.Equal(t, "session_end", end.Type)
	assert.Equal(t, playback.ResultStopped.String(), end.Result)
}

func TestCurrentVersion(t *testing.T) {
	info := currentVersion()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, device.AudioAvailable, info.Audio)
	assert.Contains(t, info.Platform, "/")

	out, err := json.Marshal(info)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"build_date"`)
}

// instantDevice opens handles that report completion on the first poll.
type instantDevice struct {
	opened []string
}

func (d *instantDevice) Open(path string) (device.Handle, error) {
	d.opened = append(d.opened, path)
	return instantHandle{}, nil
}

type instantHandle struct{}

func (instantHandle) Play() error             { return nil }
func (instantHandle) Pause() error            { return nil }
func (instantHandle) Resume() error           { return nil }
func (instantHandle) Position() time.Duration { return time.Second }
func (instantHandle) Length() time.Duration   { return time.Second }
func (instantHandle) Close() error            { return nil }

func fourSongs(t *testing.T) *core.Playlist {
	t.Helper()
	p := core.NewPlaylist("Mix", 10)
	for _, title := range []string{"One", "Two", "Three", "Four"} {
		require.NoError(t, p.Append(core.Song{Title: title, Artist: "Band", Path: "/" + title + ".mp3"}))
	}
	return p
}

func TestPlayFromRunContinuesToEnd(t *testing.T) {
	p := fourSongs(t)

	run, err := playFromRun(p, 2)
	require.NoError(t, err)

	dev := &instantDevice{}
	hist := core.NewHistory(10)
	nav := playback.New(dev, nil, playback.WithPollInterval(time.Millisecond), playback.WithHistory(hist))

	result, err := run(context.Background(), nav)
	require.NoError(t, err)
	assert.Equal(t, playback.ResultExhausted, result)
	assert.Equal(t, []string{"/Two.mp3", "/Three.mp3", "/Four.mp3"}, dev.opened)
	require.Equal(t, 3, hist.Len())
	assert.Equal(t, "Four", hist.Entries()[0].Title)
}

func TestPlayFromRunRejectsBadStart(t *testing.T) {
	p := fourSongs(t)

	_, err := playFromRun(p, 5)
	assert.ErrorIs(t, err, crateerrors.ErrIndexOutOfRange)
	_, err = playFromRun(core.NewPlaylist("Empty", 10), 1)
	assert.Error(t, err)
}

func TestShuffleRunPlaysEverySong(t *testing.T) {
	p := fourSongs(t)

	run, err := shuffleRun(p)
	require.NoError(t, err)

	dev := &instantDevice{}
	nav := playback.New(dev, nil, playback.WithPollInterval(time.Millisecond))
	result, err := run(context.Background(), nav)
	require.NoError(t, err)
	assert.Equal(t, playback.ResultExhausted, result)
	assert.ElementsMatch(t, []string{"/One.mp3", "/Two.mp3", "/Three.mp3", "/Four.mp3"}, dev.opened)
}
