package library

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessro/crate/internal/core"
	crateerrors "github.com/tessro/crate/internal/errors"
)

func newTestLibrary(t *testing.T, limits core.Limits) (*Library, string) {
	t.Helper()
	dir := t.TempDir()
	return New(dir, limits, zerolog.Nop()), dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestLoadAllMissingIndex(t *testing.T) {
	lib, _ := newTestLibrary(t, core.Limits{})

	result, err := lib.LoadAll()
	require.NoError(t, err)
	assert.False(t, result.HasErrors())
	assert.Equal(t, 0, result.Data.Len())
	assert.Equal(t, 0, result.Data.CurrentIndex())
}

func TestLoadAllReadsPlaylists(t *testing.T) {
	lib, dir := newTestLibrary(t, core.Limits{})
	writeFile(t, dir, IndexFile, "Rock\r\nJazz\r\n")
	writeFile(t, dir, "Rock.txt", "Song A\r\nArtist A\r\n/a.mp3\r\nSong B\r\nArtist B\r\n/b.mp3\r\n")
	writeFile(t, dir, "Jazz.txt", "So What\nMiles Davis\n/so-what.mp3\n")

	result, err := lib.LoadAll()
	require.NoError(t, err)
	assert.False(t, result.HasErrors(), result.ErrorSummary())

	reg := result.Data
	require.Equal(t, 2, reg.Len())
	assert.Equal(t, 1, reg.CurrentIndex())

	rock, err := reg.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Rock", rock.Name())
	assert.Equal(t, []core.Song{
		{Title: "Song A", Artist: "Artist A", Path: "/a.mp3"},
		{Title: "Song B", Artist: "Artist B", Path: "/b.mp3"},
	}, rock.Songs())

	jazz, err := reg.Get(2)
	require.NoError(t, err)
	assert.Equal(t, 1, jazz.Len())
}

func TestLoadAllIgnoresIncompleteTrailingRecord(t *testing.T) {
	lib, dir := newTestLibrary(t, core.Limits{})
	writeFile(t, dir, IndexFile, "Mix\n")
	writeFile(t, dir, "Mix.txt", "One\nArtist\n/one.mp3\nTwo\nArtist\n")

	result, err := lib.LoadAll()
	require.NoError(t, err)
	p, _ := result.Data.Current()
	assert.Equal(t, 1, p.Len())
}

func TestLoadAllMissingPlaylistFileKeepsEmptyPlaylist(t *testing.T) {
	lib, dir := newTestLibrary(t, core.Limits{})
	writeFile(t, dir, IndexFile, "Ghost\nReal\n")
	writeFile(t, dir, "Real.txt", "x\ny\nz\n")

	result, err := lib.LoadAll()
	require.NoError(t, err)
	require.True(t, result.HasErrors())
	assert.ErrorIs(t, result.Errors[0], crateerrors.ErrPersistence)

	require.Equal(t, 2, result.Data.Len())
	ghost, _ := result.Data.Get(1)
	assert.Equal(t, 0, ghost.Len())
	loaded, _ := result.Data.Get(2)
	assert.Equal(t, 1, loaded.Len())
}

func TestLoadAllStopsAtPlaylistLimit(t *testing.T) {
	lib, dir := newTestLibrary(t, core.Limits{MaxPlaylists: 2})
	writeFile(t, dir, IndexFile, "a\nb\nc\nd\n")
	for _, n := range []string{"a", "b", "c", "d"} {
		writeFile(t, dir, n+".txt", "")
	}

	result, err := lib.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, 2, result.Data.Len())
	require.Len(t, result.Errors, 1)
	assert.ErrorIs(t, result.Errors[0], crateerrors.ErrCapacityExceeded)
}

func TestLoadAllSkipsInvalidAndDuplicateNames(t *testing.T) {
	lib, dir := newTestLibrary(t, core.Limits{})
	writeFile(t, dir, IndexFile, "Good\n\nbad/name\ngood\nplaylists\n")
	writeFile(t, dir, "Good.txt", "")

	result, err := lib.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Data.Len())
	require.Len(t, result.Errors, 3)
	assert.ErrorIs(t, result.Errors[0], crateerrors.ErrInvalidName)
	assert.ErrorIs(t, result.Errors[1], crateerrors.ErrDuplicateName)
	assert.ErrorIs(t, result.Errors[2], crateerrors.ErrInvalidName)
}

func TestLoadAllTruncatesAtSongLimit(t *testing.T) {
	lib, dir := newTestLibrary(t, core.Limits{MaxSongs: 1})
	writeFile(t, dir, IndexFile, "Mix\n")
	writeFile(t, dir, "Mix.txt", "a\nx\n/a\nb\nx\n/b\nc\nx\n/c\n")

	result, err := lib.LoadAll()
	require.NoError(t, err)
	p, _ := result.Data.Current()
	assert.Equal(t, 1, p.Len())
	require.Len(t, result.Errors, 1)
	assert.ErrorIs(t, result.Errors[0], crateerrors.ErrPlaylistFull)
}

func TestSaveAllWritesLayout(t *testing.T) {
	lib, dir := newTestLibrary(t, core.Limits{})
	reg := lib.NewRegistry()
	rock, err := reg.Create("Rock")
	require.NoError(t, err)
	require.NoError(t, rock.Append(core.Song{Title: "Song A", Artist: "Artist A", Path: "/a.mp3"}))
	_, err = reg.Create("Empty")
	require.NoError(t, err)

	result, err := lib.SaveAll(reg)
	require.NoError(t, err)
	assert.False(t, result.HasErrors())
	assert.Equal(t, 2, result.Data)

	assert.Equal(t, "Rock\nEmpty\n", readFile(t, dir, IndexFile))
	assert.Equal(t, "Song A\nArtist A\n/a.mp3\n", readFile(t, dir, "Rock.txt"))
	assert.Equal(t, "", readFile(t, dir, "Empty.txt"))
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	lib, _ := newTestLibrary(t, core.Limits{})
	reg := lib.NewRegistry()
	for _, name := range []string{"One", "Two", "Three"} {
		p, err := reg.Create(name)
		require.NoError(t, err)
		require.NoError(t, p.Append(core.Song{Title: name + " song", Artist: "Band", Path: "/music/" + name + ".mp3"}))
		require.NoError(t, p.Append(core.Song{Title: "Untitled", Artist: "", Path: ""}))
	}

	_, err := lib.SaveAll(reg)
	require.NoError(t, err)

	result, err := lib.LoadAll()
	require.NoError(t, err)
	require.False(t, result.HasErrors(), result.ErrorSummary())

	assert.Equal(t, reg.List()[0].Name, result.Data.List()[0].Name)
	for i, p := range reg.All() {
		loaded, err := result.Data.Get(i)
		require.NoError(t, err)
		assert.Equal(t, p.Name(), loaded.Name())
		assert.Equal(t, p.Songs(), loaded.Songs())
	}
}

func TestSaveAllCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "crate")
	lib := New(dir, core.Limits{}, zerolog.Nop())

	_, err := lib.SaveAll(lib.NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, "", readFile(t, dir, IndexFile))
}

func TestSaveAllIndexFailure(t *testing.T) {
	lib, dir := newTestLibrary(t, core.Limits{})
	// A directory where the index file should be makes the write fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, IndexFile), 0o755))

	_, err := lib.SaveAll(lib.NewRegistry())
	assert.ErrorIs(t, err, crateerrors.ErrPersistence)
}

func TestDeletePlaylistRemovesFile(t *testing.T) {
	lib, dir := newTestLibrary(t, core.Limits{})
	reg := lib.NewRegistry()
	_, _ = reg.Create("Keep")
	_, _ = reg.Create("Drop")
	_, err := lib.SaveAll(reg)
	require.NoError(t, err)

	removed, err := lib.DeletePlaylist(reg, 2)
	require.NoError(t, err)
	assert.Equal(t, "Drop", removed.Name())
	assert.NoFileExists(t, filepath.Join(dir, "Drop.txt"))
	assert.FileExists(t, filepath.Join(dir, "Keep.txt"))

	// A playlist that was never saved has no file to remove.
	assert.NoError(t, lib.DeleteBackingFile(core.NewPlaylist("Never", 1)))

	_, err = lib.DeletePlaylist(reg, 5)
	assert.ErrorIs(t, err, crateerrors.ErrIndexOutOfRange)
}

func TestNewRegistryReservesIndexName(t *testing.T) {
	lib, _ := newTestLibrary(t, core.Limits{})
	_, err := lib.NewRegistry().Create("playlists")
	assert.ErrorIs(t, err, crateerrors.ErrInvalidName)
}

func TestStateRoundTrip(t *testing.T) {
	lib, _ := newTestLibrary(t, core.Limits{})
	reg := lib.NewRegistry()
	_, _ = reg.Create("A")
	_, _ = reg.Create("B")
	require.NoError(t, reg.SwitchTo(2))

	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	history := core.NewHistory(5)
	history.SetClock(func() time.Time { return at })
	history.Record(core.Song{Title: "first", Artist: "x", Path: "/1"})
	history.Record(core.Song{Title: "second", Artist: "y", Path: "/2"})

	require.NoError(t, lib.SaveState(reg, history))

	fresh := lib.NewRegistry()
	_, _ = fresh.Create("A")
	_, _ = fresh.Create("B")
	require.NoError(t, fresh.SwitchTo(1))
	restored := core.NewHistory(5)

	require.NoError(t, lib.LoadState(fresh, restored))
	assert.Equal(t, 2, fresh.CurrentIndex())

	entries := restored.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Title)
	assert.Equal(t, "y", entries[0].Artist)
	assert.True(t, at.Equal(entries[0].PlayedAt))
	assert.Equal(t, "first", entries[1].Title)
}

func TestLoadStateUnknownPlaylistSelectsFirst(t *testing.T) {
	lib, _ := newTestLibrary(t, core.Limits{})
	reg := lib.NewRegistry()
	_, _ = reg.Create("Gone")
	require.NoError(t, lib.SaveState(reg, core.NewHistory(2)))

	fresh := lib.NewRegistry()
	_, _ = fresh.Create("X")
	_, _ = fresh.Create("Y")
	require.NoError(t, lib.LoadState(fresh, core.NewHistory(2)))
	assert.Equal(t, 1, fresh.CurrentIndex())
}

func TestLoadStateMissing(t *testing.T) {
	lib, _ := newTestLibrary(t, core.Limits{})
	reg := lib.NewRegistry()
	_, _ = reg.Create("A")
	_, _ = reg.Create("B")
	history := core.NewHistory(2)
	history.Record(core.Song{Title: "kept"})

	require.NoError(t, lib.LoadState(reg, history))
	assert.Equal(t, 2, reg.CurrentIndex())
	assert.Equal(t, 1, history.Len())
}

func TestLoadStateCorrupt(t *testing.T) {
	lib, dir := newTestLibrary(t, core.Limits{})
	writeFile(t, dir, StateFile, "current = [\n")
	err := lib.LoadState(lib.NewRegistry(), core.NewHistory(2))
	assert.ErrorIs(t, err, crateerrors.ErrPersistence)
}

func TestSaveStateWriteFailure(t *testing.T) {
	lib, dir := newTestLibrary(t, core.Limits{})
	require.NoError(t, os.Mkdir(filepath.Join(dir, StateFile), 0o755))

	err := lib.SaveState(lib.NewRegistry(), core.NewHistory(2))
	assert.ErrorIs(t, err, crateerrors.ErrPersistence)
}

func TestSaveAllLongestName(t *testing.T) {
	lib, _ := newTestLibrary(t, core.Limits{})
	reg := lib.NewRegistry()
	name := strings.Repeat("n", core.MaxNameLength)
	_, err := reg.Create(name)
	require.NoError(t, err)

	result, err := lib.SaveAll(reg)
	require.NoError(t, err)
	require.False(t, result.HasErrors(), result.ErrorSummary())

	loaded, err := lib.LoadAll()
	require.NoError(t, err)
	require.False(t, loaded.HasErrors(), loaded.ErrorSummary())
	assert.Equal(t, name, loaded.Data.List()[0].Name)
}
