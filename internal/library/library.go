// Package library persists playlists to a directory of line-oriented text files.
//
// Layout:
//
//	playlists.txt   one playlist name per line, in registry order
//	<name>.txt      title, artist and path lines for each song, in order
//	state.toml      current selection and play history
//
// Fields are written verbatim with no escaping, so values must not contain
// line breaks; core.Song.Validate and core.ValidateName enforce this.
package library

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tessro/crate/internal/core"
	crateerrors "github.com/tessro/crate/internal/errors"
)

const (
	// IndexFile lists playlist names in order.
	IndexFile = "playlists.txt"
	// StateFile holds the current selection and history.
	StateFile = "state.toml"
)

// Library reads and writes playlists in a directory.
type Library struct {
	dir    string
	limits core.Limits
	logger zerolog.Logger
}

// New creates a library rooted at dir.
func New(dir string, limits core.Limits, logger zerolog.Logger) *Library {
	limits.Reserved = append([]string{strings.TrimSuffix(IndexFile, core.PlaylistFileExt)}, limits.Reserved...)
	return &Library{
		dir:    dir,
		limits: limits,
		logger: logger.With().Str("component", "library").Logger(),
	}
}

// Dir returns the library directory.
func (l *Library) Dir() string {
	return l.dir
}

// NewRegistry returns an empty registry with the library's limits.
func (l *Library) NewRegistry() *core.Registry {
	return core.NewRegistry(l.limits)
}

// PlaylistPath returns the backing file path for a playlist.
func (l *Library) PlaylistPath(p *core.Playlist) string {
	return filepath.Join(l.dir, p.Filename())
}

// LoadAll reads the master index and each playlist file it names.
// A missing index yields an empty registry. Problems with individual
// playlists are logged and collected in the result; loading continues.
func (l *Library) LoadAll() (*crateerrors.PartialResult[*core.Registry], error) {
	reg := l.NewRegistry()
	result := &crateerrors.PartialResult[*core.Registry]{Data: reg}

	names, err := readLines(filepath.Join(l.dir, IndexFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Debug().Str("dir", l.dir).Msg("no playlist index, starting empty")
			return result, nil
		}
		return nil, fmt.Errorf("%w: read playlist index: %w", crateerrors.ErrPersistence, err)
	}

	for _, name := range names {
		if name == "" {
			continue
		}
		if reg.IsFull() {
			err := fmt.Errorf("%w: skipping %q and later playlists", crateerrors.ErrCapacityExceeded, name)
			l.logger.Warn().Err(err).Int("max_playlists", l.limits.MaxPlaylists).Msg("playlist index exceeds limit")
			result.AddError(err)
			break
		}

		p := core.NewPlaylist(name, l.limits.MaxSongs)
		if err := reg.Add(p); err != nil {
			l.logger.Warn().Err(err).Str("playlist", name).Msg("skipping playlist from index")
			result.AddError(err)
			continue
		}
		for _, err := range l.loadPlaylist(p) {
			l.logger.Warn().Err(err).Str("playlist", name).Msg("could not load playlist data")
			result.AddError(err)
		}
	}

	if reg.Len() > 0 {
		_ = reg.SwitchTo(1)
	}
	l.logger.Info().Int("playlists", reg.Len()).Msg("library loaded")
	return result, nil
}

// loadPlaylist appends songs from the playlist's file. It keeps whatever it
// could read and reports each problem.
func (l *Library) loadPlaylist(p *core.Playlist) []error {
	lines, err := readLines(l.PlaylistPath(p))
	if err != nil {
		return []error{fmt.Errorf("%w: playlist %q: %w", crateerrors.ErrPersistence, p.Name(), err)}
	}

	var errs []error
	// A trailing incomplete record is ignored.
	for i := 0; i+2 < len(lines); i += 3 {
		song := core.Song{Title: lines[i], Artist: lines[i+1], Path: lines[i+2]}
		if err := p.Append(song); err != nil {
			errs = append(errs, fmt.Errorf("playlist %q line %d: %w", p.Name(), i+1, err))
			if errors.Is(err, crateerrors.ErrPlaylistFull) {
				break
			}
		}
	}
	return errs
}

// SaveAll overwrites the master index and every playlist file.
// Failing to write the index is returned as an error. Playlist write
// failures are collected in the result; the remaining playlists are
// still written. The result's Data is the number of playlists written.
func (l *Library) SaveAll(reg *core.Registry) (*crateerrors.PartialResult[int], error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create library directory: %w", crateerrors.ErrPersistence, err)
	}

	var index strings.Builder
	for _, p := range reg.All() {
		index.WriteString(p.Name())
		index.WriteByte('\n')
	}
	if err := os.WriteFile(filepath.Join(l.dir, IndexFile), []byte(index.String()), 0o644); err != nil {
		return nil, fmt.Errorf("%w: write playlist index: %w", crateerrors.ErrPersistence, err)
	}

	result := &crateerrors.PartialResult[int]{}
	for _, p := range reg.All() {
		if err := l.SavePlaylist(p); err != nil {
			l.logger.Error().Err(err).Str("playlist", p.Name()).Msg("could not save playlist")
			result.AddError(err)
			continue
		}
		result.Data++
	}
	l.logger.Debug().Int("saved", result.Data).Int("failed", len(result.Errors)).Msg("library saved")
	return result, nil
}

// SavePlaylist overwrites one playlist's file.
func (l *Library) SavePlaylist(p *core.Playlist) error {
	var b strings.Builder
	for _, s := range p.All() {
		b.WriteString(s.Title)
		b.WriteByte('\n')
		b.WriteString(s.Artist)
		b.WriteByte('\n')
		b.WriteString(s.Path)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(l.PlaylistPath(p), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("%w: playlist %q: %w", crateerrors.ErrPersistence, p.Name(), err)
	}
	return nil
}

// DeleteBackingFile removes a playlist's file. A missing file is not an error.
func (l *Library) DeleteBackingFile(p *core.Playlist) error {
	err := os.Remove(l.PlaylistPath(p))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove %q: %w", crateerrors.ErrPersistence, p.Filename(), err)
	}
	return nil
}

// DeletePlaylist removes the playlist at a 1-based index from reg and
// deletes its backing file.
func (l *Library) DeletePlaylist(reg *core.Registry, index int) (*core.Playlist, error) {
	p, err := reg.Delete(index)
	if err != nil {
		return nil, err
	}
	if err := l.DeleteBackingFile(p); err != nil {
		return p, err
	}
	l.logger.Info().Str("playlist", p.Name()).Msg("playlist deleted")
	return p, nil
}

// readLines returns the lines of a file without terminators. CRLF endings
// are accepted.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
