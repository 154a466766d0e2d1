package core

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	crateerrors "github.com/tessro/crate/internal/errors"
)

// DefaultMaxSongs is the song capacity used when none is configured.
const DefaultMaxSongs = 100

// PlaylistFileExt is appended to a playlist name to form its backing file.
const PlaylistFileExt = ".txt"

// Playlist is an ordered, bounded collection of songs. Order is both the
// insertion order and the playback order.
type Playlist struct {
	name     string
	songs    []Song
	capacity int
}

// NewPlaylist creates an empty playlist. The name is not validated here;
// use Registry.Create for user-supplied names.
func NewPlaylist(name string, capacity int) *Playlist {
	if capacity <= 0 {
		capacity = DefaultMaxSongs
	}
	return &Playlist{
		name:     name,
		songs:    make([]Song, 0),
		capacity: capacity,
	}
}

// Name returns the playlist name.
func (p *Playlist) Name() string {
	return p.name
}

// Filename returns the name of the playlist's backing file.
func (p *Playlist) Filename() string {
	return p.name + PlaylistFileExt
}

// Len returns the number of songs.
func (p *Playlist) Len() int {
	if p == nil {
		return 0
	}
	return len(p.songs)
}

// Cap returns the maximum number of songs.
func (p *Playlist) Cap() int {
	return p.capacity
}

// IsFull returns true if no more songs can be appended.
func (p *Playlist) IsFull() bool {
	return len(p.songs) >= p.capacity
}

// IsEmpty returns true if the playlist has no songs.
func (p *Playlist) IsEmpty() bool {
	return p.Len() == 0
}

// Append adds a song at the tail.
func (p *Playlist) Append(song Song) error {
	if err := song.Validate(); err != nil {
		return err
	}
	if p.IsFull() {
		return fmt.Errorf("%w: %q holds at most %d songs", crateerrors.ErrPlaylistFull, p.name, p.capacity)
	}
	p.songs = append(p.songs, song)
	return nil
}

// RemoveByTitle removes the first song whose title matches case-insensitively.
func (p *Playlist) RemoveByTitle(title string) (Song, error) {
	i := p.indexOfTitle(title)
	if i < 0 {
		return Song{}, fmt.Errorf("%w: %q", crateerrors.ErrSongNotFound, title)
	}
	removed := p.songs[i]
	p.songs = slices.Delete(p.songs, i, i+1)
	return removed, nil
}

// FindByTitle returns the first song whose title matches case-insensitively.
func (p *Playlist) FindByTitle(title string) (Song, int, error) {
	i := p.indexOfTitle(title)
	if i < 0 {
		return Song{}, 0, fmt.Errorf("%w: %q", crateerrors.ErrSongNotFound, title)
	}
	return p.songs[i], i + 1, nil
}

func (p *Playlist) indexOfTitle(title string) int {
	return slices.IndexFunc(p.songs, func(s Song) bool {
		return strings.EqualFold(s.Title, title)
	})
}

// At returns the song at a 1-based position.
func (p *Playlist) At(position int) (Song, error) {
	if position < 1 || position > len(p.songs) {
		return Song{}, fmt.Errorf("%w: song %d (playlist has %d)", crateerrors.ErrIndexOutOfRange, position, len(p.songs))
	}
	return p.songs[position-1], nil
}

// All yields songs head to tail with their 1-based positions.
func (p *Playlist) All() iter.Seq2[int, Song] {
	return func(yield func(int, Song) bool) {
		for i, s := range p.songs {
			if !yield(i+1, s) {
				return
			}
		}
	}
}

// Songs returns a copy of the songs in order.
func (p *Playlist) Songs() []Song {
	return slices.Clone(p.songs)
}

// Find yields (title, artist) pairs for songs whose title contains query,
// or whose artist does when matchArtist is set. Matching is case-folded.
// The sequence is lazy and may be ranged over more than once.
func (p *Playlist) Find(query string, matchArtist bool) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		fold := cases.Fold()
		needle := fold.String(query)
		for _, s := range p.songs {
			matched := strings.Contains(fold.String(s.Title), needle)
			if !matched && matchArtist {
				matched = strings.Contains(fold.String(s.Artist), needle)
			}
			if matched && !yield(s.Title, s.Artist) {
				return
			}
		}
	}
}
