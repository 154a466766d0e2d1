package core

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/samber/lo"

	crateerrors "github.com/tessro/crate/internal/errors"
)

// DefaultMaxPlaylists is the playlist limit used when none is configured.
const DefaultMaxPlaylists = 10

// reservedChars cannot appear in playlist names because names become filenames.
const reservedChars = `\/:*?"<>|`

// Limits bounds a registry.
type Limits struct {
	MaxPlaylists int
	MaxSongs     int
	// Reserved lists names that would collide with other files in the library.
	Reserved []string
}

// Summary describes a playlist for listings.
type Summary struct {
	Name    string `json:"name"`
	Songs   int    `json:"songs"`
	Current bool   `json:"current"`
}

// Registry is an ordered, bounded set of uniquely named playlists with an
// optional current selection.
type Registry struct {
	playlists []*Playlist
	current   int // -1 when nothing is selected
	limits    Limits
}

// NewRegistry creates an empty registry.
func NewRegistry(limits Limits) *Registry {
	if limits.MaxPlaylists <= 0 {
		limits.MaxPlaylists = DefaultMaxPlaylists
	}
	if limits.MaxSongs <= 0 {
		limits.MaxSongs = DefaultMaxSongs
	}
	return &Registry{
		playlists: make([]*Playlist, 0, limits.MaxPlaylists),
		current:   -1,
		limits:    limits,
	}
}

// Limits returns the registry's limits.
func (r *Registry) Limits() Limits {
	return r.limits
}

// ValidateName checks that a playlist name is usable as a filename.
func (r *Registry) ValidateName(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	for _, reserved := range r.limits.Reserved {
		if strings.EqualFold(name, reserved) {
			return fmt.Errorf("%w: %q is reserved", crateerrors.ErrInvalidName, name)
		}
	}
	return nil
}

// ValidateName checks a playlist name without registry-specific reservations.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name cannot be empty", crateerrors.ErrInvalidName)
	case len(name) > MaxNameLength:
		return fmt.Errorf("%w: name exceeds %d bytes", crateerrors.ErrInvalidName, MaxNameLength)
	case strings.ContainsAny(name, reservedChars):
		return fmt.Errorf(`%w: %q contains one of \ / : * ? " < > |`, crateerrors.ErrInvalidName, name)
	case strings.ContainsAny(name, "\r\n"):
		return fmt.Errorf("%w: name contains a line break", crateerrors.ErrInvalidName)
	}
	return nil
}

// Create appends a new empty playlist and selects it.
func (r *Registry) Create(name string) (*Playlist, error) {
	p := NewPlaylist(name, r.limits.MaxSongs)
	if err := r.Add(p); err != nil {
		return nil, err
	}
	r.current = len(r.playlists) - 1
	return p, nil
}

// Add appends an existing playlist without changing the selection.
func (r *Registry) Add(p *Playlist) error {
	if err := r.ValidateName(p.Name()); err != nil {
		return err
	}
	if _, _, err := r.Lookup(p.Name()); err == nil {
		return fmt.Errorf("%w: %q", crateerrors.ErrDuplicateName, p.Name())
	}
	if len(r.playlists) >= r.limits.MaxPlaylists {
		return fmt.Errorf("%w (%d)", crateerrors.ErrCapacityExceeded, r.limits.MaxPlaylists)
	}
	r.playlists = append(r.playlists, p)
	return nil
}

// SwitchTo selects the playlist at a 1-based index.
func (r *Registry) SwitchTo(index int) error {
	if err := r.checkIndex(index); err != nil {
		return err
	}
	r.current = index - 1
	return nil
}

// Delete removes the playlist at a 1-based index and returns it.
// Deleting the current playlist selects the first one, if any remain.
func (r *Registry) Delete(index int) (*Playlist, error) {
	if err := r.checkIndex(index); err != nil {
		return nil, err
	}
	i := index - 1
	removed := r.playlists[i]
	r.playlists = slices.Delete(r.playlists, i, i+1)

	switch {
	case r.current == i:
		if len(r.playlists) > 0 {
			r.current = 0
		} else {
			r.current = -1
		}
	case r.current > i:
		r.current--
	}
	return removed, nil
}

func (r *Registry) checkIndex(index int) error {
	if index < 1 || index > len(r.playlists) {
		return fmt.Errorf("%w: playlist %d (have %d)", crateerrors.ErrIndexOutOfRange, index, len(r.playlists))
	}
	return nil
}

// Lookup finds a playlist by case-insensitive name, returning its 1-based index.
func (r *Registry) Lookup(name string) (int, *Playlist, error) {
	i := slices.IndexFunc(r.playlists, func(p *Playlist) bool {
		return strings.EqualFold(p.Name(), name)
	})
	if i < 0 {
		return 0, nil, fmt.Errorf("%w: %q", crateerrors.ErrPlaylistNotFound, name)
	}
	return i + 1, r.playlists[i], nil
}

// Get returns the playlist at a 1-based index.
func (r *Registry) Get(index int) (*Playlist, error) {
	if err := r.checkIndex(index); err != nil {
		return nil, err
	}
	return r.playlists[index-1], nil
}

// Current returns the selected playlist.
func (r *Registry) Current() (*Playlist, bool) {
	if r.current < 0 {
		return nil, false
	}
	return r.playlists[r.current], true
}

// CurrentIndex returns the 1-based index of the selection, or 0 if none.
func (r *Registry) CurrentIndex() int {
	return r.current + 1
}

// Len returns the number of playlists.
func (r *Registry) Len() int {
	return len(r.playlists)
}

// IsFull returns true if no more playlists can be created.
func (r *Registry) IsFull() bool {
	return len(r.playlists) >= r.limits.MaxPlaylists
}

// All yields playlists in order with their 1-based indices.
func (r *Registry) All() iter.Seq2[int, *Playlist] {
	return func(yield func(int, *Playlist) bool) {
		for i, p := range r.playlists {
			if !yield(i+1, p) {
				return
			}
		}
	}
}

// List returns a name and song count for each playlist, in order.
func (r *Registry) List() []Summary {
	return lo.Map(r.playlists, func(p *Playlist, i int) Summary {
		return Summary{
			Name:    p.Name(),
			Songs:   p.Len(),
			Current: i == r.current,
		}
	})
}
