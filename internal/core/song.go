package core

import (
	"fmt"
	"strings"

	crateerrors "github.com/tessro/crate/internal/errors"
)

// MaxFieldLength is the longest title, artist or path in bytes.
const MaxFieldLength = 255

// MaxNameLength is the longest playlist name in bytes. The backing file
// name, extension included, must fit in MaxFieldLength.
const MaxNameLength = MaxFieldLength - len(PlaylistFileExt)

// Song is a playable entry in a playlist.
type Song struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Path   string `json:"path"`
}

// Validate checks that the song can be stored and persisted.
// Line breaks are rejected because the playlist file format has no escaping.
func (s Song) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%w: title is required", crateerrors.ErrInvalidSong)
	}
	fields := []struct {
		name, value string
	}{
		{"title", s.Title},
		{"artist", s.Artist},
		{"path", s.Path},
	}
	for _, f := range fields {
		if len(f.value) > MaxFieldLength {
			return fmt.Errorf("%w: %s exceeds %d bytes", crateerrors.ErrInvalidSong, f.name, MaxFieldLength)
		}
		if strings.ContainsAny(f.value, "\r\n") {
			return fmt.Errorf("%w: %s contains a line break", crateerrors.ErrInvalidSong, f.name)
		}
	}
	return nil
}

// String returns "Title" by Artist.
func (s Song) String() string {
	if s.Artist == "" {
		return fmt.Sprintf("%q", s.Title)
	}
	return fmt.Sprintf("%q by %s", s.Title, s.Artist)
}
