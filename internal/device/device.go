// Package device plays audio files.
package device

import (
	"time"

	crateerrors "github.com/tessro/crate/internal/errors"
)

// ErrUnsupportedFormat is returned when a file opens but has no playable length.
var ErrUnsupportedFormat = crateerrors.ErrUnsupportedFormat

// Device opens audio files for playback.
type Device interface {
	Open(path string) (Handle, error)
}

// Handle controls one opened file. Handles are not reusable after Close.
type Handle interface {
	Play() error
	Pause() error
	Resume() error
	// Position is the elapsed playback time.
	Position() time.Duration
	// Length is the total duration. Zero or less means the format is not playable.
	Length() time.Duration
	Close() error
}
