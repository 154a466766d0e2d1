//go:build !((linux && cgo) || windows || darwin)

package device

import (
	"fmt"

	crateerrors "github.com/tessro/crate/internal/errors"
)

// AudioAvailable reports whether this build can produce sound.
// Audio output needs cgo outside windows and darwin.
const AudioAvailable = false

// Speaker is unavailable in builds without cgo. Every Open fails, so
// playback skips through the playlist.
type Speaker struct{}

// NewSpeaker creates a speaker device.
func NewSpeaker() *Speaker {
	return &Speaker{}
}

// Open always fails.
func (s *Speaker) Open(path string) (Handle, error) {
	return nil, fmt.Errorf("%w: audio output requires a cgo build", crateerrors.ErrDevice)
}
