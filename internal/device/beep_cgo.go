//go:build (linux && cgo) || windows || darwin

package device

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"

	crateerrors "github.com/tessro/crate/internal/errors"
)

// AudioAvailable reports whether this build can produce sound.
const AudioAvailable = true

const speakerRate = beep.SampleRate(44100)

// Speaker plays files through the system audio output.
type Speaker struct {
	mu          sync.Mutex
	initialized bool
}

// NewSpeaker creates a speaker device. The audio output is initialized on
// the first Open.
func NewSpeaker() *Speaker {
	return &Speaker{}
}

func (s *Speaker) init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if err := speaker.Init(speakerRate, speakerRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("%w: init speaker: %w", crateerrors.ErrDevice, err)
	}
	s.initialized = true
	return nil
}

// Open decodes an mp3 or wav file.
func (s *Speaker) Open(path string) (Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", crateerrors.ErrDevice, err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: decode %s: %w", crateerrors.ErrDevice, filepath.Base(path), err)
	}

	if err := s.init(); err != nil {
		streamer.Close()
		return nil, err
	}

	return &beepHandle{
		streamer: streamer,
		format:   format,
		ctrl:     &beep.Ctrl{Streamer: beep.Resample(4, format.SampleRate, speakerRate, streamer), Paused: true},
	}, nil
}

type beepHandle struct {
	mu       sync.Mutex
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	started  bool
	closed   bool
}

func (h *beepHandle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return fmt.Errorf("%w: handle closed", crateerrors.ErrDevice)
	}
	if !h.started {
		h.started = true
		speaker.Play(h.ctrl)
	}
	h.setPaused(false)
	return nil
}

func (h *beepHandle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.setPaused(true)
	return nil
}

func (h *beepHandle) Resume() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.setPaused(false)
	return nil
}

// setPaused must be called with h.mu held.
func (h *beepHandle) setPaused(paused bool) {
	if h.closed {
		return
	}
	speaker.Lock()
	h.ctrl.Paused = paused
	speaker.Unlock()
}

func (h *beepHandle) Position() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return 0
	}
	speaker.Lock()
	pos := h.streamer.Position()
	speaker.Unlock()
	return h.format.SampleRate.D(pos)
}

func (h *beepHandle) Length() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return 0
	}
	return h.format.SampleRate.D(h.streamer.Len())
}

func (h *beepHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	speaker.Lock()
	h.ctrl.Paused = true
	h.ctrl.Streamer = nil
	speaker.Unlock()

	return h.streamer.Close()
}
