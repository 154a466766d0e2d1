package playback

import (
	"time"

	"github.com/tessro/crate/internal/core"
)

// EventType identifies a navigator transition.
type EventType int

const (
	EventTrackStart EventType = iota
	EventProgress
	EventPause
	EventResume
	EventTrackComplete
	EventSkipNext
	EventSkipPrevious
	EventStop
	EventTrackError
	EventSessionEnd
)

// Name returns a stable identifier for the event type.
func (t EventType) Name() string {
	switch t {
	case EventTrackStart:
		return "track_start"
	case EventProgress:
		return "progress"
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	case EventTrackComplete:
		return "track_complete"
	case EventSkipNext:
		return "skip_next"
	case EventSkipPrevious:
		return "skip_previous"
	case EventStop:
		return "stop"
	case EventTrackError:
		return "track_error"
	case EventSessionEnd:
		return "session_end"
	default:
		return "unknown"
	}
}

// Event describes one navigator transition.
type Event struct {
	Type      EventType
	Session   string
	Timestamp time.Time
	// Playback holds the song and its progress at the time of the event.
	Playback core.PlaybackState
	// Track is the 1-based position of the song in the session order, and
	// Tracks the session length. Both are zero for single-track playback.
	Track  int
	Tracks int
	Err    error
	// Result is set on EventSessionEnd.
	Result Result
}

// Observer receives navigator events. OnEvent is called synchronously from
// the playback loop and should return quickly.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnEvent calls f(e).
func (f ObserverFunc) OnEvent(e Event) {
	f(e)
}

type nopObserver struct{}

func (nopObserver) OnEvent(Event) {}
