package playback

import "unicode"

// Signal is a control command decoupled from the key that produced it.
type Signal int

const (
	SignalNone Signal = iota
	SignalTogglePause
	SignalStop
	SignalSkipNext
	SignalSkipPrevious
)

// ctrlC arrives as a byte when the terminal is in raw mode.
const ctrlC = 0x03

// SignalForKey maps a keypress to a control signal. Letter keys are
// matched case-insensitively.
func SignalForKey(k rune) Signal {
	switch unicode.ToLower(k) {
	case ' ':
		return SignalTogglePause
	case '\r', '\n', ctrlC:
		return SignalStop
	case 'n':
		return SignalSkipNext
	case 'p':
		return SignalSkipPrevious
	default:
		return SignalNone
	}
}

func (s Signal) String() string {
	switch s {
	case SignalTogglePause:
		return "toggle_pause"
	case SignalStop:
		return "stop"
	case SignalSkipNext:
		return "skip_next"
	case SignalSkipPrevious:
		return "skip_previous"
	default:
		return "none"
	}
}

// State is the navigator's per-track state.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// Outcome is how a single track ended.
type Outcome int

const (
	// OutcomeFinished means the track played to the end.
	OutcomeFinished Outcome = iota
	OutcomeNext
	OutcomePrevious
	OutcomeStopped
	// OutcomeTrackError means the device could not play the track.
	OutcomeTrackError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFinished:
		return "finished"
	case OutcomeNext:
		return "next"
	case OutcomePrevious:
		return "previous"
	case OutcomeStopped:
		return "stopped"
	case OutcomeTrackError:
		return "track_error"
	default:
		return "unknown"
	}
}

// Result is how a multi-song session ended.
type Result int

const (
	// ResultExhausted means the session ran past the last song.
	ResultExhausted Result = iota
	// ResultStopped means the user stopped playback.
	ResultStopped
)

func (r Result) String() string {
	if r == ResultStopped {
		return "stopped"
	}
	return "exhausted"
}
