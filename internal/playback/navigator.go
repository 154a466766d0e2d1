// Package playback drives the audio device through a list of songs in
// response to keypresses and track completion.
package playback

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tessro/crate/internal/core"
	"github.com/tessro/crate/internal/device"
	crateerrors "github.com/tessro/crate/internal/errors"
)

const (
	DefaultPollInterval = 200 * time.Millisecond
	DefaultErrorDelay   = 2500 * time.Millisecond
)

// KeySource is polled for keypresses once per iteration.
type KeySource interface {
	KeyAvailable() bool
	ReadKey() (rune, error)
}

// Navigator plays songs one at a time. It is not safe for concurrent use.
type Navigator struct {
	device     device.Device
	keys       KeySource
	interval   time.Duration
	errorDelay time.Duration
	observer   Observer
	logger     zerolog.Logger
	history    *core.History
	rng        *rand.Rand
	now        func() time.Time
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithPollInterval sets how often keys and position are sampled.
func WithPollInterval(d time.Duration) Option {
	return func(n *Navigator) {
		if d > 0 {
			n.interval = d
		}
	}
}

// WithErrorDelay sets the pause after a track fails to open.
func WithErrorDelay(d time.Duration) Option {
	return func(n *Navigator) {
		if d >= 0 {
			n.errorDelay = d
		}
	}
}

// WithObserver sets the receiver of playback events.
func WithObserver(o Observer) Option {
	return func(n *Navigator) {
		if o != nil {
			n.observer = o
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(n *Navigator) {
		n.logger = l.With().Str("component", "playback").Logger()
	}
}

// WithHistory records each started track in h.
func WithHistory(h *core.History) Option {
	return func(n *Navigator) {
		n.history = h
	}
}

// WithRand sets the random source for shuffle.
func WithRand(r *rand.Rand) Option {
	return func(n *Navigator) {
		if r != nil {
			n.rng = r
		}
	}
}

// WithClock sets the time source for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(n *Navigator) {
		if now != nil {
			n.now = now
		}
	}
}

// New creates a navigator. keys may be nil, in which case playback can
// only end by completion or context cancellation.
func New(dev device.Device, keys KeySource, opts ...Option) *Navigator {
	n := &Navigator{
		device:     dev,
		keys:       keys,
		interval:   DefaultPollInterval,
		errorDelay: DefaultErrorDelay,
		observer:   nopObserver{},
		logger:     zerolog.Nop(),
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// session carries per-session identifiers into events and logs.
type session struct {
	id     string
	logger zerolog.Logger
	track  int
	tracks int
}

func (n *Navigator) newSession(tracks int) *session {
	id := uuid.NewString()
	return &session{
		id:     id,
		logger: n.logger.With().Str("session", id).Logger(),
		tracks: tracks,
	}
}

func (n *Navigator) emit(s *session, e Event) {
	e.Session = s.id
	e.Timestamp = n.now()
	e.Track = s.track
	e.Tracks = s.tracks
	n.observer.OnEvent(e)
}

// PlayTrack plays one song until it finishes or a control signal ends it.
// When ctx is cancelled it returns OutcomeStopped and ctx.Err(). A device
// failure returns OutcomeTrackError with the cause after the error delay.
func (n *Navigator) PlayTrack(ctx context.Context, song core.Song) (Outcome, error) {
	return n.playTrack(ctx, n.newSession(0), song)
}

func (n *Navigator) playTrack(ctx context.Context, s *session, song core.Song) (Outcome, error) {
	log := s.logger.With().Str("title", song.Title).Str("path", song.Path).Logger()
	st := core.PlaybackState{Song: &song}

	h, err := n.device.Open(song.Path)
	if err != nil {
		return n.trackError(ctx, s, st, err)
	}
	st.Total = h.Length()
	if st.Total <= 0 {
		n.closeHandle(log, h)
		return n.trackError(ctx, s, st, fmt.Errorf("%w: %s", device.ErrUnsupportedFormat, song.Path))
	}
	if err := h.Play(); err != nil {
		n.closeHandle(log, h)
		return n.trackError(ctx, s, st, err)
	}
	defer n.closeHandle(log, h)

	if n.history != nil {
		n.history.Record(song)
	}
	state := StatePlaying
	log.Debug().Dur("length", st.Total).Msg("track started")
	n.emit(s, Event{Type: EventTrackStart, Playback: st})

	timer := time.NewTimer(n.interval)
	defer timer.Stop()

	for {
		switch n.pollSignal(log) {
		case SignalTogglePause:
			if state == StatePlaying {
				if err := h.Pause(); err != nil {
					log.Warn().Err(err).Msg("pause failed")
				}
				state = StatePaused
				st.Paused = true
				n.emit(s, Event{Type: EventPause, Playback: st})
			} else {
				if err := h.Resume(); err != nil {
					log.Warn().Err(err).Msg("resume failed")
				}
				state = StatePlaying
				st.Paused = false
				n.emit(s, Event{Type: EventResume, Playback: st})
			}
		case SignalStop:
			n.emit(s, Event{Type: EventStop, Playback: st})
			return OutcomeStopped, nil
		case SignalSkipNext:
			n.emit(s, Event{Type: EventSkipNext, Playback: st})
			return OutcomeNext, nil
		case SignalSkipPrevious:
			n.emit(s, Event{Type: EventSkipPrevious, Playback: st})
			return OutcomePrevious, nil
		}

		st.Elapsed = h.Position()
		if length := h.Length(); length > 0 {
			st.Total = length
		}
		n.emit(s, Event{Type: EventProgress, Playback: st})
		if state == StatePlaying && st.Elapsed >= st.Total {
			log.Debug().Msg("track finished")
			n.emit(s, Event{Type: EventTrackComplete, Playback: st})
			return OutcomeFinished, nil
		}

		select {
		case <-ctx.Done():
			n.emit(s, Event{Type: EventStop, Playback: st, Err: ctx.Err()})
			return OutcomeStopped, ctx.Err()
		case <-timer.C:
			timer.Reset(n.interval)
		}
	}
}

func (n *Navigator) trackError(ctx context.Context, s *session, st core.PlaybackState, cause error) (Outcome, error) {
	s.logger.Warn().Err(cause).Str("path", st.Song.Path).Msg("could not play track")
	n.emit(s, Event{Type: EventTrackError, Playback: st, Err: cause})

	if n.errorDelay > 0 {
		t := time.NewTimer(n.errorDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return OutcomeStopped, ctx.Err()
		case <-t.C:
		}
	}
	return OutcomeTrackError, cause
}

func (n *Navigator) pollSignal(log zerolog.Logger) Signal {
	if n.keys == nil || !n.keys.KeyAvailable() {
		return SignalNone
	}
	k, err := n.keys.ReadKey()
	if err != nil {
		log.Debug().Err(err).Msg("key read failed")
		return SignalNone
	}
	return SignalForKey(k)
}

func (n *Navigator) closeHandle(log zerolog.Logger, h device.Handle) {
	if err := h.Close(); err != nil {
		log.Debug().Err(err).Msg("close failed")
	}
}

// PlayFrom plays songs in order starting at the 0-based index start.
// Previous steps back one song, and at the first song replays it. The
// session ends with ResultExhausted after the last song, or ResultStopped.
func (n *Navigator) PlayFrom(ctx context.Context, songs []core.Song, start int) (Result, error) {
	if len(songs) == 0 {
		return ResultExhausted, nil
	}
	if start < 0 || start >= len(songs) {
		return ResultExhausted, fmt.Errorf("%w: song %d (have %d)", crateerrors.ErrIndexOutOfRange, start+1, len(songs))
	}

	order := make([]int, len(songs))
	for i := range order {
		order[i] = i
	}
	return n.run(ctx, songs, order, start, true)
}

// PlayShuffled plays every song once in a random order. Previous behaves
// like Next. songs is not modified.
func (n *Navigator) PlayShuffled(ctx context.Context, songs []core.Song) (Result, error) {
	if len(songs) == 0 {
		return ResultExhausted, nil
	}
	return n.run(ctx, songs, Shuffle(len(songs), n.rng), 0, false)
}

func (n *Navigator) run(ctx context.Context, songs []core.Song, order []int, pos int, allowPrevious bool) (Result, error) {
	s := n.newSession(len(order))
	s.logger.Info().Int("songs", len(order)).Bool("shuffle", !allowPrevious).Msg("playback session started")

	end := func(r Result, err error) (Result, error) {
		s.logger.Info().Str("result", r.String()).Msg("playback session ended")
		n.emit(s, Event{Type: EventSessionEnd, Result: r, Err: err})
		return r, err
	}

	for pos < len(order) {
		s.track = pos + 1
		out, err := n.playTrack(ctx, s, songs[order[pos]])
		switch out {
		case OutcomeStopped:
			return end(ResultStopped, err)
		case OutcomePrevious:
			if allowPrevious && pos > 0 {
				pos--
			} else if !allowPrevious {
				pos++
			}
		default:
			pos++
		}
	}
	s.track = 0
	return end(ResultExhausted, nil)
}
