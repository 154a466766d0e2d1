package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tessro/crate/internal/core"
	"github.com/tessro/crate/internal/device"
	crateerrors "github.com/tessro/crate/internal/errors"
	"github.com/tessro/crate/internal/keys"
	"github.com/tessro/crate/internal/playback"
	"github.com/tessro/crate/internal/tui"
	"github.com/tessro/crate/internal/tui/components"
)

var (
	playPlaylist string
	playSingle   bool
	playTUI      bool
	historyClear bool
)

var playCmd = &cobra.Command{
	Use:   "play [number]",
	Short: "Play the current playlist",
	Long: `Play the current playlist in order, starting at song 1 or at the given number.

Controls while playing:
  SPACE   pause or resume
  ENTER   stop
  n       next song
  p       previous song

Examples:
  crate play             # Play from the first song
  crate play 3           # Play from song 3 onwards
  crate play 3 --single  # Play only song 3
  crate play --tui       # Play with the full-screen dashboard`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

var shuffleCmd = &cobra.Command{
	Use:   "shuffle",
	Short: "Play every song of the current playlist once, in random order",
	Args:  cobra.NoArgs,
	RunE:  runShuffle,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently played songs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	for _, c := range []*cobra.Command{playCmd, shuffleCmd} {
		c.Flags().StringVarP(&playPlaylist, "playlist", "p", "", "Playlist number or name (default: current)")
		c.Flags().BoolVarP(&playTUI, "tui", "t", false, "Show a full-screen dashboard while playing")
	}
	playCmd.Flags().BoolVarP(&playSingle, "single", "s", false, "Play only the given song")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Forget all played songs")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(shuffleCmd)
	rootCmd.AddCommand(historyCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	start := 1
	if len(args) == 1 {
		n, ok := parsePosition(args[0])
		if !ok {
			return fmt.Errorf("%w: %q is not a song number", crateerrors.ErrIndexOutOfRange, args[0])
		}
		start = n
	}

	return withApp(func(a *app) error {
		_, p, err := a.playlist(playPlaylist)
		if err != nil {
			return err
		}
		if playSingle {
			song, err := p.At(start)
			if err != nil {
				return err
			}
			return a.playSong(cmd.Context(), song)
		}
		run, err := playFromRun(p, start)
		if err != nil {
			return err
		}
		if playTUI {
			return a.playDashboard(cmd.Context(), p, run)
		}
		return a.playSession(cmd.Context(), run)
	})
}

func runShuffle(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		_, p, err := a.playlist(playPlaylist)
		if err != nil {
			return err
		}
		run, err := shuffleRun(p)
		if err != nil {
			return err
		}
		if playTUI {
			return a.playDashboard(cmd.Context(), p, run)
		}
		return a.playSession(cmd.Context(), run)
	})
}

// sessionRun drives one navigator session.
type sessionRun func(ctx context.Context, nav *playback.Navigator) (playback.Result, error)

// playFromRun plays p in order from the 1-based song start. Next and
// Previous move through the playlist until it ends or playback is stopped.
func playFromRun(p *core.Playlist, start int) (sessionRun, error) {
	if err := checkPlayable(p, start); err != nil {
		return nil, err
	}
	songs := p.Songs()
	return func(ctx context.Context, nav *playback.Navigator) (playback.Result, error) {
		return nav.PlayFrom(ctx, songs, start-1)
	}, nil
}

func shuffleRun(p *core.Playlist) (sessionRun, error) {
	if err := checkPlayable(p, 1); err != nil {
		return nil, err
	}
	songs := p.Songs()
	return func(ctx context.Context, nav *playback.Navigator) (playback.Result, error) {
		return nav.PlayShuffled(ctx, songs)
	}, nil
}

// checkPlayable reports an empty playlist or a start past its end.
func checkPlayable(p *core.Playlist, start int) error {
	if p.IsEmpty() {
		return crateerrors.WithSuggestion(
			fmt.Errorf("playlist %s is empty", p.Name()),
			"Add songs with 'crate song add <title> <artist> <path>'")
	}
	if start < 1 || start > p.Len() {
		return fmt.Errorf("%w: song %d (playlist has %d)", crateerrors.ErrIndexOutOfRange, start, p.Len())
	}
	return nil
}

// session wires the terminal, the audio device and an event renderer into
// a navigator.
type session struct {
	nav  *playback.Navigator
	keys *keys.Reader
	ctx  context.Context
	stop context.CancelFunc
}

func (a *app) openSession(parent context.Context) (*session, error) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)

	kr, err := keys.OpenTerminal(os.Stdin)
	if err != nil {
		stop()
		return nil, err
	}

	nav := playback.New(device.NewSpeaker(), kr, a.navigatorOptions(a.observer())...)
	return &session{nav: nav, keys: kr, ctx: ctx, stop: stop}, nil
}

func (s *session) Close() error {
	s.stop()
	return s.keys.Close()
}

func (a *app) navigatorOptions(observer playback.Observer) []playback.Option {
	pc := a.cfg.Playback
	return []playback.Option{
		playback.WithPollInterval(pc.PollEvery()),
		playback.WithErrorDelay(pc.ErrorPause()),
		playback.WithObserver(observer),
		playback.WithLogger(a.logger),
		playback.WithHistory(a.history),
	}
}

// formatter builds the event line formatter from config.
func (a *app) formatter() *playback.Formatter {
	pc := a.cfg.Playback
	return playback.NewFormatter(
		playback.WithEmoji(pc.EmojiEnabled()),
		playback.WithTimestamp(pc.Timestamps),
		playback.WithTemplate(pc.Format),
	)
}

// observer renders events for the terminal, or as JSON lines with --json.
func (a *app) observer() playback.Observer {
	if JSONOutput() {
		return newJSONObserver(os.Stdout)
	}
	console := tui.NewConsole(os.Stdout, a.formatter(), components.NewNowPlaying(a.cfg.TUI.ProgressWidth))
	console.SetRawMode(term.IsTerminal(int(os.Stdin.Fd())))
	return console
}

// playSession runs one navigator session and saves the updated history.
func (a *app) playSession(ctx context.Context, run sessionRun) error {
	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	result, err := run(s.ctx, s.nav)
	_ = s.Close()

	a.logger.Debug().Str("result", result.String()).Msg("session finished")
	if saveErr := a.lib.SaveState(a.reg, a.history); saveErr != nil {
		Warn("could not save history: %v", saveErr)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// playDashboard runs a session behind the full-screen dashboard.
func (a *app) playDashboard(ctx context.Context, p *core.Playlist, run sessionRun) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opts := tui.Options{
		ProgressWidth: a.cfg.TUI.ProgressWidth,
		HistorySize:   a.history.Cap(),
		Formatter:     a.formatter(),
	}
	result, err := tui.Run(ctx, p, a.history.Entries(), opts,
		func(ctx context.Context, obs playback.Observer, kq playback.KeySource) (playback.Result, error) {
			nav := playback.New(device.NewSpeaker(), kq, a.navigatorOptions(obs)...)
			return run(ctx, nav)
		})

	a.logger.Debug().Str("result", result.String()).Msg("session finished")
	if saveErr := a.lib.SaveState(a.reg, a.history); saveErr != nil {
		Warn("could not save history: %v", saveErr)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// playSong plays one song and saves the updated history.
func (a *app) playSong(ctx context.Context, song core.Song) error {
	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	outcome, err := s.nav.PlayTrack(s.ctx, song)
	_ = s.Close()

	a.logger.Debug().Str("outcome", outcome.String()).Msg("track finished")
	if saveErr := a.lib.SaveState(a.reg, a.history); saveErr != nil {
		Warn("could not save history: %v", saveErr)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// jsonObserver writes one JSON object per event, skipping progress ticks.
type jsonObserver struct {
	enc *json.Encoder
}

func newJSONObserver(out io.Writer) *jsonObserver {
	return &jsonObserver{enc: json.NewEncoder(out)}
}

type jsonEvent struct {
	Type      string    `json:"type"`
	Session   string    `json:"session,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Title     string    `json:"title,omitempty"`
	Artist    string    `json:"artist,omitempty"`
	Path      string    `json:"path,omitempty"`
	Track     int       `json:"track,omitempty"`
	Tracks    int       `json:"tracks,omitempty"`
	ElapsedMS int64     `json:"elapsed_ms,omitempty"`
	LengthMS  int64     `json:"length_ms,omitempty"`
	Error     string    `json:"error,omitempty"`
	Result    string    `json:"result,omitempty"`
}

func (o *jsonObserver) OnEvent(e playback.Event) {
	if e.Type == playback.EventProgress {
		return
	}
	rec := jsonEvent{
		Type:      e.Type.Name(),
		Session:   e.Session,
		Timestamp: e.Timestamp,
		Track:     e.Track,
		Tracks:    e.Tracks,
		ElapsedMS: e.Playback.Elapsed.Milliseconds(),
		LengthMS:  e.Playback.Total.Milliseconds(),
	}
	if e.Playback.HasSong() {
		rec.Title = e.Playback.Song.Title
		rec.Artist = e.Playback.Song.Artist
		rec.Path = e.Playback.Song.Path
	}
	if e.Err != nil {
		rec.Error = e.Err.Error()
	}
	if e.Type == playback.EventSessionEnd {
		rec.Result = e.Result.String()
	}
	_ = o.enc.Encode(rec)
}

func runHistory(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		if historyClear {
			a.history.Clear()
			if err := a.lib.SaveState(a.reg, a.history); err != nil {
				return err
			}
			if !JSONOutput() {
				Info("History cleared")
				return nil
			}
		}

		entries := a.history.Entries()
		if JSONOutput() {
			return printJSON(entries)
		}

		view := components.NewHistory()
		fmt.Println(view.Render(entries, min(termWidth(), 100)))
		return nil
	})
}
