package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tessro/crate/internal/config"
	"github.com/tessro/crate/internal/core"
	crateerrors "github.com/tessro/crate/internal/errors"
	"github.com/tessro/crate/internal/library"
	"github.com/tessro/crate/internal/logging"
	"github.com/tessro/crate/internal/tui/styles"
	"github.com/tessro/crate/internal/wizard"
)

var (
	cfgFile    string
	jsonOut    bool
	verbose    bool
	libraryDir string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "crate",
	Short: "Manage playlists and play local music from the terminal",
	Long: `Crate keeps playlists of local audio files and plays them with
keyboard controls. Run it without a command in a terminal to open the menu.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE:          runRoot,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.craterc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&libraryDir, "dir", "", "library directory (overrides library.dir)")
}

func runRoot(cmd *cobra.Command, args []string) error {
	if !wizard.IsTerminal() {
		return cmd.Help()
	}
	return runUI(cmd, args)
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if libraryDir != "" {
		cfg.Library.Dir = libraryDir
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", crateerrors.ErrInvalidConfig, err)
	}

	styles.SetTheme(cfg.TUI.Theme)
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, crateerrors.Format(err))
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}

// app is the library state a single command works on.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	closer  io.Closer
	lib     *library.Library
	reg     *core.Registry
	history *core.History
}

// openApp loads the library named by c. Broken playlists are logged and
// skipped rather than failing the command.
func openApp(c *config.Config) (*app, error) {
	logger, closer, err := logging.New(c.Log, verbose)
	if err != nil {
		return nil, err
	}

	limits := core.Limits{
		MaxPlaylists: c.Library.MaxPlaylists,
		MaxSongs:     c.Library.MaxSongs,
	}
	lib := library.New(c.Library.Dir, limits, logger)

	res, err := lib.LoadAll()
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	if res.HasErrors() {
		logger.Debug().Int("problems", len(res.Errors)).Msg("library loaded with problems")
	}

	history := core.NewHistory(c.Library.HistorySize)
	if err := lib.LoadState(res.Data, history); err != nil {
		logger.Warn().Err(err).Msg("ignoring unreadable state file")
	}

	return &app{
		cfg:     c,
		logger:  logger,
		closer:  closer,
		lib:     lib,
		reg:     res.Data,
		history: history,
	}, nil
}

// save writes every playlist, the index and the state file.
func (a *app) save() error {
	res, err := a.lib.SaveAll(a.reg)
	if err != nil {
		return err
	}
	if err := a.lib.SaveState(a.reg, a.history); err != nil {
		res.AddError(err)
	}
	if res.HasErrors() {
		return fmt.Errorf("%w: %s", crateerrors.ErrPersistence, res.ErrorSummary())
	}
	a.logger.Debug().Int("playlists", res.Data).Msg("library saved")
	return nil
}

func (a *app) Close() error {
	return a.closer.Close()
}

// current returns the selected playlist.
func (a *app) current() (*core.Playlist, error) {
	p, ok := a.reg.Current()
	if !ok {
		return nil, crateerrors.ErrNoPlaylistSelected
	}
	return p, nil
}

// playlist returns the playlist named by ref, which may be a 1-based
// number or a name. An empty ref means the current playlist.
func (a *app) playlist(ref string) (int, *core.Playlist, error) {
	if ref == "" {
		p, err := a.current()
		if err != nil {
			return 0, nil, err
		}
		return a.reg.CurrentIndex(), p, nil
	}
	if n, ok := parsePosition(ref); ok {
		p, err := a.reg.Get(n)
		if err != nil {
			return 0, nil, err
		}
		return n, p, nil
	}
	return a.reg.Lookup(ref)
}

// withApp opens the library, runs fn and closes it again.
func withApp(fn func(a *app) error) error {
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(a)
}

// withAppSave is withApp followed by a save when fn succeeds.
func withAppSave(fn func(a *app) error) error {
	return withApp(func(a *app) error {
		if err := fn(a); err != nil {
			return err
		}
		return a.save()
	})
}
