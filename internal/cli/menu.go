package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tessro/crate/internal/core"
	crateerrors "github.com/tessro/crate/internal/errors"
	"github.com/tessro/crate/internal/tui/components"
	"github.com/tessro/crate/internal/tui/styles"
	"github.com/tessro/crate/internal/wizard"
)

var uiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"menu"},
	Short:   "Open the interactive menu",
	Long: `Open a menu for managing playlists and songs and for playback.
Changes are saved after each action and again on exit.`,
	Args: cobra.NoArgs,
	RunE: runUI,
}

func init() {
	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	if !wizard.IsTerminal() {
		return errors.New("the menu needs an interactive terminal")
	}
	return withApp(func(a *app) error {
		m := &menu{app: a, ctx: cmd.Context(), out: os.Stdout}
		return m.run()
	})
}

type menu struct {
	*app
	ctx context.Context
	out io.Writer
}

const (
	actionBack = "back"
	actionExit = "exit"
)

func (m *menu) run() error {
	for {
		choice, err := m.choose("Main menu",
			huh.NewOption("Playlist management", "playlists"),
			huh.NewOption("Song management", "songs"),
			huh.NewOption("Playback", "playback"),
			huh.NewOption("Save and exit", actionExit),
		)
		if err != nil || choice == actionExit {
			return m.exit()
		}

		switch choice {
		case "playlists":
			m.submenu("Playlist management", m.playlistActions())
		case "songs":
			m.submenu("Song management", m.songActions())
		case "playback":
			m.submenu("Playback", m.playbackActions())
		}
	}
}

func (m *menu) exit() error {
	if err := m.save(); err != nil {
		return err
	}
	fmt.Fprintln(m.out, styles.Notice.Render("Library saved. Goodbye!"))
	return nil
}

// menuAction is one entry of a submenu. Mutating actions are followed by
// a save.
type menuAction struct {
	label  string
	run    func() error
	mutate bool
}

func (m *menu) submenu(title string, actions []menuAction) {
	opts := make([]huh.Option[string], 0, len(actions)+1)
	for i, a := range actions {
		opts = append(opts, huh.NewOption(a.label, strconv.Itoa(i)))
	}
	opts = append(opts, huh.NewOption("Back", actionBack))

	for {
		choice, err := m.choose(title, opts...)
		if err != nil || choice == actionBack {
			return
		}
		i, _ := strconv.Atoi(choice)
		action := actions[i]

		err = action.run()
		if err == nil && action.mutate {
			err = m.save()
		}
		m.report(err)
	}
}

func (m *menu) report(err error) {
	if err == nil || errors.Is(err, huh.ErrUserAborted) {
		return
	}
	fmt.Fprintln(m.out, styles.Failure.Render(crateerrors.Format(err)))
}

// status describes the current playlist for menu headers.
func (m *menu) status() string {
	p, ok := m.reg.Current()
	if !ok {
		return "No playlist selected"
	}
	return fmt.Sprintf("Current playlist: %s (%d/%d songs)", p.Name(), p.Len(), p.Cap())
}

func (m *menu) choose(title string, opts ...huh.Option[string]) (string, error) {
	var choice string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Description(m.status()).
				Options(opts...).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}
	return choice, nil
}

func (m *menu) playlistActions() []menuAction {
	return []menuAction{
		{label: "Create playlist", mutate: true, run: func() error {
			name, err := promptPlaylistName()
			if err != nil {
				return err
			}
			p, err := m.reg.Create(name)
			if err != nil {
				return err
			}
			fmt.Fprintln(m.out, styles.Notice.Render(fmt.Sprintf("Created playlist %q (now current)", p.Name())))
			return nil
		}},
		{label: "List playlists", run: func() error {
			if m.reg.Len() == 0 {
				fmt.Fprintln(m.out, "No playlists yet.")
				return nil
			}
			writePlaylistTable(m.out, m.reg)
			return nil
		}},
		{label: "Switch playlist", mutate: true, run: func() error {
			index, err := m.pickPlaylist()
			if err != nil || index == 0 {
				return err
			}
			if err := m.reg.SwitchTo(index); err != nil {
				return err
			}
			fmt.Fprintln(m.out, styles.Notice.Render(m.status()))
			return nil
		}},
		{label: "Delete playlist", mutate: true, run: func() error {
			index, err := m.pickPlaylist()
			if err != nil || index == 0 {
				return err
			}
			p, err := m.lib.DeletePlaylist(m.reg, index)
			if err != nil {
				return err
			}
			fmt.Fprintln(m.out, styles.Notice.Render(fmt.Sprintf("Deleted playlist %q", p.Name())))
			return nil
		}},
		{label: "Show current playlist", run: func() error {
			p, err := m.current()
			if err != nil {
				return err
			}
			renderPlaylist(m.out, p)
			return nil
		}},
	}
}

// pickPlaylist returns a 1-based index, or 0 when cancelled.
func (m *menu) pickPlaylist() (int, error) {
	if m.reg.Len() == 0 {
		return 0, crateerrors.ErrPlaylistNotFound
	}
	return wizard.RunPlaylistPicker(m.reg.List())
}

func (m *menu) songActions() []menuAction {
	return []menuAction{
		{label: "Add song", mutate: true, run: func() error {
			p, err := m.current()
			if err != nil {
				return err
			}
			song, err := promptSong(core.Song{})
			if err != nil {
				return err
			}
			if err := addSong(p, song); err != nil {
				return err
			}
			fmt.Fprintln(m.out, styles.Notice.Render(fmt.Sprintf("Added %s (%d/%d)", song, p.Len(), p.Cap())))
			return nil
		}},
		{label: "Remove song", mutate: true, run: func() error {
			p, picked, err := m.pickSong()
			if err != nil || picked == nil {
				return err
			}
			removed, err := p.RemoveByTitle(picked.Title)
			if err != nil {
				return err
			}
			fmt.Fprintln(m.out, styles.Notice.Render(fmt.Sprintf("Removed %s", removed)))
			return nil
		}},
		{label: "List songs", run: func() error {
			p, err := m.current()
			if err != nil {
				return err
			}
			if p.IsEmpty() {
				fmt.Fprintf(m.out, "%s is empty.\n", p.Name())
				return nil
			}
			writeSongTable(m.out, p)
			return nil
		}},
		{label: "Search songs", run: func() error {
			p, picked, err := m.pickSong()
			if err != nil || picked == nil {
				return err
			}
			song, pos, err := p.FindByTitle(picked.Title)
			if err != nil {
				return err
			}
			fmt.Fprintf(m.out, "%d. %s\n   %s\n", pos, song, song.Path)
			return nil
		}},
	}
}

func (m *menu) pickSong() (*core.Playlist, *wizard.SearchResult, error) {
	p, err := m.current()
	if err != nil {
		return nil, nil, err
	}
	picked, err := wizard.RunSongSearch(p.Name(), searchFunc(p))
	return p, picked, err
}

func (m *menu) playbackActions() []menuAction {
	return []menuAction{
		{label: "Play from the start", run: func() error {
			return m.playFrom(1)
		}},
		{label: "Play a specific song", run: func() error {
			p, err := m.current()
			if err != nil {
				return err
			}
			n, err := promptSongNumber(p)
			if err != nil {
				return err
			}
			return m.playFrom(n)
		}},
		{label: "Shuffle", run: func() error {
			p, err := m.current()
			if err != nil {
				return err
			}
			run, err := shuffleRun(p)
			if err != nil {
				return err
			}
			return m.playSession(m.ctx, run)
		}},
		{label: "Recently played", run: func() error {
			view := components.NewHistory()
			fmt.Fprintln(m.out, view.Render(m.history.Entries(), min(termWidth(), 100)))
			return nil
		}},
	}
}

// playFrom plays the current playlist from the 1-based song start onwards.
func (m *menu) playFrom(start int) error {
	p, err := m.current()
	if err != nil {
		return err
	}
	run, err := playFromRun(p, start)
	if err != nil {
		return err
	}
	return m.playSession(m.ctx, run)
}

// promptSongNumber asks for a 1-based song number within p.
func promptSongNumber(p *core.Playlist) (int, error) {
	if p.IsEmpty() {
		return 0, fmt.Errorf("playlist %s is empty", p.Name())
	}
	var input string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Song number (1-%d)", p.Len())).
				Validate(func(s string) error {
					n, ok := parsePosition(s)
					if !ok || n > p.Len() {
						return fmt.Errorf("enter a number from 1 to %d", p.Len())
					}
					return nil
				}).
				Value(&input),
		),
	)
	if err := form.Run(); err != nil {
		return 0, err
	}
	n, _ := parsePosition(input)
	return n, nil
}
