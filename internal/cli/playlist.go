package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/tessro/crate/internal/core"
	crateerrors "github.com/tessro/crate/internal/errors"
	"github.com/tessro/crate/internal/tui/components"
	"github.com/tessro/crate/internal/wizard"
)

var (
	deleteForce bool
)

var playlistCmd = &cobra.Command{
	Use:     "playlist",
	Aliases: []string{"pl"},
	Short:   "Manage playlists",
}

var playlistCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a playlist and select it",
	Long: `Create a new, empty playlist and make it the current one.

Names are compared case-insensitively and cannot contain \ / : * ? " < > |

Examples:
  crate playlist create Favorites`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlaylistCreate,
}

var playlistListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List playlists",
	Args:    cobra.NoArgs,
	RunE:    runPlaylistList,
}

var playlistSwitchCmd = &cobra.Command{
	Use:   "switch [number|name]",
	Short: "Select the current playlist",
	Long: `Select the current playlist by number or name.
Without arguments in a terminal, shows a picker.

Examples:
  crate playlist switch 2
  crate playlist switch Favorites`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlaylistSwitch,
}

var playlistDeleteCmd = &cobra.Command{
	Use:     "delete [number|name]",
	Aliases: []string{"rm"},
	Short:   "Delete a playlist and its file",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runPlaylistDelete,
}

var playlistShowCmd = &cobra.Command{
	Use:   "show [number|name]",
	Short: "Show a playlist's songs",
	Long:  `Show the songs of a playlist, numbered in play order. Defaults to the current playlist.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlaylistShow,
}

func init() {
	playlistDeleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")

	playlistCmd.AddCommand(playlistCreateCmd)
	playlistCmd.AddCommand(playlistListCmd)
	playlistCmd.AddCommand(playlistSwitchCmd)
	playlistCmd.AddCommand(playlistDeleteCmd)
	playlistCmd.AddCommand(playlistShowCmd)
	rootCmd.AddCommand(playlistCmd)
}

func runPlaylistCreate(cmd *cobra.Command, args []string) error {
	var name string
	if wizard.NeedsArg(args) {
		if !wizard.IsTerminal() {
			return fmt.Errorf("playlist name required")
		}
		var err error
		if name, err = promptPlaylistName(); err != nil {
			return err
		}
	} else {
		name = args[0]
	}

	return withAppSave(func(a *app) error {
		p, err := a.reg.Create(name)
		if err != nil {
			return err
		}
		a.logger.Info().Str("playlist", p.Name()).Msg("playlist created")

		if JSONOutput() {
			return printJSON(summaryOf(a, a.reg.CurrentIndex()))
		}
		Info("Created playlist %q (now current)", p.Name())
		return nil
	})
}

func promptPlaylistName() (string, error) {
	var name string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Playlist name").
				Validate(core.ValidateName).
				Value(&name),
		),
	)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("cancelled: %w", err)
	}
	return name, nil
}

// playlistRow is the JSON shape of a listed playlist.
type playlistRow struct {
	Index int `json:"index"`
	core.Summary
}

func summaryOf(a *app, index int) playlistRow {
	return playlistRow{Index: index, Summary: a.reg.List()[index-1]}
}

func runPlaylistList(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		rows := lo.Map(a.reg.List(), func(s core.Summary, i int) playlistRow {
			return playlistRow{Index: i + 1, Summary: s}
		})

		if JSONOutput() {
			return printJSON(rows)
		}

		if len(rows) == 0 {
			fmt.Println("No playlists. Create one with 'crate playlist create <name>'.")
			return nil
		}

		writePlaylistTable(os.Stdout, a.reg)
		return nil
	})
}

func writePlaylistTable(out io.Writer, reg *core.Registry) {
	limits := reg.Limits()
	t := NewTableWriter(out, "#", "", "Name", "Songs")
	for i, s := range reg.List() {
		t.Row(strconv.Itoa(i+1), StatusIcon(s.Current), s.Name, fmt.Sprintf("%d/%d", s.Songs, limits.MaxSongs))
	}
	t.Flush()
	fmt.Fprintf(out, "%d of %d playlists\n", reg.Len(), limits.MaxPlaylists)
}

// pickPlaylist resolves args[0], or asks with the picker when no argument
// was given on a terminal.
func pickPlaylist(a *app, args []string) (int, *core.Playlist, error) {
	if !wizard.NeedsArg(args) {
		return a.playlist(args[0])
	}

	w := wizard.NewInteractive()
	w.SetPlaylists(a.reg.List())
	if !w.CanInteract() {
		return 0, nil, fmt.Errorf("playlist number or name required")
	}
	if a.reg.Len() == 0 {
		return 0, nil, crateerrors.ErrPlaylistNotFound
	}

	index, err := w.PromptPlaylist()
	if err != nil {
		return 0, nil, err
	}
	if index == 0 {
		return 0, nil, fmt.Errorf("selection cancelled")
	}
	p, err := a.reg.Get(index)
	return index, p, err
}

func runPlaylistSwitch(cmd *cobra.Command, args []string) error {
	return withAppSave(func(a *app) error {
		index, p, err := pickPlaylist(a, args)
		if err != nil {
			return err
		}
		if err := a.reg.SwitchTo(index); err != nil {
			return err
		}

		if JSONOutput() {
			return printJSON(summaryOf(a, index))
		}
		Info("Switched to playlist %d: %s", index, p.Name())
		return nil
	})
}

func runPlaylistDelete(cmd *cobra.Command, args []string) error {
	return withAppSave(func(a *app) error {
		index, p, err := pickPlaylist(a, args)
		if err != nil {
			return err
		}

		if !deleteForce && !JSONOutput() && wizard.IsTerminal() {
			confirmed := false
			form := huh.NewForm(huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Delete playlist %q and its %d songs?", p.Name(), p.Len())).
					Value(&confirmed),
			))
			if err := form.Run(); err != nil || !confirmed {
				return fmt.Errorf("delete cancelled")
			}
		}

		if _, err := a.lib.DeletePlaylist(a.reg, index); err != nil {
			return err
		}
		a.logger.Info().Str("playlist", p.Name()).Msg("playlist deleted")

		if JSONOutput() {
			return printJSON(map[string]any{
				"status":  "deleted",
				"name":    p.Name(),
				"current": a.reg.CurrentIndex(),
			})
		}
		Info("Deleted playlist %q", p.Name())
		if cur, ok := a.reg.Current(); ok {
			fmt.Printf("Current playlist: %s\n", cur.Name())
		}
		return nil
	})
}

// songRow is the JSON shape of a listed song.
type songRow struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Path     string `json:"path"`
}

func songRows(p *core.Playlist) []songRow {
	rows := make([]songRow, 0, p.Len())
	for i, s := range p.All() {
		rows = append(rows, songRow{Position: i, Title: s.Title, Artist: s.Artist, Path: s.Path})
	}
	return rows
}

func runPlaylistShow(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		ref := ""
		if len(args) > 0 {
			ref = args[0]
		}
		_, p, err := a.playlist(ref)
		if err != nil {
			return err
		}

		if JSONOutput() {
			return printJSON(map[string]any{
				"name":     p.Name(),
				"capacity": p.Cap(),
				"songs":    songRows(p),
			})
		}

		renderPlaylist(os.Stdout, p)
		return nil
	})
}

func renderPlaylist(out io.Writer, p *core.Playlist) {
	view := components.NewPlaylist()
	fmt.Fprintln(out, view.Render(p, min(termWidth(), 100), p.Len()+6))
}
