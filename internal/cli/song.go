package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tessro/crate/internal/core"
	crateerrors "github.com/tessro/crate/internal/errors"
	"github.com/tessro/crate/internal/wizard"
)

var (
	songPlaylist      string
	searchArtist      bool
	searchInteractive bool
)

var songCmd = &cobra.Command{
	Use:   "song",
	Short: "Manage the songs of a playlist",
	Long:  `Commands for the songs of the current playlist, or the one given with --playlist.`,
}

var songAddCmd = &cobra.Command{
	Use:   "add [title] [artist] [path]",
	Short: "Append a song",
	Long: `Append a song to the end of the playlist.
Title, artist and path are all required. Missing values are asked for
when running in a terminal.

Examples:
  crate song add "Intro" "The xx" ~/Music/intro.mp3
  crate song add -p Favorites "Teardrop" "Massive Attack" ~/Music/teardrop.wav`,
	Args: cobra.MaximumNArgs(3),
	RunE: runSongAdd,
}

var songRemoveCmd = &cobra.Command{
	Use:     "remove [title]",
	Aliases: []string{"rm"},
	Short:   "Remove the first song with a title",
	Long: `Remove the first song whose title matches, ignoring case.
Without arguments in a terminal, shows a search picker.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSongRemove,
}

var songListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List songs in play order",
	Args:    cobra.NoArgs,
	RunE:    runSongList,
}

var songSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find songs by title",
	Long: `Find songs whose title contains the query, ignoring case.
With --artist, artists are matched too. With -i, opens an interactive picker.

Examples:
  crate song search love
  crate song search -a radiohead
  crate song search -i`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSongSearch,
}

func init() {
	songCmd.PersistentFlags().StringVarP(&songPlaylist, "playlist", "p", "", "Playlist number or name (default: current)")
	songSearchCmd.Flags().BoolVarP(&searchArtist, "artist", "a", false, "Match artists as well as titles")
	songSearchCmd.Flags().BoolVarP(&searchInteractive, "interactive", "i", false, "Pick from results interactively")

	songCmd.AddCommand(songAddCmd)
	songCmd.AddCommand(songRemoveCmd)
	songCmd.AddCommand(songListCmd)
	songCmd.AddCommand(songSearchCmd)
	rootCmd.AddCommand(songCmd)
}

func runSongAdd(cmd *cobra.Command, args []string) error {
	var song core.Song
	if len(args) > 0 {
		song.Title = args[0]
	}
	if len(args) > 1 {
		song.Artist = args[1]
	}
	if len(args) > 2 {
		song.Path = args[2]
	}

	if len(args) < 3 {
		if !wizard.IsTerminal() {
			return fmt.Errorf("%w: title, artist and path are all required", crateerrors.ErrInvalidSong)
		}
		var err error
		if song, err = promptSong(song); err != nil {
			return err
		}
	}

	return withAppSave(func(a *app) error {
		_, p, err := a.playlist(songPlaylist)
		if err != nil {
			return err
		}
		if err := addSong(p, song); err != nil {
			return err
		}
		a.logger.Info().Str("playlist", p.Name()).Str("title", song.Title).Msg("song added")

		if JSONOutput() {
			return printJSON(songRow{Position: p.Len(), Title: song.Title, Artist: song.Artist, Path: song.Path})
		}
		Info("Added %s to %s (%d/%d)", song, p.Name(), p.Len(), p.Cap())
		return nil
	})
}

// addSong appends song once all three fields are present.
func addSong(p *core.Playlist, song core.Song) error {
	if song.Title == "" || song.Artist == "" || song.Path == "" {
		return fmt.Errorf("%w: title, artist and path are all required", crateerrors.ErrInvalidSong)
	}
	return p.Append(song)
}

func required(field string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// promptSong asks for the fields of song that are still empty.
func promptSong(song core.Song) (core.Song, error) {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").CharLimit(core.MaxFieldLength).Validate(required("title")).Value(&song.Title),
			huh.NewInput().Title("Artist").CharLimit(core.MaxFieldLength).Validate(required("artist")).Value(&song.Artist),
			huh.NewInput().Title("File path").CharLimit(core.MaxFieldLength).Validate(required("path")).Value(&song.Path),
		),
	)
	if err := form.Run(); err != nil {
		return core.Song{}, fmt.Errorf("cancelled: %w", err)
	}
	return song, nil
}

func runSongRemove(cmd *cobra.Command, args []string) error {
	return withAppSave(func(a *app) error {
		_, p, err := a.playlist(songPlaylist)
		if err != nil {
			return err
		}

		var title string
		if wizard.NeedsArg(args) {
			w := wizard.NewInteractive()
			w.SetSearchFunc(p.Name(), searchFunc(p))
			if !w.CanInteract() {
				return fmt.Errorf("song title required")
			}
			picked, err := w.PromptSong()
			if err != nil {
				return err
			}
			if picked == nil {
				return fmt.Errorf("selection cancelled")
			}
			title = picked.Title
		} else {
			title = args[0]
		}

		removed, err := p.RemoveByTitle(title)
		if err != nil {
			return crateerrors.WithSuggestion(
				fmt.Errorf("%w in %s", err, p.Name()),
				"Run 'crate song search "+strconv.Quote(title)+"' to find similar titles")
		}
		a.logger.Info().Str("playlist", p.Name()).Str("title", removed.Title).Msg("song removed")

		if JSONOutput() {
			return printJSON(map[string]any{
				"status": "removed",
				"title":  removed.Title,
				"artist": removed.Artist,
				"path":   removed.Path,
			})
		}
		Info("Removed %s from %s", removed, p.Name())
		return nil
	})
}

func runSongList(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		_, p, err := a.playlist(songPlaylist)
		if err != nil {
			return err
		}

		if JSONOutput() {
			return printJSON(songRows(p))
		}

		if p.IsEmpty() {
			fmt.Printf("%s is empty.\n", p.Name())
			return nil
		}

		writeSongTable(os.Stdout, p)
		return nil
	})
}

func writeSongTable(out io.Writer, p *core.Playlist) {
	pathWidth := max(termWidth()/3, 20)
	t := NewTableWriter(out, "#", "Title", "Artist", "Path")
	for i, s := range p.All() {
		t.Row(strconv.Itoa(i), s.Title, s.Artist, TruncateString(s.Path, pathWidth))
	}
	t.Flush()
	fmt.Fprintf(out, "%s: %d of %d songs\n", p.Name(), p.Len(), p.Cap())
}

// searchFunc adapts a playlist's Find to the search picker.
func searchFunc(p *core.Playlist) wizard.SearchFunc {
	return func(query string, scope wizard.SearchScope) ([]wizard.SearchResult, error) {
		var results []wizard.SearchResult
		for title, artist := range p.Find(query, scope == wizard.SearchTitlesAndArtists) {
			results = append(results, wizard.SearchResult{Title: title, Artist: artist})
		}
		return results, nil
	}
}

func runSongSearch(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		_, p, err := a.playlist(songPlaylist)
		if err != nil {
			return err
		}

		if searchInteractive || wizard.NeedsArg(args) {
			w := wizard.NewInteractive()
			w.SetEnabled(!JSONOutput())
			w.SetSearchFunc(p.Name(), searchFunc(p))
			if w.CanInteract() {
				picked, err := w.PromptSong()
				if err != nil {
					return err
				}
				if picked == nil {
					return nil
				}
				song, pos, err := p.FindByTitle(picked.Title)
				if err != nil {
					return err
				}
				fmt.Printf("%d. %s\n   %s\n", pos, song, song.Path)
				return nil
			}
			if wizard.NeedsArg(args) {
				return errors.New("search query required")
			}
		}

		scope := wizard.SearchTitles
		if searchArtist {
			scope = wizard.SearchTitlesAndArtists
		}
		results, err := searchFunc(p)(args[0], scope)
		if err != nil {
			return err
		}

		if JSONOutput() {
			if results == nil {
				results = []wizard.SearchResult{}
			}
			return printJSON(results)
		}

		if len(results) == 0 {
			fmt.Printf("No songs in %s match %q.\n", p.Name(), args[0])
			return nil
		}
		t := NewTable("Title", "Artist")
		for _, r := range results {
			t.Row(r.Title, r.Artist)
		}
		t.Flush()
		return nil
	})
}
