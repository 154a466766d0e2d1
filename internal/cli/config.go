package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/huh"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/tessro/crate/internal/config"
	crateerrors "github.com/tessro/crate/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing crate configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration values, including defaults and environment overrides.`,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	RunE:  runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  `Create a new configuration file with default values.`,
	RunE:  runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Supported keys:
  library.dir             Directory holding playlists.txt and playlist files
  library.max_playlists   Maximum number of playlists
  library.max_songs       Maximum songs per playlist
  library.history_size    Number of recently played songs to remember
  playback.poll_interval  Milliseconds between progress updates
  playback.error_delay    Milliseconds to wait after a song fails to play
  playback.emoji          Show emoji in playback messages (true/false)
  playback.timestamps     Show timestamps in playback messages (true/false)
  playback.format         Go template for playback messages
  tui.theme               Color theme (auto/dark/light)
  tui.progress_width      Width of the progress bar
  log.level               Log level (debug/info/warn/error)
  log.file                Write logs to this file instead of stderr

Examples:
  crate config set library.max_songs 250
  crate config set tui.theme dark`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configSetThemeCmd = &cobra.Command{
	Use:   "set-theme",
	Short: "Interactively select the color theme",
	RunE:  runConfigSetTheme,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetThemeCmd)
	rootCmd.AddCommand(configCmd)
}

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindBool
)

var configKeys = map[string]keyKind{
	"library.dir":            kindString,
	"library.max_playlists":  kindInt,
	"library.max_songs":      kindInt,
	"library.history_size":   kindInt,
	"playback.poll_interval": kindInt,
	"playback.error_delay":   kindInt,
	"playback.emoji":         kindBool,
	"playback.timestamps":    kindBool,
	"playback.format":        kindString,
	"tui.theme":              kindString,
	"tui.progress_width":     kindInt,
	"log.level":              kindString,
	"log.file":               kindString,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if JSONOutput() {
		return printJSON(cfg)
	}

	// Pretty print as TOML
	encoder := toml.NewEncoder(os.Stdout)
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}
	_, statErr := os.Stat(configPath)
	if JSONOutput() {
		return printJSON(map[string]any{
			"path":   configPath,
			"exists": statErr == nil,
		})
	}
	fmt.Println(configPath)
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return crateerrors.WithSuggestion(
			fmt.Errorf("%w at %s", crateerrors.ErrConfigNotFound, configPath),
			"Run 'crate config init' first")
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"nano", "vim", "vi", "notepad"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	if err := writeConfigFile(configPath, config.Default()); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"status": "created",
			"path":   configPath,
		})
	}

	fmt.Printf("Created config file: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Run 'crate playlist create <name>' to start a playlist")
	fmt.Println("  2. Run 'crate song add <title> <artist> <path>' to add songs")
	return nil
}

// getConfigPath returns the --config path, the first existing config
// file, or the default location for a new one.
func getConfigPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	if p := config.FindConfigFile(); p != "" {
		return p, nil
	}
	return config.DefaultPath()
}

// writeConfigFile encodes v with a header comment, creating the directory.
func writeConfigFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := encodeConfig(f, v); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func encodeConfig(w io.Writer, v any) error {
	_, _ = fmt.Fprintln(w, "# Crate Configuration")
	_, _ = fmt.Fprintln(w, "# https://github.com/tessro/crate")
	_, _ = fmt.Fprintln(w, "")

	encoder := toml.NewEncoder(w)
	encoder.Indent = "  "
	return encoder.Encode(v)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return crateerrors.WithSuggestion(
			fmt.Errorf("%w at %s", crateerrors.ErrConfigNotFound, configPath),
			"Run 'crate config init' first")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	updated, err := setConfigValue(data, key, value)
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, updated, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	}
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

// setConfigValue sets section.field in the TOML document data and returns
// the re-encoded document. The result must still be a valid Config.
func setConfigValue(data []byte, key, value string) ([]byte, error) {
	kind, ok := configKeys[key]
	if !ok {
		known := lo.Keys(configKeys)
		slices.Sort(known)
		return nil, crateerrors.WithSuggestion(
			fmt.Errorf("%w: unknown key %q", crateerrors.ErrInvalidConfig, key),
			"Supported keys: "+strings.Join(known, ", "))
	}

	var rawConfig map[string]any
	if _, err := toml.Decode(string(data), &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if rawConfig == nil {
		rawConfig = make(map[string]any)
	}

	section, field, _ := strings.Cut(key, ".")

	sectionMap, ok := rawConfig[section].(map[string]any)
	if !ok {
		sectionMap = make(map[string]any)
		rawConfig[section] = sectionMap
	}

	switch kind {
	case kindInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("value must be an integer for %s", key)
		}
		sectionMap[field] = i
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("value must be true or false for %s", key)
		}
		sectionMap[field] = b
	default:
		sectionMap[field] = value
	}

	var buf bytes.Buffer
	if err := encodeConfig(&buf, rawConfig); err != nil {
		return nil, fmt.Errorf("failed to write config: %w", err)
	}

	var check config.Config
	if _, err := toml.Decode(buf.String(), &check); err != nil {
		return nil, fmt.Errorf("%w: %w", crateerrors.ErrInvalidConfig, err)
	}
	if err := check.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", crateerrors.ErrInvalidConfig, err)
	}
	return buf.Bytes(), nil
}

func runConfigSetTheme(cmd *cobra.Command, args []string) error {
	selected := cfg.TUI.Theme
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select color theme").
				Description("auto follows the terminal background").
				Options(
					huh.NewOption("Auto", "auto"),
					huh.NewOption("Dark", "dark"),
					huh.NewOption("Light", "light"),
				).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("selection cancelled: %w", err)
	}

	configPath, err := getConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := writeConfigFile(configPath, config.Default()); err != nil {
			return err
		}
	}

	return runConfigSet(cmd, []string{"tui.theme", selected})
}
