package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/tessro/crate/internal/device"
)

var (
	// Set via ldflags at build time
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Audio     bool   `json:"audio"`
}

func currentVersion() versionInfo {
	return versionInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Audio:     device.AudioAvailable,
	}
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := currentVersion()
	if JSONOutput() {
		return printJSON(info)
	}

	fmt.Printf("crate %s\n", info.Version)
	if !info.Audio {
		Warn("built without audio support; playback will skip every song")
	}
	if Verbose() {
		tbl := NewTable("Field", "Value")
		tbl.Row("commit", info.Commit)
		tbl.Row("built", info.BuildDate)
		tbl.Row("go version", info.GoVersion)
		tbl.Row("platform", info.Platform)
		tbl.Row("audio", StatusIcon(info.Audio))
		tbl.Flush()
	}
	return nil
}
