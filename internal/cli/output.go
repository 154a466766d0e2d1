package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"

	"github.com/tessro/crate/internal/tui/styles"
)

// Table provides a simple table formatter.
type Table struct {
	w table.Writer
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return NewTableWriter(os.Stdout, headers...)
}

// NewTableWriter creates a table writing to a specific writer.
func NewTableWriter(out io.Writer, headers ...string) *Table {
	w := table.NewWriter()
	w.SetOutputMirror(out)
	w.SetStyle(table.StyleLight)
	if len(headers) > 0 {
		w.AppendHeader(toRow(headers))
	}
	return &Table{w: w}
}

// Row adds a row to the table.
func (t *Table) Row(values ...string) {
	t.w.AppendRow(toRow(values))
}

// Flush writes the table output.
func (t *Table) Flush() {
	t.w.Render()
}

func toRow(values []string) table.Row {
	row := make(table.Row, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	return writeJSON(os.Stdout, v)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Info prints a status line.
func Info(format string, args ...any) {
	fmt.Println(styles.Notice.Render(fmt.Sprintf(format, args...)))
}

// Warn prints a problem that did not stop the command.
func Warn(format string, args ...any) {
	fmt.Fprintln(os.Stderr, styles.Paused.Render(fmt.Sprintf(format, args...)))
}

// StatusIcon returns an icon for the given boolean status.
func StatusIcon(active bool) string {
	if active {
		return "●"
	}
	return "○"
}

// TruncateString truncates a string to maxLen runes, adding "..." if truncated.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// parsePosition reads a positive 1-based number.
func parsePosition(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// termWidth returns the width of stdout, or 80 when it is not a terminal.
func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
