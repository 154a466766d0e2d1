package playback

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Formatter renders events as single lines.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template. An invalid template is ignored.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// NewFormatter creates a formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event. Progress events produce an empty string.
func (f *Formatter) Format(e Event) string {
	if e.Type == EventProgress {
		return ""
	}
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

func (f *Formatter) formatLine(e Event) string {
	var parts []string

	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}
	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}
	parts = append(parts, describe(e))

	return strings.Join(parts, " ")
}

func (f *Formatter) formatTemplate(e Event) string {
	data := templateData{
		Type:      e.Type.Name(),
		Emoji:     eventEmoji(e.Type),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
		Track:     e.Track,
		Tracks:    e.Tracks,
		Elapsed:   Clock(e.Playback.Elapsed),
		Length:    Clock(e.Playback.Total),
	}
	if e.Playback.HasSong() {
		data.Title = e.Playback.Song.Title
		data.Artist = e.Playback.Song.Artist
		data.Path = e.Playback.Song.Path
	}
	if e.Err != nil {
		data.Error = e.Err.Error()
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type      string
	Emoji     string
	Timestamp time.Time
	Time      string
	Title     string
	Artist    string
	Path      string
	Track     int
	Tracks    int
	Elapsed   string
	Length    string
	Error     string
}

func describe(e Event) string {
	song := "track"
	if e.Playback.HasSong() {
		song = e.Playback.Song.String()
	}

	switch e.Type {
	case EventTrackStart:
		if e.Tracks > 0 {
			return fmt.Sprintf("Now playing (%d/%d): %s", e.Track, e.Tracks, song)
		}
		return "Now playing: " + song
	case EventPause:
		return "Paused"
	case EventResume:
		return "Resumed"
	case EventTrackComplete:
		return "Finished: " + song
	case EventSkipNext:
		return "Skipped: " + song
	case EventSkipPrevious:
		return "Back from: " + song
	case EventStop:
		return "Playback stopped"
	case EventTrackError:
		if e.Err != nil {
			return fmt.Sprintf("Could not play %s: %v", song, e.Err)
		}
		return "Could not play " + song
	case EventSessionEnd:
		if e.Result == ResultStopped {
			return "Session stopped"
		}
		return "End of playlist"
	default:
		return "Unknown event"
	}
}

func eventEmoji(t EventType) string {
	switch t {
	case EventTrackStart:
		return "🎵"
	case EventPause:
		return "⏸️"
	case EventResume:
		return "▶️"
	case EventTrackComplete:
		return "✅"
	case EventSkipNext:
		return "⏭️"
	case EventSkipPrevious:
		return "⏮️"
	case EventStop:
		return "⏹️"
	case EventTrackError:
		return "⚠️"
	case EventSessionEnd:
		return "🏁"
	default:
		return "❓"
	}
}

// Clock formats a duration as mm:ss. Negative durations format as 00:00.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
