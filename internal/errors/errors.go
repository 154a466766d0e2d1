package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	// Validation
	ErrInvalidName = errors.New("invalid playlist name")
	ErrInvalidSong = errors.New("invalid song")

	// Lookup
	ErrSongNotFound       = errors.New("song not found")
	ErrPlaylistNotFound   = errors.New("playlist not found")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrNoPlaylistSelected = errors.New("no playlist selected")
	ErrDuplicateName      = errors.New("playlist already exists")

	// Capacity
	ErrCapacityExceeded = errors.New("maximum number of playlists reached")
	ErrPlaylistFull     = errors.New("playlist is full")

	// Persistence
	ErrPersistence = errors.New("persistence error")

	// Device
	ErrDevice            = errors.New("playback device error")
	ErrUnsupportedFormat = errors.New("unsupported format or zero-length file")

	ErrConfigNotFound = errors.New("config file not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// CrateError wraps an error with a user-friendly suggestion.
type CrateError struct {
	Err        error
	Suggestion string
}

func (e *CrateError) Error() string {
	return e.Err.Error()
}

func (e *CrateError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &CrateError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var crateErr *CrateError
	if errors.As(err, &crateErr) && crateErr.Suggestion != "" {
		return crateErr.Suggestion
	}

	switch {
	case errors.Is(err, ErrInvalidName):
		return `Playlist names must be non-empty and cannot contain \ / : * ? " < > |`
	case errors.Is(err, ErrInvalidSong):
		return "Titles are required; fields cannot contain line breaks or exceed 255 bytes"
	case errors.Is(err, ErrDuplicateName):
		return "Pick a different name; names are compared case-insensitively"
	case errors.Is(err, ErrNoPlaylistSelected):
		return "Run 'crate playlist create <name>' or 'crate playlist switch <n>' first"
	case errors.Is(err, ErrPlaylistNotFound), errors.Is(err, ErrIndexOutOfRange):
		return "Run 'crate playlist list' to see available playlists"
	case errors.Is(err, ErrSongNotFound):
		return "Run 'crate song list' to see the songs in the current playlist"
	case errors.Is(err, ErrCapacityExceeded):
		return "Delete a playlist or raise library.max_playlists in your config"
	case errors.Is(err, ErrPlaylistFull):
		return "Remove a song or raise library.max_songs in your config"
	case errors.Is(err, ErrPersistence):
		return "Check that the library directory exists and is writable"
	case errors.Is(err, ErrUnsupportedFormat), errors.Is(err, ErrDevice):
		return "Check the song's file path and that the file is a supported audio format"
	case errors.Is(err, ErrConfigNotFound), errors.Is(err, ErrInvalidConfig):
		return "Run 'crate config init' to create a fresh configuration"
	}

	if strings.Contains(strings.ToLower(err.Error()), "permission denied") {
		return "Check file permissions in the library directory"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// Err joins all collected errors, or returns nil.
func (p *PartialResult[T]) Err() error {
	return errors.Join(p.Errors...)
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	if len(p.Errors) == 0 {
		return ""
	}
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(p.Errors)))
	for i, err := range p.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
