package core

import "time"

// PlaybackState is a snapshot of the song being played.
type PlaybackState struct {
	Song    *Song         `json:"song"`
	Paused  bool          `json:"paused"`
	Elapsed time.Duration `json:"elapsed"`
	Total   time.Duration `json:"total"`
}

// HasSong returns true if there is an active song.
func (s *PlaybackState) HasSong() bool {
	return s != nil && s.Song != nil
}

// ProgressPercent returns playback progress as a percentage (0-100).
func (s *PlaybackState) ProgressPercent() float64 {
	if s == nil || s.Total <= 0 {
		return 0
	}
	p := float64(s.Elapsed) / float64(s.Total) * 100
	if p > 100 {
		return 100
	}
	return p
}
