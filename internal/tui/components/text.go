package components

import (
	"fmt"
	"time"
)

// fitPair shortens title and artist to share available cells, giving the
// artist at least a third of the space.
func fitPair(title, artist string, available int) (string, string) {
	titleLen := len([]rune(title))
	artistLen := len([]rune(artist))
	if titleLen+artistLen <= available {
		return title, artist
	}

	minArtist := max(available/3, 8)
	minArtist = min(minArtist, available-8)

	artistSpace := min(artistLen, minArtist)
	titleSpace := available - artistSpace
	return truncate(title, titleSpace), truncate(artist, artistSpace)
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 3 {
		return string(r[:limit])
	}
	return string(r[:limit-3]) + "..."
}

func formatDuration(d time.Duration) string {
	d = max(d, 0).Truncate(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d", m, s)
}
