package core

import (
	"iter"
	"time"
)

// DefaultHistorySize is the history capacity used when none is configured.
const DefaultHistorySize = 20

// HistoryEntry is a copy of a played song's fields. Copies keep history
// valid after the song is removed from its playlist.
type HistoryEntry struct {
	Title    string    `json:"title" toml:"title"`
	Artist   string    `json:"artist" toml:"artist"`
	Path     string    `json:"path" toml:"path"`
	PlayedAt time.Time `json:"played_at" toml:"played_at"`
}

// History is a fixed-capacity ring buffer of recently played songs.
// Once full, each Record overwrites the oldest entry.
type History struct {
	slots  []HistoryEntry
	set    []bool
	cursor int
	now    func() time.Time
}

// NewHistory creates an empty history holding up to capacity entries.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{
		slots: make([]HistoryEntry, capacity),
		set:   make([]bool, capacity),
		now:   time.Now,
	}
}

// SetClock replaces the time source used to stamp entries.
func (h *History) SetClock(now func() time.Time) {
	h.now = now
}

// Record appends a song at the cursor and advances it.
func (h *History) Record(song Song) {
	h.put(HistoryEntry{
		Title:    song.Title,
		Artist:   song.Artist,
		Path:     song.Path,
		PlayedAt: h.now(),
	})
}

func (h *History) put(e HistoryEntry) {
	h.slots[h.cursor] = e
	h.set[h.cursor] = true
	h.cursor = (h.cursor + 1) % len(h.slots)
}

// MostRecentFirst yields entries from newest to oldest, skipping unset slots.
func (h *History) MostRecentFirst() iter.Seq[HistoryEntry] {
	return func(yield func(HistoryEntry) bool) {
		n := len(h.slots)
		for i := 1; i <= n; i++ {
			idx := (h.cursor - i + n) % n
			if !h.set[idx] {
				continue
			}
			if !yield(h.slots[idx]) {
				return
			}
		}
	}
}

// Entries returns a snapshot, most recent first.
func (h *History) Entries() []HistoryEntry {
	entries := make([]HistoryEntry, 0, h.Len())
	for e := range h.MostRecentFirst() {
		entries = append(entries, e)
	}
	return entries
}

// Restore replaces the contents with entries given most recent first.
// Entries beyond capacity are dropped, oldest first.
func (h *History) Restore(entries []HistoryEntry) {
	h.Clear()
	if len(entries) > len(h.slots) {
		entries = entries[:len(h.slots)]
	}
	for i := len(entries) - 1; i >= 0; i-- {
		h.put(entries[i])
	}
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	n := 0
	for _, ok := range h.set {
		if ok {
			n++
		}
	}
	return n
}

// Cap returns the capacity.
func (h *History) Cap() int {
	return len(h.slots)
}

// Clear removes all entries.
func (h *History) Clear() {
	clear(h.slots)
	clear(h.set)
	h.cursor = 0
}
