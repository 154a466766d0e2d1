package core

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func historyTitles(h *History) []string {
	var out []string
	for e := range h.MostRecentFirst() {
		out = append(out, e.Title)
	}
	return out
}

func TestHistoryEmpty(t *testing.T) {
	h := NewHistory(3)
	assert.Empty(t, historyTitles(h))
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, 3, h.Cap())
}

func TestHistoryMostRecentFirst(t *testing.T) {
	h := NewHistory(5)
	h.Record(Song{Title: "a"})
	h.Record(Song{Title: "b"})
	h.Record(Song{Title: "c"})

	assert.Equal(t, []string{"c", "b", "a"}, historyTitles(h))
	assert.Equal(t, 3, h.Len())
}

func TestHistoryWrapsAndDropsOldest(t *testing.T) {
	h := NewHistory(4)
	for i := 1; i <= 10; i++ {
		h.Record(Song{Title: fmt.Sprintf("s%d", i)})
	}

	assert.Equal(t, []string{"s10", "s9", "s8", "s7"}, historyTitles(h))
	assert.Equal(t, 4, h.Len())
}

func TestHistoryExactlyFull(t *testing.T) {
	h := NewHistory(3)
	h.Record(Song{Title: "a"})
	h.Record(Song{Title: "b"})
	h.Record(Song{Title: "c"})
	assert.Equal(t, []string{"c", "b", "a"}, historyTitles(h))
}

func TestHistoryStoresCopies(t *testing.T) {
	h := NewHistory(2)
	p := NewPlaylist("p", 5)
	_ = p.Append(Song{Title: "gone", Artist: "someone"})
	song, _ := p.At(1)
	h.Record(song)
	_, _ = p.RemoveByTitle("gone")

	entries := h.Entries()
	assert.Len(t, entries, 1)
	assert.Equal(t, "gone", entries[0].Title)
	assert.Equal(t, "someone", entries[0].Artist)
}

func TestHistoryClock(t *testing.T) {
	h := NewHistory(2)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	h.SetClock(func() time.Time { return at })
	h.Record(Song{Title: "a"})
	assert.Equal(t, at, h.Entries()[0].PlayedAt)
}

func TestHistoryRestore(t *testing.T) {
	h := NewHistory(3)
	h.Restore([]HistoryEntry{{Title: "new"}, {Title: "mid"}, {Title: "old"}, {Title: "dropped"}})
	assert.Equal(t, []string{"new", "mid", "old"}, historyTitles(h))

	h.Record(Song{Title: "newest"})
	assert.Equal(t, []string{"newest", "new", "mid"}, historyTitles(h))
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(2)
	h.Record(Song{Title: "a"})
	h.Clear()
	assert.Equal(t, 0, h.Len())
	assert.Empty(t, historyTitles(h))
}

func TestHistoryDefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultHistorySize, NewHistory(0).Cap())
}
