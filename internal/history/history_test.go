package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/olekv/utl-player/internal/models"
	"github.com/olekv/utl-player/internal/store"
)

func testEpisode(guid string) models.Episode {
	return models.Episode{
		GUID:     guid,
		Title:    "Episode " + guid,
		PubDate:  time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC),
		AudioURL: "https://example.com/" + guid + ".mp3",
	}
}

// fixedClock returns a now func that advances one minute per call.
func fixedClock() func() time.Time {
	t := time.Date(2025, 12, 21, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func TestRecordMostRecentFirst(t *testing.T) {
	m := NewManager(store.New(t.TempDir()))
	m.now = fixedClock()

	m.Record(testEpisode("a"))
	m.Record(testEpisode("b"))
	m.Record(testEpisode("c"))

	entries := m.Entries()
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"c", "b", "a"} {
		if entries[i].GUID != want {
			t.Errorf("Entry %d is %q, want %q", i, entries[i].GUID, want)
		}
	}
}

func TestRecordDeduplicates(t *testing.T) {
	m := NewManager(store.New(t.TempDir()))
	m.now = fixedClock()

	m.Record(testEpisode("a"))
	m.Record(testEpisode("b"))
	m.UpdateProgress("a", 100)

	// Re-recording moves the entry to the front with fresh progress, without
	// growing the log.
	m.Record(testEpisode("a"))

	entries := m.Entries()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries after re-record, got %d", len(entries))
	}
	if entries[0].GUID != "a" {
		t.Errorf("Expected 'a' at the front, got %q", entries[0].GUID)
	}
	if entries[0].Progress != 0 {
		t.Errorf("Re-record should reset progress, got %v", entries[0].Progress)
	}
}

func TestHistoryBounded(t *testing.T) {
	m := NewManager(store.New(t.TempDir()))
	m.now = fixedClock()

	for i := 0; i < MaxEntries+5; i++ {
		m.Record(testEpisode(fmt.Sprintf("ep-%d", i)))
	}

	entries := m.Entries()
	if len(entries) != MaxEntries {
		t.Fatalf("Expected history bounded to %d, got %d", MaxEntries, len(entries))
	}
	// Most recent survives; the oldest five were evicted.
	if entries[0].GUID != fmt.Sprintf("ep-%d", MaxEntries+4) {
		t.Errorf("Expected newest entry first, got %q", entries[0].GUID)
	}
	if _, ok := m.Progress("ep-0"); ok {
		t.Error("Expected the oldest entry to be evicted")
	}
}

func TestUpdateProgressInPlace(t *testing.T) {
	m := NewManager(store.New(t.TempDir()))
	m.now = fixedClock()

	m.Record(testEpisode("a"))
	m.Record(testEpisode("b"))
	playedAt := m.Entries()[1].PlayedAt

	m.UpdateProgress("a", 55)

	entries := m.Entries()
	if entries[1].GUID != "a" {
		t.Fatalf("UpdateProgress moved the entry: order is %q, %q", entries[0].GUID, entries[1].GUID)
	}
	if entries[1].Progress != 55 {
		t.Errorf("Expected progress 55, got %v", entries[1].Progress)
	}
	if !entries[1].PlayedAt.Equal(playedAt) {
		t.Error("UpdateProgress must not refresh playedAt")
	}

	// Absent GUID is a no-op.
	m.UpdateProgress("missing", 99)
	if len(m.Entries()) != 2 {
		t.Error("UpdateProgress of an absent GUID changed the log")
	}
}

func TestPlayed(t *testing.T) {
	m := NewManager(store.New(t.TempDir()))
	m.now = fixedClock()

	m.Record(testEpisode("a"))
	if m.Played("a") {
		t.Error("Fresh entry should not count as played")
	}

	m.UpdateProgress("a", PlayedThreshold)
	if m.Played("a") {
		t.Error("Progress exactly at the threshold should not count as played")
	}

	m.UpdateProgress("a", PlayedThreshold+1)
	if !m.Played("a") {
		t.Error("Progress past the threshold should count as played")
	}
	if m.Played("missing") {
		t.Error("Unknown GUID should not count as played")
	}
}

func TestCrossedPlayedThreshold(t *testing.T) {
	cases := []struct {
		prev, cur float64
		want      bool
	}{
		{0, 31, true},
		{30, 30.5, true},
		{29, 30, false},
		{31, 35, false},
		{31, 10, false},
	}
	for _, tc := range cases {
		if got := CrossedPlayedThreshold(tc.prev, tc.cur); got != tc.want {
			t.Errorf("CrossedPlayedThreshold(%v, %v) = %v, want %v", tc.prev, tc.cur, got, tc.want)
		}
	}
}

func TestHistorySurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	m := NewManager(store.New(dir))
	m.now = fixedClock()
	m.Record(testEpisode("a"))
	m.UpdateProgress("a", 45)

	m2 := NewManager(store.New(dir))
	if p, ok := m2.Progress("a"); !ok || p != 45 {
		t.Errorf("Expected progress 45 after restart, got %v, %v", p, ok)
	}
}
