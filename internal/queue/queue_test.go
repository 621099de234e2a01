package queue

import (
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

func TestEnqueueDequeueFIFO(t *testing.T) {
	m := NewManager(store.New(t.TempDir()))

	for _, guid := range []string{"a", "b", "c"} {
		if !m.Enqueue(testEpisode(guid)) {
			t.Errorf("Enqueue(%q) reported no change", guid)
		}
	}
	if m.Size() != 3 {
		t.Fatalf("Expected size 3, got %d", m.Size())
	}

	for _, want := range []string{"a", "b", "c"} {
		entry, ok := m.DequeueNext()
		if !ok {
			t.Fatalf("DequeueNext returned no entry, want %q", want)
		}
		if entry.GUID != want {
			t.Errorf("Dequeued %q, want %q", entry.GUID, want)
		}
	}
	if _, ok := m.DequeueNext(); ok {
		t.Error("Expected empty queue after draining")
	}
}

func TestEnqueueIdempotent(t *testing.T) {
	m := NewManager(store.New(t.TempDir()))

	m.Enqueue(testEpisode("a"))
	if m.Enqueue(testEpisode("a")) {
		t.Error("Re-enqueueing the same GUID should be a no-op")
	}
	if m.Size() != 1 {
		t.Errorf("Expected size 1 after duplicate enqueue, got %d", m.Size())
	}
}

func TestRemove(t *testing.T) {
	m := NewManager(store.New(t.TempDir()))

	m.Enqueue(testEpisode("a"))
	m.Enqueue(testEpisode("b"))
	m.Enqueue(testEpisode("c"))

	m.Remove("b")
	if m.Size() != 2 {
		t.Fatalf("Expected size 2 after Remove, got %d", m.Size())
	}
	if m.Contains("b") {
		t.Error("Removed GUID still present")
	}

	// Removing an absent GUID does nothing.
	m.Remove("missing")
	if m.Size() != 2 {
		t.Errorf("Remove of absent GUID changed size to %d", m.Size())
	}

	entry, _ := m.DequeueNext()
	if entry.GUID != "a" {
		t.Errorf("Expected 'a' at the front, got %q", entry.GUID)
	}
}

func TestQueueSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	m := NewManager(store.New(dir))
	m.Enqueue(testEpisode("a"))
	m.Enqueue(testEpisode("b"))

	// A fresh manager over the same directory sees the same queue.
	m2 := NewManager(store.New(dir))
	if m2.Size() != 2 {
		t.Fatalf("Expected 2 entries after restart, got %d", m2.Size())
	}
	entry, _ := m2.DequeueNext()
	if entry.GUID != "a" {
		t.Errorf("Expected 'a' first after restart, got %q", entry.GUID)
	}
	if entry.AudioURL == "" {
		t.Error("Persisted entry lost its episode snapshot")
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	m := NewManager(store.New(t.TempDir()))
	m.Enqueue(testEpisode("a"))

	entries := m.Entries()
	entries[0].GUID = "mutated"
	if got := m.Entries()[0].GUID; got != "a" {
		t.Errorf("Mutating the returned slice changed the queue: %q", got)
	}
}
