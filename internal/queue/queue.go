// Package queue holds the ordered, deduplicated list of episodes pending
// playback. Every mutation is persisted immediately; an interrupted process
// loses at most the in-flight mutation.
package queue

import (
	"log"
	"time"

	"github.com/olekv/utl-player/internal/models"
	"github.com/olekv/utl-player/internal/store"
)

// Manager owns the queue. FIFO ordering, uniqueness by GUID.
type Manager struct {
	entries []models.QueueEntry
	store   *store.Store
}

// NewManager creates a manager seeded from the persisted queue.
func NewManager(s *store.Store) *Manager {
	return &Manager{
		entries: s.Queue(),
		store:   s,
	}
}

// Enqueue appends an episode snapshot. Adding a GUID already present is a
// no-op; the return value reports whether the queue changed.
func (m *Manager) Enqueue(ep models.Episode) bool {
	if m.Contains(ep.GUID) {
		return false
	}
	m.entries = append(m.entries, models.QueueEntry{Episode: ep, AddedAt: time.Now()})
	m.persist()
	return true
}

// DequeueNext removes and returns the front entry.
func (m *Manager) DequeueNext() (models.QueueEntry, bool) {
	if len(m.entries) == 0 {
		return models.QueueEntry{}, false
	}
	next := m.entries[0]
	m.entries = m.entries[1:]
	m.persist()
	return next, true
}

// Remove filters out any entry with the given GUID.
func (m *Manager) Remove(guid string) {
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.GUID != guid {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(m.entries) {
		return
	}
	m.entries = kept
	m.persist()
}

// Size returns the number of queued entries.
func (m *Manager) Size() int { return len(m.entries) }

// Contains reports whether an entry with the GUID is queued.
func (m *Manager) Contains(guid string) bool {
	for _, e := range m.entries {
		if e.GUID == guid {
			return true
		}
	}
	return false
}

// Entries returns a copy of the queue, front first.
func (m *Manager) Entries() []models.QueueEntry {
	out := make([]models.QueueEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *Manager) persist() {
	if err := m.store.SaveQueue(m.entries); err != nil {
		log.Printf("queue: failed to persist: %v", err)
	}
}
