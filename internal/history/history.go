// Package history keeps the bounded, most-recent-first log of played
// episodes with their last-known progress.
package history

import (
	"log"
	"time"

	"github.com/olekv/utl-player/internal/models"
	"github.com/olekv/utl-player/internal/store"
)

// MaxEntries bounds the history; recording past the bound evicts the oldest.
const MaxEntries = 20

// PlayedThreshold is the accumulated progress past which an episode counts
// as played for display and filtering purposes.
const PlayedThreshold = 30.0 // seconds

// Manager owns the history log. Uniqueness is by GUID: re-recording moves an
// entry to the front and refreshes its timestamp.
type Manager struct {
	entries []models.HistoryEntry
	store   *store.Store
	now     func() time.Time
}

// NewManager creates a manager seeded from the persisted history.
func NewManager(s *store.Store) *Manager {
	return &Manager{
		entries: s.History(),
		store:   s,
		now:     time.Now,
	}
}

// Record inserts an episode at the front with fresh playedAt and zero
// progress, removing any prior entry with the same GUID and truncating to
// the bound.
func (m *Manager) Record(ep models.Episode) {
	kept := make([]models.HistoryEntry, 0, len(m.entries)+1)
	kept = append(kept, models.HistoryEntry{
		Episode:  ep,
		PlayedAt: m.now(),
		Progress: 0,
	})
	for _, e := range m.entries {
		if e.GUID != ep.GUID {
			kept = append(kept, e)
		}
	}
	if len(kept) > MaxEntries {
		kept = kept[:MaxEntries]
	}
	m.entries = kept
	m.persist()
}

// UpdateProgress overwrites the progress of an existing entry in place,
// without changing its position or playedAt. No-op when the GUID is absent.
func (m *Manager) UpdateProgress(guid string, seconds float64) {
	for i := range m.entries {
		if m.entries[i].GUID == guid {
			m.entries[i].Progress = seconds
			m.persist()
			return
		}
	}
}

// Progress returns the recorded progress for a GUID.
func (m *Manager) Progress(guid string) (float64, bool) {
	for _, e := range m.entries {
		if e.GUID == guid {
			return e.Progress, true
		}
	}
	return 0, false
}

// Played reports whether the episode's recorded progress has passed the
// played threshold.
func (m *Manager) Played(guid string) bool {
	p, ok := m.Progress(guid)
	return ok && p > PlayedThreshold
}

// CrossedPlayedThreshold reports whether a progress update moved an episode
// across the played threshold, which obliges the presentation layer to
// recompute its played state.
func CrossedPlayedThreshold(previous, current float64) bool {
	return previous <= PlayedThreshold && current > PlayedThreshold
}

// Entries returns a copy of the log, most recent first.
func (m *Manager) Entries() []models.HistoryEntry {
	out := make([]models.HistoryEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *Manager) persist() {
	if err := m.store.SaveHistory(m.entries); err != nil {
		log.Printf("history: failed to persist: %v", err)
	}
}
