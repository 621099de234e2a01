// Package store is the typed persistence gateway for the player's four
// durable records: resume position, queue, history, and volume. Reads are
// tolerant of missing or corrupt data and fall back to documented defaults;
// writes are best-effort and never block playback.
package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/olekv/utl-player/internal/models"
)

const (
	resumeFile  = "resume.json"
	queueFile   = "queue.json"
	historyFile = "history.json"
	volumeFile  = "volume.json"
)

// Store persists each record as a JSON file under a state directory.
type Store struct {
	dir string
}

// New creates a store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir returns the per-user state directory.
func DefaultDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "utl-player"), nil
}

// Resume returns the persisted resume record, if one exists and is readable.
func (s *Store) Resume() (models.ResumeState, bool) {
	var r models.ResumeState
	if !s.read(resumeFile, &r) || r.GUID == "" {
		return models.ResumeState{}, false
	}
	return r, true
}

// SaveResume overwrites the resume record.
func (s *Store) SaveResume(r models.ResumeState) error {
	return s.write(resumeFile, r)
}

// Queue returns the persisted queue, or an empty list.
func (s *Store) Queue() []models.QueueEntry {
	var q []models.QueueEntry
	if !s.read(queueFile, &q) || q == nil {
		return []models.QueueEntry{}
	}
	return q
}

// SaveQueue overwrites the persisted queue.
func (s *Store) SaveQueue(q []models.QueueEntry) error {
	return s.write(queueFile, q)
}

// History returns the persisted history, or an empty list.
func (s *Store) History() []models.HistoryEntry {
	var h []models.HistoryEntry
	if !s.read(historyFile, &h) || h == nil {
		return []models.HistoryEntry{}
	}
	return h
}

// SaveHistory overwrites the persisted history.
func (s *Store) SaveHistory(h []models.HistoryEntry) error {
	return s.write(historyFile, h)
}

// Volume returns the persisted volume record, defaulting to 0.7 unmuted.
func (s *Store) Volume() models.VolumeState {
	v := models.VolumeState{Volume: models.DefaultVolume}
	if !s.read(volumeFile, &v) {
		return models.VolumeState{Volume: models.DefaultVolume}
	}
	if v.Volume < 0 || v.Volume > 1 {
		return models.VolumeState{Volume: models.DefaultVolume}
	}
	return v
}

// SaveVolume overwrites the persisted volume record.
func (s *Store) SaveVolume(v models.VolumeState) error {
	return s.write(volumeFile, v)
}

// read unmarshals a record file into v. A missing file is silent; a corrupt
// file is logged. Either way the caller falls back.
func (s *Store) read(name string, v interface{}) bool {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("store: failed to read %s: %v", name, err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Printf("store: corrupt %s, using fallback: %v", name, err)
		return false
	}
	return true
}

func (s *Store) write(name string, v interface{}) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
