package models

import (
	"time"
)

// Episode is a single catalog entry. Immutable once loaded; the queue and
// history keep their own copies so mutating a snapshot never touches the
// canonical catalog record.
type Episode struct {
	GUID         string    `json:"guid"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	PubDate      time.Time `json:"pubDate"`
	AudioURL     string    `json:"audioUrl"`
	ThumbnailURL string    `json:"thumbnail,omitempty"`
}

// QueueEntry is an episode snapshot pending playback. Ordering is FIFO,
// uniqueness is by GUID.
type QueueEntry struct {
	Episode
	AddedAt time.Time `json:"addedAt"`
}

// HistoryEntry is an episode snapshot plus when it was last (re)played and
// how far into the track playback got.
type HistoryEntry struct {
	Episode
	PlayedAt time.Time `json:"playedAt"`
	Progress float64   `json:"progress"` // seconds into the track
}

// ResumeState points at where playback should continue on next load. At most
// one instance exists; it is overwritten continuously during playback.
type ResumeState struct {
	GUID  string  `json:"guid"`
	Time  float64 `json:"time"` // seconds
	Index int     `json:"index"`
}

// VolumeState is the persisted volume record. Muted is stored as volume 0
// with the flag set so unmuting can restore the previous level.
type VolumeState struct {
	Volume float64 `json:"volume"` // 0..1
	Muted  bool    `json:"muted,omitempty"`
}

// DefaultVolume is the fallback when no volume record exists or the stored
// record is unreadable.
const DefaultVolume = 0.7
