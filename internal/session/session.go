// Package session implements the playback state machine: which episode is
// current, how play/pause/seek/skip and auto-advance interact, and how the
// queue, history, and resume records are mutated along the way.
//
// A Session is not safe for concurrent use. All methods, including
// HandleBackendEvent, must be called from the single event loop that owns
// the session; backend events are funneled into that loop by the caller.
package session

import (
	"fmt"
	"log"

	"github.com/olekv/utl-player/internal/catalog"
	"github.com/olekv/utl-player/internal/history"
	"github.com/olekv/utl-player/internal/models"
	"github.com/olekv/utl-player/internal/queue"
	"github.com/olekv/utl-player/internal/store"
)

const (
	// MinResumeSeconds is the smallest saved position worth resuming from.
	MinResumeSeconds = 5.0

	// SkipBackSeconds and SkipForwardSeconds are the fixed skip distances.
	SkipBackSeconds    = 15.0
	SkipForwardSeconds = 30.0

	// resumeSaveInterval is how much accumulated playback has to pass
	// between resume-record writes. Sampled from progress events, not a
	// precise timer.
	resumeSaveInterval = 5.0
)

// Session binds the current episode index, transport state, and playhead to
// the catalog, queue, history, and persistence gateway.
type Session struct {
	catalog *catalog.Catalog
	queue   *queue.Manager
	history *history.Manager
	store   *store.Store
	backend Backend

	state    State
	current  int // index into the unfiltered catalog, -1 when none
	position float64
	duration float64
	volume   float64
	muted    bool
	rate     float64

	loadToken   uint64
	pendingPlay bool
	pendingSeek float64 // applied once the backend signals ready; <0 none
	lastSaved   float64

	notify func(Event)
}

// New creates a session over the given collaborators and pushes the
// persisted volume state to the backend.
func New(c *catalog.Catalog, q *queue.Manager, h *history.Manager, s *store.Store, b Backend) *Session {
	vol := s.Volume()
	sess := &Session{
		catalog:     c,
		queue:       q,
		history:     h,
		store:       s,
		backend:     b,
		state:       StateIdle,
		current:     -1,
		volume:      vol.Volume,
		muted:       vol.Muted,
		rate:        1.0,
		pendingSeek: -1,
		notify:      func(Event) {},
	}
	if err := b.SetVolume(sess.volume); err != nil {
		log.Printf("session: failed to apply saved volume: %v", err)
	}
	if sess.muted {
		if err := b.SetMuted(true); err != nil {
			log.Printf("session: failed to apply saved mute: %v", err)
		}
	}
	return sess
}

// SetNotify installs the presentation-layer event sink. The callback runs
// synchronously on the session's event loop.
func (s *Session) SetNotify(fn func(Event)) {
	if fn == nil {
		fn = func(Event) {}
	}
	s.notify = fn
}

// SelectEpisode makes the episode at the given catalog index current,
// assigns its audio source, and records the play event in history. When a
// persisted resume record matches the episode and exceeds the minimum
// threshold, the playhead is moved there once the source is ready. With
// autoPlay, playback starts on readiness; a refused start leaves the
// session Loaded.
func (s *Session) SelectEpisode(index int, autoPlay bool) error {
	if index < 0 || index >= s.catalog.Len() {
		return fmt.Errorf("episode index %d out of range", index)
	}

	ep := s.catalog.Episode(index)

	s.current = index
	s.position = 0
	s.duration = 0
	s.lastSaved = 0
	s.loadToken++
	s.pendingPlay = autoPlay
	s.pendingSeek = -1

	if resume, ok := s.store.Resume(); ok && resume.GUID == ep.GUID && resume.Time > MinResumeSeconds {
		s.pendingSeek = resume.Time
	}

	if err := s.backend.Load(ep.AudioURL, s.loadToken); err != nil {
		log.Printf("session: failed to load %q: %v", ep.Title, err)
	}

	// Every load counts as a play event, whether or not playback starts.
	s.history.Record(ep)

	s.state = StateLoaded
	s.notify(Event{Kind: EventEpisodeChanged, Index: s.current})
	s.notify(Event{Kind: EventStateChanged, Index: s.current})
	return nil
}

// SeekOnceReady schedules a seek to be applied when the current load
// signals readiness, overriding any resume position. Used for deep links
// with a start-time offset.
func (s *Session) SeekOnceReady(seconds float64) {
	if seconds > 0 {
		s.pendingSeek = seconds
	}
}

// HandleBackendEvent feeds one backend signal through the state machine.
func (s *Session) HandleBackendEvent(ev BackendEvent) {
	switch ev.Kind {
	case BackendReady:
		s.handleReady(ev.Token)
	case BackendProgress:
		s.handleProgress(ev.Position, ev.Duration)
	case BackendEnded:
		s.handleEnded()
	}
}

func (s *Session) handleReady(token uint64) {
	if token != s.loadToken {
		// A newer SelectEpisode superseded this load; the signal is stale.
		log.Printf("session: ignoring stale readiness for load %d (current %d)", token, s.loadToken)
		return
	}

	if s.pendingSeek > 0 {
		if err := s.backend.SeekTo(s.pendingSeek); err != nil {
			log.Printf("session: resume seek failed: %v", err)
		} else {
			s.position = s.pendingSeek
		}
		s.pendingSeek = -1
	}

	if !s.pendingPlay {
		return
	}
	s.pendingPlay = false
	if err := s.backend.Play(); err != nil {
		// Platform refused an unattended start. Expected, not a defect.
		log.Printf("session: auto-play prevented: %v", err)
		return
	}
	s.state = StatePlaying
	s.notify(Event{Kind: EventStateChanged, Index: s.current})
}

func (s *Session) handleProgress(position, duration float64) {
	if s.current < 0 {
		return
	}
	s.position = position
	if duration > 0 {
		s.duration = duration
	}
	s.notify(Event{Kind: EventProgress, Index: s.current})

	if s.state != StatePlaying {
		return
	}
	if position-s.lastSaved < resumeSaveInterval && position >= s.lastSaved {
		return
	}
	s.lastSaved = position

	ep := s.catalog.Episode(s.current)
	if err := s.store.SaveResume(models.ResumeState{GUID: ep.GUID, Time: position, Index: s.current}); err != nil {
		log.Printf("session: failed to save resume state: %v", err)
	}

	prev, tracked := s.history.Progress(ep.GUID)
	s.history.UpdateProgress(ep.GUID, position)
	if tracked && history.CrossedPlayedThreshold(prev, position) {
		s.notify(Event{Kind: EventPlayedChanged, Index: s.current})
	}
}

// handleEnded resolves the next-episode policy: the queue front wins,
// otherwise the next older episode in catalog order, otherwise the session
// stays Ended. The resume record is deliberately left in place; the minimum
// resume threshold keeps a stale record inert.
func (s *Session) handleEnded() {
	s.state = StateEnded
	s.notify(Event{Kind: EventStateChanged, Index: s.current})

	for {
		entry, ok := s.queue.DequeueNext()
		if !ok {
			break
		}
		s.notify(Event{Kind: EventQueueChanged, Index: s.current})
		idx, found := s.catalog.IndexByGUID(entry.GUID)
		if !found {
			// The queued snapshot no longer resolves in the catalog.
			log.Printf("session: skipping queued episode %q, not in catalog", entry.Title)
			continue
		}
		if err := s.SelectEpisode(idx, true); err != nil {
			log.Printf("session: failed to advance to queued episode: %v", err)
		}
		return
	}

	if older := s.catalog.Older(s.current); older >= 0 {
		if err := s.SelectEpisode(older, true); err != nil {
			log.Printf("session: failed to auto-advance: %v", err)
		}
	}
}

// TogglePlayback flips between Playing and Paused. The returned flag is
// true when this was the first start of a freshly loaded episode, which the
// presentation layer uses to surface the full player view.
func (s *Session) TogglePlayback() bool {
	switch s.state {
	case StatePlaying:
		if err := s.backend.Pause(); err != nil {
			log.Printf("session: pause failed: %v", err)
			return false
		}
		s.state = StatePaused
		s.notify(Event{Kind: EventStateChanged, Index: s.current})
		return false
	case StateLoaded, StatePaused, StateEnded:
		firstPlay := s.state != StatePaused && s.position < 1
		if err := s.backend.Play(); err != nil {
			log.Printf("session: play refused: %v", err)
			return false
		}
		s.state = StatePlaying
		s.notify(Event{Kind: EventStateChanged, Index: s.current})
		return firstPlay
	default:
		return false
	}
}

// Play is the lock-screen play adapter.
func (s *Session) Play() {
	if s.state == StatePlaying || s.state == StateIdle {
		return
	}
	s.TogglePlayback()
}

// Pause is the lock-screen pause adapter.
func (s *Session) Pause() {
	if s.state != StatePlaying {
		return
	}
	s.TogglePlayback()
}

// SeekRelative moves the playhead by delta seconds, clamped to
// [0, duration]. An unknown duration leaves the upper bound unenforced.
func (s *Session) SeekRelative(delta float64) {
	s.SeekTo(s.position + delta)
}

// SeekTo moves the playhead to an absolute position, clamped the same way.
func (s *Session) SeekTo(target float64) {
	if !s.state.IsActive() && s.state != StateLoaded && s.state != StateEnded {
		return
	}
	if target < 0 {
		target = 0
	}
	if s.duration > 0 && target > s.duration {
		target = s.duration
	}
	if err := s.backend.SeekTo(target); err != nil {
		log.Printf("session: seek failed: %v", err)
		return
	}
	s.position = target
	s.notify(Event{Kind: EventProgress, Index: s.current})
}

// SeekBackward skips back by the fixed 15s distance.
func (s *Session) SeekBackward() { s.SeekRelative(-SkipBackSeconds) }

// SeekForward skips forward by the fixed 30s distance.
func (s *Session) SeekForward() { s.SeekRelative(SkipForwardSeconds) }

// PlayPrevious moves toward newer episodes (lock-screen previous-track).
func (s *Session) PlayPrevious() {
	if newer := s.catalog.Newer(s.current); newer >= 0 {
		if err := s.SelectEpisode(newer, true); err != nil {
			log.Printf("session: previous track failed: %v", err)
		}
	}
}

// PlayNext moves toward older episodes (lock-screen next-track).
func (s *Session) PlayNext() {
	if older := s.catalog.Older(s.current); older >= 0 {
		if err := s.SelectEpisode(older, true); err != nil {
			log.Printf("session: next track failed: %v", err)
		}
	}
}

// SetPlaybackRate updates the playback rate. Not persisted.
func (s *Session) SetPlaybackRate(rate float64) {
	if rate <= 0 {
		return
	}
	s.rate = rate
	if err := s.backend.SetRate(rate); err != nil {
		log.Printf("session: failed to set rate: %v", err)
	}
}

// SetVolume sets and persists the volume, clearing mute.
func (s *Session) SetVolume(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	s.volume = v
	s.muted = false
	if err := s.backend.SetVolume(v); err != nil {
		log.Printf("session: failed to set volume: %v", err)
	}
	if err := s.backend.SetMuted(false); err != nil {
		log.Printf("session: failed to unmute: %v", err)
	}
	s.persistVolume()
}

// ToggleMute flips and persists the mute flag without losing the volume.
func (s *Session) ToggleMute() {
	s.muted = !s.muted
	if err := s.backend.SetMuted(s.muted); err != nil {
		log.Printf("session: failed to toggle mute: %v", err)
	}
	s.persistVolume()
}

func (s *Session) persistVolume() {
	if err := s.store.SaveVolume(models.VolumeState{Volume: s.volume, Muted: s.muted}); err != nil {
		log.Printf("session: failed to save volume: %v", err)
	}
}

// State returns the transport state.
func (s *Session) State() State { return s.state }

// CurrentIndex returns the current catalog index, or -1 when none.
func (s *Session) CurrentIndex() int { return s.current }

// CurrentEpisode returns the current episode, if one is selected.
func (s *Session) CurrentEpisode() (models.Episode, bool) {
	if s.current < 0 {
		return models.Episode{}, false
	}
	return s.catalog.Episode(s.current), true
}

// Position returns the playhead position in seconds.
func (s *Session) Position() float64 { return s.position }

// Duration returns the known track duration in seconds, 0 when unknown.
func (s *Session) Duration() float64 { return s.duration }

// Volume returns the volume in [0,1].
func (s *Session) Volume() float64 { return s.volume }

// Muted reports the mute flag.
func (s *Session) Muted() bool { return s.muted }

// PlaybackRate returns the playback rate.
func (s *Session) PlaybackRate() float64 { return s.rate }
