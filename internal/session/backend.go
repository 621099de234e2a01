package session

// Backend is the audio engine the session drives. Implementations assign a
// source with Load and later emit a ready event carrying the same token; the
// session ignores ready events whose token has been superseded by a newer
// Load.
type Backend interface {
	// Load assigns a new audio source without starting playback. The token
	// identifies this load request in the ready event that follows.
	Load(url string, token uint64) error
	Play() error
	Pause() error
	SeekTo(seconds float64) error
	SetVolume(v float64) error
	SetMuted(muted bool) error
	SetRate(rate float64) error
	// Events delivers readiness, progress, and end-of-track signals.
	Events() <-chan BackendEvent
}

// BackendEventKind discriminates backend events.
type BackendEventKind int

const (
	// BackendReady means the source from the Load tagged with Token can start.
	BackendReady BackendEventKind = iota
	// BackendProgress reports the playhead position and known duration.
	BackendProgress
	// BackendEnded means the current track finished naturally.
	BackendEnded
)

// BackendEvent is a single signal from the audio engine.
type BackendEvent struct {
	Kind     BackendEventKind
	Token    uint64
	Position float64 // seconds
	Duration float64 // seconds; 0 when unknown
}
