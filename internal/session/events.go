package session

// EventKind discriminates session notifications to the presentation layer.
type EventKind int

const (
	// EventEpisodeChanged fires when the current episode index changes.
	EventEpisodeChanged EventKind = iota
	// EventStateChanged fires on any transport-state transition.
	EventStateChanged
	// EventProgress fires on playhead updates.
	EventProgress
	// EventPlayedChanged fires when an episode crosses the played threshold
	// and its played state must be recomputed.
	EventPlayedChanged
	// EventQueueChanged fires when auto-advance consumes queue entries.
	EventQueueChanged
)

// Event is a session notification. The presentation layer reacts to these
// instead of being called into directly.
type Event struct {
	Kind  EventKind
	Index int // current episode index, -1 when none
}
