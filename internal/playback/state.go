// Package playback defines the controller's playback states and the pure
// transition rules between them.
package playback

// State is the playback state machine state. The numeric values are the
// ones persisted in non-volatile storage.
//
//	             pause               end of track (no next)
//	┌──────────┐ ──────▶ ┌──────┐ ◀──────────────────────── ┌──────────┐
//	│ DirPlay  │         │ Idle │                            │ DirPlay  │
//	└──────────┘ ◀────── └──────┘                            └──────────┘
//	             play        │ ▲
//	                   play  │ │ pause / end of track
//	                         ▼ │
//	                    ┌────────────┐
//	                    │ SinglePlay │
//	                    └────────────┘
//
// Play from Idle returns to the state that was active before the pause, or
// DirPlay when none was.
type State uint8

const (
	DirPlay State = iota
	SinglePlay
	Idle
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case DirPlay:
		return "DirPlay"
	case SinglePlay:
		return "SinglePlay"
	case Idle:
		return "Idle"
	default:
		return "Unknown"
	}
}

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	return s <= Idle
}

// IsPlaying returns true if the state decodes audio on every tick.
func (s State) IsPlaying() bool {
	return s == DirPlay || s == SinglePlay
}

// Status returns the host-facing label for the state.
func (s State) Status() string {
	if s.IsPlaying() {
		return "PLAYING"
	}
	return "PAUSED"
}

// Pause returns the state entered by a pause request and the state to
// remember for the next resume. ok is false when s is already Idle.
func (s State) Pause() (next, remembered State, ok bool) {
	if s == Idle {
		return s, s, false
	}
	return Idle, s, true
}

// Resume returns the state entered by a play request from s, given the state
// remembered by the last pause. ok is false when s is not Idle.
func (s State) Resume(remembered State) (next State, ok bool) {
	if s != Idle {
		return s, false
	}
	if remembered == Idle || !remembered.Valid() {
		return DirPlay, true
	}
	return remembered, true
}

// RepeatMode defines what happens after the last track of the catalog.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
)

// String returns the repeat mode name.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "Off"
	case RepeatAll:
		return "All"
	default:
		return "Unknown"
	}
}

// NextIndex returns the index after current in a catalog of n tracks.
// ok is false when there is no next track.
func (m RepeatMode) NextIndex(current, n int) (next int, ok bool) {
	if n <= 0 {
		return current, false
	}
	if current < n-1 {
		return current + 1, true
	}
	if m == RepeatAll {
		return (current + 1) % n, true
	}
	return current, false
}
