package playback

// PrimaryState is the mutually exclusive playback state.
//
// The happy path is
//
//	Idle → Initializing → {Playing ⇄ Paused} → Ended
//
// with Destroyed as an absorbing state reachable from anywhere on an
// engine failure. Flags overlay the primary state independently.
type PrimaryState int

const (
	Idle PrimaryState = iota
	Initializing
	Playing
	Paused
	Ended
	Destroyed
)

// String returns the state name.
func (s PrimaryState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Initializing:
		return "initializing"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Ended:
		return "ended"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// IsActive returns true while an item is loaded and not torn down.
func (s PrimaryState) IsActive() bool {
	switch s {
	case Initializing, Playing, Paused:
		return true
	default:
		return false
	}
}

// Flags is the orthogonal modifier bit-set overlaid on PrimaryState.
// Flags may be set alongside Playing/Paused without changing the
// primary state (e.g. Playing + FlagBuffering).
type Flags uint8

const (
	FlagBuffering Flags = 1 << iota
	FlagSeeking
	FlagComplete
	FlagInterrupted
	FlagError
)

// Has reports whether all bits of f are set.
func (fl Flags) Has(f Flags) bool { return fl&f == f }

// With returns the set with f added.
func (fl Flags) With(f Flags) Flags { return fl | f }

// Without returns the set with f removed.
func (fl Flags) Without(f Flags) Flags { return fl &^ f }

// String returns a compact flag listing.
func (fl Flags) String() string {
	if fl == 0 {
		return "none"
	}
	names := []struct {
		f    Flags
		name string
	}{
		{FlagBuffering, "buffering"},
		{FlagSeeking, "seeking"},
		{FlagComplete, "complete"},
		{FlagInterrupted, "interrupted"},
		{FlagError, "error"},
	}
	out := ""
	for _, n := range names {
		if fl.Has(n.f) {
			if out != "" {
				out += "|"
			}
			out += n.name
		}
	}
	return out
}

// Status pairs the primary state with its flag overlay.
type Status struct {
	State PrimaryState
	Flags Flags
}
