package playback

import "time"

// Initialized is emitted once per item when playback setup begins.
type Initialized struct {
	Item Item
}

// StateUpdated is emitted on every broadcast primary-state or flag
// transition.
type StateUpdated struct {
	State PrimaryState
	Flags Flags
}

// PositionChanged is emitted by the progress loop and on the final
// flush when playback pauses. Exactly one notification following a
// manual seek is suppressed.
type PositionChanged struct {
	Position time.Duration
	Duration time.Duration
}

// BulletinChanged is emitted when the live-stream bulletin text changes.
type BulletinChanged struct {
	Bulletin string
}

// Finished is emitted when the engine reaches the end of the item.
type Finished struct{}

// Failed is emitted when playback cannot start or the engine fails.
type Failed struct {
	Err error
}

// Closed is emitted exactly once by Close.
type Closed struct{}

// SettingsUpdated is emitted after a settings mutation.
type SettingsUpdated struct {
	Settings Settings
}

// SleepTimerUpdated is emitted when the sleep timer is armed, re-armed,
// cancelled, or fires. A zero duration means no timer is pending.
type SleepTimerUpdated struct {
	Duration time.Duration
}

// Completed is emitted whenever an effective position is flushed,
// carrying whether the item counts as finished.
type Completed struct {
	Item      Item
	Completed bool
}
