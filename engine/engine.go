// Package engine provides the pluggable media backends that decode and
// render a stream. Two variants exist: an audio-only engine built on
// beep and an audio+video engine built on libmpv. Variant selection is
// content-driven via the probe in this package.
package engine

import "time"

// State is the engine-reported lifecycle state, pushed to the owner
// through StateFunc.
type State int

const (
	StateIdle State = iota
	StateWaiting
	StateReady
	StatePlaying
	StatePaused
	StateEnded
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waiting"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StateFunc receives push-style engine state updates. err is non-nil
// only for StateFailed.
type StateFunc func(s State, err error)

// Engine is the capability contract every media backend implements.
// Boolean returns report whether the backend accepted the command.
type Engine interface {
	PlayAt(pos time.Duration, forceResume bool) bool
	Resume() bool
	Pause() bool
	Stop() bool
	SeekTo(pos time.Duration) bool
	CurrentTime() time.Duration
	TotalDuration() time.Duration
	HasVideo() bool
	Rate() float64
	SetRate(rate float64)
}

// SurfaceProvider is implemented by engines that render video and can
// hand out an opaque render-surface handle.
type SurfaceProvider interface {
	Surface() int64
}

// Source describes the media an engine should play.
type Source struct {
	URL          string // remote media url
	File         string // local file path; preferred over URL when set
	HasVideoHint bool   // explicit has-video hint from the content item
	Rate         float64
	SurfaceID    int64 // render surface for video engines, 0 for a detached window
}

// New probes the source and constructs the matching engine variant.
func New(src Source, onState StateFunc) (Engine, error) {
	if src.Rate == 0 {
		src.Rate = 1.0
	}
	if Detect(src) == KindVideo {
		return NewVideo(src, onState)
	}
	return NewAudio(src, onState), nil
}
